package allocation

import (
	"testing"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_Keys(t *testing.T) {
	assert.Equal(t, "equity", ClassPath(domain.AssetClassEquity).Key())
	assert.Equal(t, "equity:LargeCap", CapPath(domain.CapLarge).Key())
	assert.Equal(t, "equity:LargeCap:Banking", SectorPath(CapPath(domain.CapLarge), "Banking").Key())
	assert.Equal(t, "realEstateFund:Brick", SectorPath(ClassPath(domain.AssetClassRealEstateFund), "Brick").Key())
	assert.Equal(t, "exchangeTradedFund:_flat", FlatPath(domain.AssetClassExchangeTradedFund).Key())
}

func TestPath_RoundTrip(t *testing.T) {
	paths := []Path{
		ClassPath(domain.AssetClassFixedIncome),
		CapPath(domain.CapMicro),
		SectorPath(CapPath(domain.CapMid), "Utilities"),
		SectorPath(ClassPath(domain.AssetClassRealEstateFund), "Paper"),
		FlatPath(domain.AssetClassFixedIncome),
	}
	for _, p := range paths {
		got, err := ParsePath(p.Key())
		require.NoError(t, err, p.Key())
		assert.Equal(t, p, got)
	}
}

func TestPath_SectorWithSeparatorIsEscaped(t *testing.T) {
	p := SectorPath(ClassPath(domain.AssetClassRealEstateFund), `Logistics: A\B`)
	assert.Equal(t, `realEstateFund:Logistics\: A\\B`, p.Key())

	got, err := ParsePath(p.Key())
	require.NoError(t, err)
	assert.Equal(t, `Logistics: A\B`, got.Sector)
}

func TestParsePath_Invalid(t *testing.T) {
	keys := []string{
		"",
		"bogus",
		"Equity",
		"equity:HugeCap",
		"equity:LargeCap:Banking:extra",
		"equity:LargeCap:_flat",
		"equity:_flat",
		"realEstateFund:a:b",
		"realEstateFund:_flat",
		"realEstateFund:_cap",
		"exchangeTradedFund:Tech",
		"fixedIncome:_flat:x",
		`realEstateFund:abc\`,
	}
	for _, key := range keys {
		_, err := ParsePath(key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestPath_ParentKinds(t *testing.T) {
	assert.True(t, CapPath(domain.CapLarge).IsSectorParent())
	assert.True(t, ClassPath(domain.AssetClassRealEstateFund).IsSectorParent())
	assert.False(t, ClassPath(domain.AssetClassEquity).IsSectorParent())
	assert.False(t, FlatPath(domain.AssetClassExchangeTradedFund).IsSectorParent())

	assert.True(t, SectorPath(CapPath(domain.CapLarge), "Banking").IsLeafParent())
	assert.True(t, SectorPath(ClassPath(domain.AssetClassRealEstateFund), "Brick").IsLeafParent())
	assert.True(t, FlatPath(domain.AssetClassFixedIncome).IsLeafParent())
	assert.False(t, CapPath(domain.CapLarge).IsLeafParent())
	assert.False(t, ClassPath(domain.AssetClassExchangeTradedFund).IsLeafParent())
}
