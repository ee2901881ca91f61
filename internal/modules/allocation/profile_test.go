package allocation

import (
	"testing"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/aristath/rebalancer/internal/modules/classification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profilePositions() ([]domain.Position, []domain.FixedIncomeItem) {
	equity := func(symbol string, bucket domain.CapBucket, sector string) domain.Position {
		return domain.Position{Symbol: symbol, AssetClass: domain.AssetClassEquity, CapBucket: bucket, Sector: sector, Quantity: 1, AverageCost: 10}
	}
	fund := func(symbol, sector string) domain.Position {
		return domain.Position{Symbol: symbol, AssetClass: domain.AssetClassRealEstateFund, Sector: sector, Quantity: 1, AverageCost: 10}
	}
	positions := []domain.Position{
		equity("ITUB4", domain.CapLarge, "Banking"),
		equity("BBDC4", domain.CapLarge, "Banking"),
		equity("BBAS3", domain.CapLarge, "Banking"),
		equity("PETR4", domain.CapLarge, "Energy"),
		equity("WEGE3", domain.CapMid, "Industrials"),
		fund("HGLG11", classification.SectorBrick),
		fund("MXRF11", classification.SectorPaper),
		fund("XPTO11", classification.Unclassified),
		{Symbol: "BOVA11", AssetClass: domain.AssetClassExchangeTradedFund, Quantity: 1, AverageCost: 100},
	}
	fixedIncome := []domain.FixedIncomeItem{{ID: "CDB-1", Principal: 1000}}
	return positions, fixedIncome
}

func TestApplyProfile_Moderate(t *testing.T) {
	positions, fixedIncome := profilePositions()

	state, err := ApplyProfile("moderate", positions, fixedIncome)
	require.NoError(t, err)

	assert.Equal(t, weights("equity", 35, "realEstateFund", 20, "exchangeTradedFund", 15, "fixedIncome", 30).Entries(), state.Classes.Entries())
	assert.Equal(t, weights("LargeCap", 55, "MidCap", 25, "SmallCap", 15, "MicroCap", 5).Entries(), state.Caps.Entries())

	assert.Equal(t, weights("Banking", 50, "Energy", 50).Entries(), state.Sectors["equity:LargeCap"].Entries())
	assert.Equal(t, weights("Industrials", 100).Entries(), state.Sectors["equity:MidCap"].Entries())
	assert.Equal(t, weights("Brick", 50, "Paper", 35, "unclassified", 15).Entries(), state.Sectors["realEstateFund"].Entries())

	assert.Equal(t, weights("ITUB4", 34, "BBDC4", 33, "BBAS3", 33).Entries(), state.Tickers["equity:LargeCap:Banking"].Entries(),
		"remainder goes to the first instrument")
	assert.Equal(t, weights("PETR4", 100).Entries(), state.Tickers["equity:LargeCap:Energy"].Entries())
	assert.Equal(t, weights("BOVA11", 100).Entries(), state.Tickers["exchangeTradedFund:_flat"].Entries())
	assert.Equal(t, weights("CDB-1", 100).Entries(), state.Tickers["fixedIncome:_flat"].Entries())

	assert.Empty(t, Validate(state))
}

func TestApplyProfile_Idempotent(t *testing.T) {
	positions, fixedIncome := profilePositions()

	for _, p := range Profiles() {
		first, err := ApplyProfile(p.ID, positions, fixedIncome)
		require.NoError(t, err)
		second, err := ApplyProfile(p.ID, positions, fixedIncome)
		require.NoError(t, err)
		assert.True(t, first.Equal(second), p.ID)
	}
}

func TestApplyProfile_Unknown(t *testing.T) {
	_, err := ApplyProfile("yolo", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestProfiles_AreComplete(t *testing.T) {
	ids := map[string]bool{}
	for _, p := range Profiles() {
		ids[p.ID] = true
		assert.InDelta(t, 100, p.Classes.Sum(), 1e-9, p.ID)
		assert.InDelta(t, 100, p.Caps.Sum(), 1e-9, p.ID)
		assert.InDelta(t, 100, p.RealEstateSectors.Sum(), 1e-9, p.ID)
	}
	for _, id := range []string{"conservative", "moderate", "aggressive", "income"} {
		assert.True(t, ids[id], id)
	}
}

func TestEqualWeights(t *testing.T) {
	assert.Equal(t, 0, EqualWeights(nil).Len())
	assert.Equal(t, weights("a", 100).Entries(), EqualWeights([]string{"a"}).Entries())
	assert.Equal(t, weights("a", 34, "b", 33, "c", 33).Entries(), EqualWeights([]string{"a", "b", "c"}).Entries())

	six := EqualWeights([]string{"a", "b", "c", "d", "e", "f"})
	assert.Equal(t, 20.0, six.Value("a"))
	assert.Equal(t, 16.0, six.Value("f"))
	assert.Equal(t, 100.0, six.Sum())
}

func TestPresetWeights_NormalizesWithLastKeyResidual(t *testing.T) {
	preset := weights("Brick", 40, "Paper", 50, "Hybrid", 10)

	got := presetWeights([]string{"Paper", "Brick"}, preset)
	// 50/90 rounds to 56; Brick takes the rest
	assert.Equal(t, weights("Paper", 56, "Brick", 44).Entries(), got.Entries())

	got = presetWeights([]string{"Odd", "Other"}, preset)
	assert.Equal(t, weights("Odd", 50, "Other", 50).Entries(), got.Entries())
}

func TestAutoInitialize(t *testing.T) {
	positions := []domain.Position{
		{Symbol: "ITUB4", AssetClass: domain.AssetClassEquity, CapBucket: domain.CapLarge, Sector: "Banking", Quantity: 1, AverageCost: 10},
		{Symbol: "WEGE3", AssetClass: domain.AssetClassEquity, CapBucket: domain.CapSmall, Sector: "Industrials", Quantity: 1, AverageCost: 10},
		{Symbol: "HGLG11", AssetClass: domain.AssetClassRealEstateFund, Sector: classification.SectorBrick, Quantity: 1, AverageCost: 10},
	}
	fixedIncome := []domain.FixedIncomeItem{{ID: "LCI-7", Principal: 500}}

	state := AutoInitialize(positions, fixedIncome)

	assert.Equal(t, weights("equity", 34, "realEstateFund", 33, "exchangeTradedFund", 0, "fixedIncome", 33).Entries(), state.Classes.Entries())
	assert.Equal(t, weights("LargeCap", 50, "SmallCap", 50).Entries(), state.Caps.Entries())
	assert.Equal(t, weights("Banking", 100).Entries(), state.Sectors["equity:LargeCap"].Entries())
	assert.Equal(t, weights("Brick", 100).Entries(), state.Sectors["realEstateFund"].Entries())
	assert.Equal(t, weights("LCI-7", 100).Entries(), state.Tickers["fixedIncome:_flat"].Entries())
	assert.Empty(t, Validate(state))
}
