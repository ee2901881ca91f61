package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CleanState(t *testing.T) {
	assert.Empty(t, Validate(sampleState()))
}

func TestValidate_EmptyStateWarnsOnClasses(t *testing.T) {
	warnings := Validate(NewTargetState())
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnClassSum, warnings[0].Code)
	assert.Equal(t, 0.0, warnings[0].Sum)
}

func TestValidate_ReportsEverySet(t *testing.T) {
	state := sampleState()
	state.Classes.Set("equity", 55)
	state.Caps.Set("MidCap", 10)
	state.Sectors["realEstateFund"] = weights("Brick", 50, "Paper", 49)
	state.Tickers["equity:LargeCap:Banking"] = weights("ITUB4", 60, "BBAS3", 50)

	warnings := Validate(state)
	require.Len(t, warnings, 4)

	codes := map[string]Warning{}
	for _, w := range warnings {
		codes[w.Code] = w
	}
	assert.InDelta(t, 105, codes[WarnClassSum].Sum, 1e-9)
	assert.Equal(t, CapKey, codes[WarnCapSum].Key)
	assert.Equal(t, "realEstateFund", codes[WarnSectorSum].Key)
	assert.Equal(t, "equity:LargeCap:Banking", codes[WarnTickerSum].Key)
	assert.Contains(t, codes[WarnTickerSum].Message, "110.00%")
}

func TestValidate_Tolerance(t *testing.T) {
	state := sampleState()
	state.Classes.Set("equity", 50.005)
	assert.Empty(t, Validate(state))
}
