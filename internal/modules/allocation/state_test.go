package allocation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storedRecord = `{
	"class_targets": {"fixedIncome": 20, "equity": 60, "realEstateFund": 20, "bogus": 5},
	"sector_targets": {
		"_cap": {"MidCap": 30, "LargeCap": 70, "GiantCap": 1},
		"equity:LargeCap": {"Banking": 60, "Energy": 40},
		"realEstateFund": {"Paper": 55, "Brick": 45}
	},
	"ticker_targets": {
		"equity:LargeCap:Banking": {"ITUB4": 50, "BBDC4": 50},
		"exchangeTradedFund:_flat": {"BOVA11": 100}
	}
}`

func TestStateFromRecord_ReadsStoredShape(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(storedRecord), &rec))
	state := StateFromRecord(rec)

	assert.Equal(t, []string{"equity", "realEstateFund", "exchangeTradedFund", "fixedIncome"}, state.Classes.Keys())
	assert.Equal(t, 60.0, state.Classes.Value("equity"))
	assert.Equal(t, 0.0, state.Classes.Value("exchangeTradedFund"))

	assert.Equal(t, []string{"LargeCap", "MidCap"}, state.Caps.Keys())
	assert.NotContains(t, state.Sectors, CapKey)

	assert.Equal(t, []string{"Paper", "Brick"}, state.Sectors["realEstateFund"].Keys())
	assert.Equal(t, []string{"ITUB4", "BBDC4"}, state.Tickers["equity:LargeCap:Banking"].Keys())
}

func TestTargetState_RecordRoundTrip(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(storedRecord), &rec))
	state := StateFromRecord(rec)

	data, err := json.Marshal(state.ToRecord())
	require.NoError(t, err)

	var again Record
	require.NoError(t, json.Unmarshal(data, &again))
	assert.True(t, state.Equal(StateFromRecord(again)))

	var raw map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw["sector_targets"], CapKey, "cap weights are embedded in sector_targets")
}

func TestTargetState_CloneIsIndependent(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(storedRecord), &rec))
	state := StateFromRecord(rec)

	clone := state.Clone()
	banking := clone.Tickers["equity:LargeCap:Banking"]
	banking.Set("ITUB4", 0)
	clone.Tickers["equity:LargeCap:Banking"] = banking
	clone.Classes.Set("equity", 0)

	assert.Equal(t, 50.0, state.Tickers["equity:LargeCap:Banking"].Value("ITUB4"))
	assert.Equal(t, 60.0, state.Classes.Value("equity"))
	assert.False(t, state.Equal(clone))
}

func TestNewTargetState(t *testing.T) {
	state := NewTargetState()
	assert.True(t, state.IsEmpty())
	assert.Equal(t, 4, state.Classes.Len())
	assert.NotNil(t, state.Sectors)
	assert.NotNil(t, state.Tickers)
}
