package allocation

import (
	"fmt"
	"math"
)

// SumTolerance is how far a sibling sum may stray from 100 before it is reported
const SumTolerance = 0.01

// Warning codes
const (
	WarnClassSum  = "class_sum"
	WarnCapSum    = "cap_sum"
	WarnSectorSum = "sector_sum"
	WarnTickerSum = "ticker_sum"
)

// Warning describes a set of sibling targets that does not sum to 100.
// Warnings are advisory; nothing in the engine refuses to work with such a set.
type Warning struct {
	Code    string  `json:"code"`
	Key     string  `json:"key"`
	Message string  `json:"message"`
	Sum     float64 `json:"sum"`
}

// Validate lists every sibling set of state whose sum deviates from 100
func Validate(state TargetState) []Warning {
	warnings := []Warning{}

	check := func(code, key, what string, w Weights) {
		sum := w.Sum()
		if math.Abs(sum-100) <= SumTolerance {
			return
		}
		warnings = append(warnings, Warning{
			Code:    code,
			Key:     key,
			Sum:     sum,
			Message: fmt.Sprintf("%s targets sum to %.2f%% instead of 100%%", what, sum),
		})
	}

	check(WarnClassSum, "", "Asset class", state.Classes)
	if state.Caps.Len() > 0 {
		check(WarnCapSum, CapKey, "Equity cap", state.Caps)
	}
	for _, key := range sortedKeys(state.Sectors) {
		check(WarnSectorSum, key, "Sector ("+key+")", state.Sectors[key])
	}
	for _, key := range sortedKeys(state.Tickers) {
		check(WarnTickerSum, key, "Instrument ("+key+")", state.Tickers[key])
	}
	return warnings
}
