package allocation

import (
	"fmt"
	"math"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/aristath/rebalancer/internal/modules/classification"
)

// Profile is a preset allocation: class weights, equity cap weights and
// real estate fund sector weights. Instruments are always weighted equally.
type Profile struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Classes           Weights `json:"class_targets"`
	Caps              Weights `json:"cap_targets"`
	RealEstateSectors Weights `json:"real_estate_sectors"`
}

func classWeights(equity, realEstate, etf, fixedIncome float64) Weights {
	return NewWeights(
		Weight{string(domain.AssetClassEquity), equity},
		Weight{string(domain.AssetClassRealEstateFund), realEstate},
		Weight{string(domain.AssetClassExchangeTradedFund), etf},
		Weight{string(domain.AssetClassFixedIncome), fixedIncome},
	)
}

func capWeights(large, mid, small, micro float64) Weights {
	return NewWeights(
		Weight{string(domain.CapLarge), large},
		Weight{string(domain.CapMid), mid},
		Weight{string(domain.CapSmall), small},
		Weight{string(domain.CapMicro), micro},
	)
}

func realEstateWeights(brick, paper, hybrid float64) Weights {
	return NewWeights(
		Weight{classification.SectorBrick, brick},
		Weight{classification.SectorPaper, paper},
		Weight{classification.SectorHybrid, hybrid},
	)
}

var profiles = []Profile{
	{
		ID:                "conservative",
		Name:              "Conservative",
		Description:       "Capital preservation with a large fixed income share",
		Classes:           classWeights(15, 15, 10, 60),
		Caps:              capWeights(70, 20, 10, 0),
		RealEstateSectors: realEstateWeights(40, 50, 10),
	},
	{
		ID:                "moderate",
		Name:              "Moderate",
		Description:       "Balanced growth and income",
		Classes:           classWeights(35, 20, 15, 30),
		Caps:              capWeights(55, 25, 15, 5),
		RealEstateSectors: realEstateWeights(50, 35, 15),
	},
	{
		ID:                "aggressive",
		Name:              "Aggressive",
		Description:       "Long horizon growth through equities",
		Classes:           classWeights(60, 15, 15, 10),
		Caps:              capWeights(40, 30, 20, 10),
		RealEstateSectors: realEstateWeights(60, 25, 15),
	},
	{
		ID:                "income",
		Name:              "Income",
		Description:       "Monthly income from real estate funds and dividend payers",
		Classes:           classWeights(25, 40, 5, 30),
		Caps:              capWeights(80, 15, 5, 0),
		RealEstateSectors: realEstateWeights(35, 50, 15),
	},
}

// Profiles returns the available presets
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// LookupProfile returns the preset with id
func LookupProfile(id string) (Profile, error) {
	for _, p := range profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, id)
}

// ApplyProfile builds a complete target state from a preset and the current holdings.
// Positions are expected to be classified already.
//
// Equity sectors and instruments inside every group get equal weights, with the
// integer remainder on the first entry. Real estate fund sectors use the preset and
// split what is left evenly among sectors the preset does not name.
func ApplyProfile(profileID string, positions []domain.Position, fixedIncome []domain.FixedIncomeItem) (TargetState, error) {
	profile, err := LookupProfile(profileID)
	if err != nil {
		return TargetState{}, err
	}

	state := NewTargetState()
	state.Classes = orderedClasses(profile.Classes)
	state.Caps = orderedCaps(profile.Caps)

	fillGroups(&state, positions, fixedIncome, func(class domain.AssetClass, sectors []string) Weights {
		if class == domain.AssetClassRealEstateFund {
			return presetWeights(sectors, profile.RealEstateSectors)
		}
		return EqualWeights(sectors)
	})
	return state, nil
}

// AutoInitialize builds equal weights across the classes, caps, sectors and
// instruments present in the holdings. It is used when a holder has no saved state.
func AutoInitialize(positions []domain.Position, fixedIncome []domain.FixedIncomeItem) TargetState {
	state := NewTargetState()

	var present []string
	for _, class := range domain.AssetClasses {
		if len(collectHoldings(class, positions, fixedIncome, state)) > 0 {
			present = append(present, string(class))
		}
	}
	eq := EqualWeights(present)
	for _, class := range present {
		state.Classes.Set(class, eq.Value(class))
	}

	var caps []string
	for _, h := range collectHoldings(domain.AssetClassEquity, positions, nil, state) {
		caps = appendUnique(caps, string(h.cap))
	}
	state.Caps = orderedCaps(EqualWeights(caps))

	fillGroups(&state, positions, fixedIncome, func(_ domain.AssetClass, sectors []string) Weights {
		return EqualWeights(sectors)
	})
	return state
}

// fillGroups writes sector and instrument weights for every group of the current
// holdings. Target-only instruments are not included.
func fillGroups(state *TargetState, positions []domain.Position, fixedIncome []domain.FixedIncomeItem, sectorWeights func(domain.AssetClass, []string) Weights) {
	state.ensureMaps()
	empty := NewTargetState()

	for _, class := range domain.AssetClasses {
		shape := shapeOf(class)
		hs := collectHoldings(class, positions, fixedIncome, empty)

		sectorGroups := groupBy(hs, func(h holding) string {
			p, ok := shape.sectorParent(class, h)
			if !ok {
				return ""
			}
			return p.Key()
		})
		for _, g := range sectorGroups {
			if g.key == "" {
				continue
			}
			var sectors []string
			for _, h := range g.items {
				sectors = appendUnique(sectors, h.sector)
			}
			state.Sectors[g.key] = sectorWeights(class, sectors)
		}

		leafGroups := groupBy(hs, func(h holding) string {
			return shape.leafParent(class, h).Key()
		})
		for _, g := range leafGroups {
			var symbols []string
			for _, h := range g.items {
				symbols = appendUnique(symbols, h.symbol)
			}
			state.Tickers[g.key] = EqualWeights(symbols)
		}
	}
}

// EqualWeights splits 100 evenly across keys; the integer remainder goes to the first key
func EqualWeights(keys []string) Weights {
	var w Weights
	if len(keys) == 0 {
		return w
	}
	n := float64(len(keys))
	share := math.Floor(100 / n)
	extra := 100 - share*n
	for i, k := range keys {
		v := share
		if i == 0 {
			v += extra
		}
		w.Set(k, v)
	}
	return w
}

// presetWeights takes preset values for the named sectors, splits what is left
// evenly among the others and rescales the set to 100
func presetWeights(sectors []string, preset Weights) Weights {
	var w Weights
	var presetSum float64
	var others []string
	for _, s := range sectors {
		if v, ok := preset.Get(s); ok {
			w.Set(s, v)
			presetSum += v
			continue
		}
		w.Set(s, 0)
		others = append(others, s)
	}
	if len(others) > 0 {
		share := math.Max(0, 100-presetSum) / float64(len(others))
		for _, s := range others {
			w.Set(s, share)
		}
	}
	return normalize(w)
}

// normalize rescales w to sum to exactly 100, rounding every key but the last,
// which takes the residual. An all-zero set falls back to equal weights.
func normalize(w Weights) Weights {
	total := w.Sum()
	if w.Len() == 0 {
		return w
	}
	if total <= 0 {
		return EqualWeights(w.Keys())
	}

	var out Weights
	var assigned float64
	keys := w.Keys()
	last := len(keys) - 1
	for i, k := range keys {
		v := math.Round(w.Value(k) * 100 / total)
		if i == last {
			v = 100 - assigned
		}
		out.Set(k, v)
		assigned += v
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
