package allocation

import (
	"sort"

	"github.com/aristath/rebalancer/internal/domain"
)

// TargetState is the target configuration of one holder.
// Sectors and Tickers are keyed by the encoded parent Path.
type TargetState struct {
	Classes Weights
	Caps    Weights
	Sectors map[string]Weights
	Tickers map[string]Weights
}

// NewTargetState returns an empty state with every class at 0
func NewTargetState() TargetState {
	return TargetState{
		Classes: orderedClasses(Weights{}),
		Sectors: make(map[string]Weights),
		Tickers: make(map[string]Weights),
	}
}

// Clone returns a deep copy
func (s TargetState) Clone() TargetState {
	out := TargetState{
		Classes: s.Classes.Clone(),
		Caps:    s.Caps.Clone(),
		Sectors: make(map[string]Weights, len(s.Sectors)),
		Tickers: make(map[string]Weights, len(s.Tickers)),
	}
	for k, w := range s.Sectors {
		out.Sectors[k] = w.Clone()
	}
	for k, w := range s.Tickers {
		out.Tickers[k] = w.Clone()
	}
	return out
}

// Equal reports whether both states hold identical weights
func (s TargetState) Equal(other TargetState) bool {
	if !s.Classes.Equal(other.Classes) || !s.Caps.Equal(other.Caps) {
		return false
	}
	return equalGroups(s.Sectors, other.Sectors) && equalGroups(s.Tickers, other.Tickers)
}

func equalGroups(a, b map[string]Weights) bool {
	if len(a) != len(b) {
		return false
	}
	for k, w := range a {
		o, ok := b[k]
		if !ok || !w.Equal(o) {
			return false
		}
	}
	return true
}

// SectorWeights returns the sector weights stored under parent
func (s TargetState) SectorWeights(parent Path) Weights {
	return s.Sectors[parent.Key()]
}

// TickerWeights returns the instrument weights stored under parent
func (s TargetState) TickerWeights(parent Path) Weights {
	return s.Tickers[parent.Key()]
}

// IsEmpty reports whether no target has been configured
func (s TargetState) IsEmpty() bool {
	return s.Classes.Sum() == 0 && s.Caps.Len() == 0 && len(s.Sectors) == 0 && len(s.Tickers) == 0
}

func (s *TargetState) ensureMaps() {
	if s.Sectors == nil {
		s.Sectors = make(map[string]Weights)
	}
	if s.Tickers == nil {
		s.Tickers = make(map[string]Weights)
	}
}

// Record is the persisted shape of a TargetState. Cap weights are stored under the
// reserved CapKey entry of SectorTargets.
type Record struct {
	ClassTargets  Weights            `json:"class_targets"`
	SectorTargets map[string]Weights `json:"sector_targets"`
	TickerTargets map[string]Weights `json:"ticker_targets"`
}

// ToRecord converts the state to its persisted shape
func (s TargetState) ToRecord() Record {
	rec := Record{
		ClassTargets:  orderedClasses(s.Classes),
		SectorTargets: make(map[string]Weights, len(s.Sectors)+1),
		TickerTargets: make(map[string]Weights, len(s.Tickers)),
	}
	if s.Caps.Len() > 0 {
		rec.SectorTargets[CapKey] = s.Caps.Clone()
	}
	for k, w := range s.Sectors {
		rec.SectorTargets[k] = w.Clone()
	}
	for k, w := range s.Tickers {
		rec.TickerTargets[k] = w.Clone()
	}
	return rec
}

// StateFromRecord rebuilds a state from its persisted shape.
// Unknown class and cap names are dropped; classes and caps are put in enumeration order.
func StateFromRecord(rec Record) TargetState {
	s := NewTargetState()
	s.Classes = orderedClasses(rec.ClassTargets)

	for k, w := range rec.SectorTargets {
		if k == CapKey {
			s.Caps = orderedCaps(w)
			continue
		}
		s.Sectors[k] = w.Clone()
	}
	for k, w := range rec.TickerTargets {
		s.Tickers[k] = w.Clone()
	}
	return s
}

// orderedClasses returns all four classes in enumeration order, missing ones at 0
func orderedClasses(w Weights) Weights {
	var out Weights
	for _, c := range domain.AssetClasses {
		out.Set(string(c), w.Value(string(c)))
	}
	return out
}

// orderedCaps keeps the known buckets present in w, in enumeration order
func orderedCaps(w Weights) Weights {
	var out Weights
	for _, b := range domain.CapBuckets {
		if v, ok := w.Get(string(b)); ok {
			out.Set(string(b), v)
		}
	}
	return out
}

// sortedKeys returns map keys in lexical order
func sortedKeys(m map[string]Weights) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
