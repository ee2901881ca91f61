package allocation

import "math"

// ClampPercent limits v to [0, 100]. NaN becomes 0.
func ClampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// Redistribute sets changedKey to newValue and rescales the other siblings so the
// set sums to 100 again. newValue is expected to be clamped already.
//
// When the others are all zero the remainder is split evenly, with the integer
// remainder going to the first other key. Otherwise each other key keeps its share
// of the old total, rounded, and the last key takes whatever is left so the sum is
// exact. A key not yet in the set is appended before rescaling.
func Redistribute(siblings Weights, changedKey string, newValue float64) Weights {
	out := siblings.Clone()
	out.Set(changedKey, newValue)

	others := make([]string, 0, out.Len())
	for _, k := range out.keys {
		if k != changedKey {
			others = append(others, k)
		}
	}
	if len(others) == 0 {
		return out
	}

	remaining := 100 - newValue
	if remaining <= 0 {
		for _, k := range others {
			out.Set(k, 0)
		}
		return out
	}

	var oldTotal float64
	for _, k := range others {
		oldTotal += siblings.Value(k)
	}

	if oldTotal <= 0 {
		n := float64(len(others))
		share := math.Floor(remaining / n)
		extra := remaining - share*n
		for i, k := range others {
			v := share
			if i == 0 {
				v += extra
			}
			out.Set(k, v)
		}
		return out
	}

	var assigned float64
	last := len(others) - 1
	for i, k := range others {
		v := math.Round(siblings.Value(k) * remaining / oldTotal)
		if i == last {
			v = remaining - assigned
		}
		out.Set(k, v)
		assigned += v
	}
	return out
}
