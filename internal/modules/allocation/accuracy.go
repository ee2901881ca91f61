package allocation

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Accuracy scores how close the class roots are to their targets:
// 100 minus the summed absolute class drift, floored at 0.
func Accuracy(classes []Node) float64 {
	drifts := make([]float64, 0, len(classes))
	for _, n := range classes {
		if n.Level != LevelClass {
			continue
		}
		drifts = append(drifts, math.Abs(n.Drift))
	}
	if len(drifts) == 0 {
		return 100
	}
	return math.Max(0, 100-floats.Sum(drifts))
}
