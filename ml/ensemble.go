package ml

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Combine merges two probability distributions by elementwise arithmetic
// mean. Both inputs must be NumClasses wide.
func Combine(a, b []float64) ([]float64, error) {
	if len(a) != NumClasses || len(b) != NumClasses {
		return nil, fmt.Errorf("distributions must have %d entries, got %d and %d", NumClasses, len(a), len(b))
	}
	combined := make([]float64, NumClasses)
	for i := range combined {
		combined[i] = (a[i] + b[i]) / 2
	}
	return combined, nil
}

// ArgMax picks the class with the highest probability. Ties resolve to the
// lowest ordinal: floats.MaxIdx returns the first occurrence of the maximum,
// which keeps the choice deterministic.
func ArgMax(dist []float64) int {
	return floats.MaxIdx(dist)
}
