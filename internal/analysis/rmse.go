// Package analysis holds the error metrics used to score simulated series
// against recorded data and comfort targets.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrLengthMismatch = errors.New("series length mismatch")
	ErrNoOverlap      = errors.New("no paired values")
)

// RMSE is the root mean square error between two series of equal length.
// Pairs where either value is NaN are left out, so gaps in logger data do
// not poison the score. Two empty series agree perfectly and score 0; a
// non-empty pair with no value present in both returns ErrNoOverlap.
func RMSE(actual, predicted []float64) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, fmt.Errorf("%w: %d actual, %d predicted", ErrLengthMismatch, len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return 0, nil
	}

	a := make([]float64, 0, len(actual))
	p := make([]float64, 0, len(predicted))
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		a = append(a, actual[i])
		p = append(p, predicted[i])
	}
	if len(a) == 0 {
		return 0, ErrNoOverlap
	}
	return floats.Distance(a, p, 2) / math.Sqrt(float64(len(a))), nil
}

// BandDeviation is the root mean square distance of values from the
// closed band [lo, hi]; values inside the band contribute zero.
func BandDeviation(values []float64, lo, hi float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sq := make([]float64, len(values))
	for i, v := range values {
		over := math.Max(0, v-hi)
		under := math.Max(0, lo-v)
		sq[i] = over*over + under*under
	}
	return math.Sqrt(stat.Mean(sq, nil))
}
