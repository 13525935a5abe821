package optimize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lox/greenhouse/internal/greenhouse"
)

// Bound limits one profile parameter to [Lo, Hi].
type Bound struct {
	Key string
	Lo  float64
	Hi  float64

	// Integer rounds the mapped value, for counts.
	Integer bool
}

// DesignBounds are the construction choices open to a builder.
var DesignBounds = []Bound{
	{Key: greenhouse.KeyBottles, Lo: 0, Hi: 50, Integer: true},
	{Key: "wall_conductivity", Lo: 0.8, Hi: 0.9},
	{Key: "wall_thickness", Lo: 0.15, Hi: 0.5},
	{Key: greenhouse.KeyLength, Lo: 3, Hi: 10},
	{Key: greenhouse.KeyWidth, Lo: 3, Hi: 10},
	{Key: greenhouse.KeyHeight, Lo: 1.5, Hi: 5},
}

// CalibrationBounds are the empirical coefficients fitted to logger data.
var CalibrationBounds = []Bound{
	{Key: "wall_solar_absorp_coef", Lo: 0, Hi: 0.01},
	{Key: "roof_solar_absorp_coef", Lo: 0, Hi: 0.05},
	{Key: greenhouse.KeyVentRate, Lo: 0, Hi: 0.005},
	{Key: greenhouse.KeyTopVentRate, Lo: 0, Hi: 0.02},
}

// ParseBound reads "key=lo:hi".
func ParseBound(s string) (Bound, error) {
	key, rng, ok := strings.Cut(s, "=")
	if !ok {
		return Bound{}, fmt.Errorf("bound %q: want key=lo:hi", s)
	}
	loS, hiS, ok := strings.Cut(rng, ":")
	if !ok {
		return Bound{}, fmt.Errorf("bound %q: want key=lo:hi", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(loS), 64)
	if err != nil {
		return Bound{}, fmt.Errorf("bound %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(hiS), 64)
	if err != nil {
		return Bound{}, fmt.Errorf("bound %q: %w", s, err)
	}
	b := Bound{Key: strings.TrimSpace(key), Lo: lo, Hi: hi}
	return b, b.check()
}

func (b Bound) check() error {
	if _, err := greenhouse.Default().Get(b.Key); err != nil {
		return err
	}
	if !(b.Hi > b.Lo) {
		return fmt.Errorf("bound %s: upper %v not above lower %v", b.Key, b.Hi, b.Lo)
	}
	return nil
}

// value maps an unconstrained search coordinate into the bound.
func (b Bound) value(x float64) float64 {
	v := b.Lo + (b.Hi-b.Lo)/(1+math.Exp(-x))
	if b.Integer {
		v = math.Round(v)
	}
	return v
}

func params(bounds []Bound, x []float64) map[string]float64 {
	p := make(map[string]float64, len(bounds))
	for i, b := range bounds {
		p[b.Key] = b.value(x[i])
	}
	return p
}
