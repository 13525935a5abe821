package simulation

import (
	"github.com/lox/greenhouse/internal/crop"
	"github.com/lox/greenhouse/internal/models"
)

// Baseline is the open-field reference yield.
type Baseline struct {
	Cycles  float64
	Biomass float64
	Yield   float64
}

// OpenField grows the crop from the exterior temperature alone. Unlike
// the greenhouse run each new cycle restarts from zero biomass.
func OpenField(records []models.WeatherRecord, p crop.Params) Baseline {
	s := crop.NewState(p)
	s.Restart = 0
	g := newGrower(s, len(records))

	for i, rec := range records {
		g.observe(i, rec)
		g.temps = append(g.temps, rec.Temperature)
	}

	cycles, biomass := s.Finalize()
	return Baseline{Cycles: cycles, Biomass: biomass, Yield: s.Yield()}
}
