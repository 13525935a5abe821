package crop

import "math"

const (
	// AmbientCO2 is the concentration assumed for every run, ppm.
	AmbientCO2 = 400.0

	maxInterception = 0.95

	// RestartBiomass seeds the next cycle after a harvest so growth never
	// restarts from exactly zero.
	RestartBiomass = 0.01
)

// FSolar is the logistic share of radiation intercepted by the canopy at
// accumulated thermal time tt.
func FSolar(tt, i50a float64) float64 {
	return maxInterception / (1 + math.Exp(-0.01*(tt-i50a)))
}

// FTemp ramps linearly from 0 at base to 1 at the optimum.
func FTemp(t, base, opt float64) float64 {
	switch {
	case t < base:
		return 0
	case t < opt:
		return (t - base) / (opt - base)
	default:
		return 1
	}
}

// FHeat decays linearly from 1 at the heat threshold to 0 at the extreme.
func FHeat(tMax, heat, extreme float64) float64 {
	switch {
	case tMax <= heat:
		return 1
	case tMax <= extreme:
		return 1 - (tMax-heat)/(extreme-heat)
	default:
		return 0
	}
}

// FCO2 is the RUE enhancement at co2 ppm, saturating outside [350, 700).
func FCO2(co2, sensitivity float64) float64 {
	if co2 >= 350 && co2 < 700 {
		return 1 + sensitivity*(co2-350)
	}
	return 1 + sensitivity*350
}

// Grow advances one day. radiation is the day's total in MJ/m2; tMean and
// tMax are the day's mean and maximum air temperature.
func Grow(biomass, tt, radiation, tMean, tMax float64, p Params, co2 float64) (newBiomass, newTT float64) {
	newTT = tt + math.Max(tMean-p.BaseTemp, 0)
	rate := radiation *
		FSolar(newTT, p.I50A) *
		p.RUE *
		FCO2(co2, p.SCO2) *
		FTemp(tMean, p.BaseTemp, p.OptimalTemp) *
		math.Min(FHeat(tMax, p.HeatTemp, p.ExtremeTemp), 1)
	return biomass + rate, newTT
}

// State tracks one crop through repeated harvest cycles.
type State struct {
	Params Params
	CO2    float64
	// Restart is the biomass a new cycle starts from after a harvest.
	Restart float64

	ThermalTime float64
	Biomass     float64 // current cycle
	Harvested   float64 // completed cycles
	Cycles      float64
}

// NewState starts a crop from bare ground at ambient CO2.
func NewState(p Params) *State {
	return &State{Params: p, CO2: AmbientCO2, Restart: RestartBiomass}
}

// Day grows the crop by one day and harvests it if it reached maturity.
// It reports whether a harvest happened.
func (s *State) Day(radiation, tMean, tMax float64) bool {
	s.Biomass, s.ThermalTime = Grow(s.Biomass, s.ThermalTime, radiation, tMean, tMax, s.Params, s.CO2)
	if s.ThermalTime < s.Params.ThermalTimeSum {
		return false
	}
	s.Harvested += s.Biomass
	s.ThermalTime = 0
	s.Biomass = s.Restart
	s.Cycles++
	return true
}

// Finalize credits the unfinished cycle: its fractional progress counts
// toward Cycles and its biomass toward the total. It returns the cycle
// count and total biomass.
func (s *State) Finalize() (cycles, biomass float64) {
	s.Cycles += s.ThermalTime / s.Params.ThermalTimeSum
	s.Harvested += s.Biomass
	s.ThermalTime = 0
	s.Biomass = 0
	return s.Cycles, s.Harvested
}

// Yield is the harvestable share of the total biomass.
func (s *State) Yield() float64 {
	return s.Harvested * s.Params.HarvestIndex
}
