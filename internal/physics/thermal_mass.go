package physics

import "math"

// Mass describes the bodies lumped into one node's heat capacity. Zero
// fields simply drop their body from the sum.
type Mass struct {
	AirDensity        float64
	AirSpecificHeat   float64
	WaterSpecificHeat float64
	AirVolume         float64

	WallArea         float64
	WallThickness    float64
	WallDensity      float64
	WallSpecificHeat float64

	FloorArea         float64
	FloorDepth        float64
	FloorDensity      float64
	FloorSpecificHeat float64

	WaterMass float64 // kg

	RH       float64 // %, of the air body
	AirTemp  float64 // C, of the air body
	Pressure float64 // hPa
}

// ThermalMass returns the effective heat capacity of the node, J/K.
func ThermalMass(m Mass) float64 {
	air := m.AirVolume * m.AirDensity * m.AirSpecificHeat
	walls := m.WallArea * m.WallThickness * m.WallDensity * m.WallSpecificHeat
	floor := m.FloorArea * m.FloorDepth * m.FloorDensity * m.FloorSpecificHeat
	water := m.WaterMass * m.WaterSpecificHeat

	return air + walls + floor + water + vaporMass(air, m)*m.WaterSpecificHeat
}

// vaporMass approximates the vapour carried by the air body from its
// mixing ratio. Pressures are compared in hPa.
func vaporMass(air float64, m Mass) float64 {
	pSat := SaturationVaporPressure(m.AirTemp) / 100
	if m.Pressure <= pSat {
		return 0
	}
	mixing := m.RH / 100 * (MolecularWeightRatio * pSat / (m.Pressure - pSat))
	return math.Max(mixing*air/6, 0)
}
