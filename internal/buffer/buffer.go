// Package buffer models the hanging water bottles that store daytime heat
// and release it overnight.
package buffer

import "github.com/lox/greenhouse/internal/physics"

const (
	// SurfaceCoefficient is the still-air film coefficient on a bottle, W/m2 K.
	SurfaceCoefficient = 15.0
	wallConductivity   = 1.0
	wallThickness      = 0.001
	emissivity         = 1.0
)

// Store is a lumped water mass.
type Store struct {
	Mass         float64 // kg
	Area         float64 // m2
	OpenFraction float64 // share of bottles uncapped, 0..1
}

// Exchange is the result of one step.
type Exchange struct {
	Gain   float64 // W taken up by the water; negative while discharging
	Latent float64 // W spent evaporating through open necks
	Vapour float64 // kg/s released by open necks
	Temp   float64 // new water temperature
}

// Released is the heat handed back to the surrounding air.
func (e Exchange) Released() float64 { return -e.Gain }

// Step exchanges heat between the store at waterTemp and air at airTemp.
// A store with no mass or no area is inert.
func (s Store) Step(waterTemp, airTemp, rh float64) Exchange {
	if s.Mass <= 0 || s.Area <= 0 {
		return Exchange{Temp: waterTemp}
	}

	conv := physics.Convection(airTemp, waterTemp, SurfaceCoefficient, s.Area)
	cond := physics.Conduction(airTemp, waterTemp, wallConductivity, wallThickness, s.Area)
	rad := physics.RadiationLoss(waterTemp, airTemp, emissivity, s.Area)
	gain := conv + cond - rad

	var vapour, latent float64
	if s.OpenFraction > 0 {
		vapour = physics.OpenWaterEvaporation(waterTemp, rh, s.Area*s.OpenFraction, physics.BottleEvapRateHole)
		latent = vapour * (physics.LatentHeatVaporization - 2370*waterTemp)
	}

	cp := physics.WaterSpecificHeatAt(waterTemp)
	return Exchange{
		Gain:   gain,
		Latent: latent,
		Vapour: vapour,
		Temp:   waterTemp + (gain-latent)/(s.Mass*cp),
	}
}
