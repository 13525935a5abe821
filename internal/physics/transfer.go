package physics

import "math"

// Conduction returns the Fourier heat flow through a layer of the given
// conductivity (W/m K), thickness (m) and area (m2).
func Conduction(tIn, tOut, conductivity, thickness, area float64) float64 {
	return conductivity * area * (tIn - tOut) / thickness
}

// Convection returns the convective flow between two bodies for a heat
// transfer coefficient h (W/m2 K).
func Convection(tA, tB, h, area float64) float64 {
	return h * area * (tA - tB)
}

// RadiationLoss applies the Stefan-Boltzmann law on Kelvin temperatures.
func RadiationLoss(tIn, tOut, emissivity, area float64) float64 {
	kIn := tIn + CelsiusToKelvin
	kOut := tOut + CelsiusToKelvin
	return emissivity * StefanBoltzmann * area * (math.Pow(kIn, 4) - math.Pow(kOut, 4))
}

// VentilationLoss is the sensible heat carried out by an air exchange of
// rate over volume.
func VentilationLoss(tIn, tOut, cpAir, rhoAir, rate, volume float64) float64 {
	return rhoAir * volume * rate * cpAir * (tIn - tOut)
}

// SolarGain is the absorbed share of irradiance over an area. Never negative.
func SolarGain(irradiance, absorptivity, area float64) float64 {
	return math.Max(absorptivity*irradiance*area, 0)
}

// LatentHeat is the evaporative loss of a transpiration potential
// (kg/s at RH=0), reduced as the ambient relative humidity (%) rises.
func LatentHeat(transpirationRate, rh, temp float64) float64 {
	lv := LatentHeatVaporization - 2370*temp
	return transpirationRate * (1 - rh/100) * lv
}
