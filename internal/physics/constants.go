// Package physics holds the physical constants and the stateless heat and
// mass transfer primitives the greenhouse model is assembled from.
//
// Temperatures are in degrees Celsius unless a function says otherwise.
// Fluxes are in watts, with the sign convention that a positive value flows
// from the first temperature argument to the second.
package physics

const (
	AirDensity        = 1.225   // kg/m3, dry air at sea level and 15 C
	AirSpecificHeat   = 1005.0  // J/kg K
	WaterSpecificHeat = 4186.0  // J/kg K
	StefanBoltzmann   = 5.67e-8 // W/m2 K4

	CelsiusToKelvin = 273.15

	SeaLevelPressure       = 101325.0 // Pa
	MolecularWeightRatio   = 0.622    // water vapour / dry air
	SaturationVaporAtZero  = 610.78   // Pa, saturation vapour pressure of water at 0 C
	LatentHeatVaporization = 2.45e6   // J/kg

	GasConstantAir   = 287.05 // J/kg K
	GasConstantWater = 461.5  // J/kg K

	// VaporSpecificHeat scales absolute humidity into the humid-air cp.
	VaporSpecificHeat = 1860.0 // J/kg K

	// BottleEvapRateHole is the evaporation rate through the opening of a
	// water bottle, kg/s per m2 of exposed surface.
	BottleEvapRateHole = 0.0001
)
