package physics

import "math"

// SaturationVaporPressure uses the Tetens form, Pa.
func SaturationVaporPressure(temp float64) float64 {
	return SaturationVaporAtZero * math.Exp((17.27*temp)/(temp+237.3))
}

// AbsoluteHumidity converts a relative humidity (%) at temp into the
// humidity ratio used by the moisture balance. Never negative.
func AbsoluteHumidity(temp, rh float64) float64 {
	avp := rh / 100 * SaturationVaporPressure(temp)
	return math.Max(0, MolecularWeightRatio*avp/(SeaLevelPressure-avp))
}

// RelativeHumidityFromAbsolute inverts AbsoluteHumidity, clamped to [0, 100].
func RelativeHumidityFromAbsolute(temp, h float64) float64 {
	svp := SaturationVaporPressure(temp)
	avp := h * SeaLevelPressure / (MolecularWeightRatio + h)
	return clamp(avp/svp*100, 0, 100)
}

// HumidAirDensity sums the ideal gas densities of the dry air and vapour
// partial pressures. pressure is in hPa.
func HumidAirDensity(pressure, temp, rh float64) float64 {
	tk := temp + CelsiusToKelvin
	pVapor := rh / 100 * SaturationVaporPressure(temp)
	pDry := pressure*100 - pVapor
	return pDry/(GasConstantAir*tk) + pVapor/(GasConstantWater*tk)
}

// HumidAirSpecificHeat adds the vapour share of absolute humidity h to the
// dry air cp, held within 20% of the dry value.
func HumidAirSpecificHeat(h float64) float64 {
	return clamp(AirSpecificHeat+h*VaporSpecificHeat, AirSpecificHeat*0.8, AirSpecificHeat*1.2)
}

// WaterSpecificHeatAt is the temperature dependent cp of liquid water,
// held within 5% of WaterSpecificHeat.
func WaterSpecificHeatAt(temp float64) float64 {
	cp := 4181.3 - 3.2*temp + 0.0024*temp*temp
	return clamp(cp, WaterSpecificHeat*0.95, WaterSpecificHeat*1.05)
}

// SoilEvaporation is the radiation driven vapour added by moist soil.
func SoilEvaporation(soilTemp, rh, radiation, coef float64) float64 {
	es := SaturationVaporPressure(soilTemp)
	eAir := es * rh / 100
	return coef * radiation * (es - eAir) / SeaLevelPressure / 1000
}

// OpenWaterEvaporation is the vapour added by an exposed water surface.
func OpenWaterEvaporation(waterTemp, rh, area, coef float64) float64 {
	es := SaturationVaporPressure(waterTemp)
	eAir := es * rh / 100
	return coef * area * (es - eAir) / SeaLevelPressure / 1000
}

// Condensation is the moisture removed on a surface colder than the air's
// dew point. Zero when the air is not oversaturated relative to the wall.
func Condensation(airTemp, rh, wallTemp, coef, area float64) float64 {
	esWall := SaturationVaporPressure(wallTemp)
	eAir := SaturationVaporPressure(airTemp) * rh / 100
	if eAir > esWall {
		return coef * area * (eAir - esWall)
	}
	return 0
}

// Moisture holds the inputs of one moisture balance evaluation.
type Moisture struct {
	AirTemp          float64 // C
	AirRH            float64 // %
	ExtTemp          float64 // C
	ExtRH            float64 // %
	Ventilation      float64 // fraction of the humidity difference exchanged per step
	Transpiration    float64 // plant transpiration coefficient
	SoilTemp         float64
	Radiation        float64 // W/m2
	EvapCoef         float64
	WallTemp         float64
	CondCoef         float64
	CondArea         float64 // m2
	WaterTemp        float64
	WaterExposedArea float64 // m2
}

// MoistureTerms is the breakdown of one balance, in humidity ratio units.
type MoistureTerms struct {
	Ventilation   float64
	Transpiration float64
	SoilEvap      float64
	WaterEvap     float64
	Condensation  float64
	NewAbsolute   float64
	NewRelative   float64
}

// Balance advances the interior absolute humidity by one step and returns
// the resulting relative humidity along with each contribution.
func (m Moisture) Balance() MoistureTerms {
	hAir := AbsoluteHumidity(m.AirTemp, m.AirRH)
	hExt := AbsoluteHumidity(m.ExtTemp, m.ExtRH)

	t := MoistureTerms{
		Ventilation:   m.Ventilation * (hExt - hAir),
		Transpiration: m.Transpiration * AirDensity,
		SoilEvap:      SoilEvaporation(m.SoilTemp, m.AirRH, m.Radiation, m.EvapCoef),
		WaterEvap:     OpenWaterEvaporation(m.WaterTemp, m.AirRH, m.WaterExposedArea, m.EvapCoef),
		Condensation:  Condensation(m.AirTemp, m.AirRH, m.WallTemp, m.CondCoef, m.CondArea),
	}
	t.NewAbsolute = hAir + t.Ventilation + t.Transpiration + t.SoilEvap + t.WaterEvap - t.Condensation
	t.NewRelative = RelativeHumidityFromAbsolute(m.AirTemp, t.NewAbsolute)
	return t
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Clamp bounds v to [lo, hi]. NaN is passed through.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return clamp(v, lo, hi)
}
