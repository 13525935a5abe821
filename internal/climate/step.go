package climate

import (
	"errors"
	"fmt"
	"math"

	"github.com/lox/greenhouse/internal/buffer"
	"github.com/lox/greenhouse/internal/greenhouse"
	"github.com/lox/greenhouse/internal/physics"
)

// ErrDegenerateThermalMass is returned when a node would divide by a zero,
// negative or non-finite heat capacity.
var ErrDegenerateThermalMass = errors.New("degenerate thermal mass")

const (
	// MaxStep bounds the air and roof air temperature change per step, C.
	// Hitting it exactly marks the step unstable.
	MaxStep = 50.0

	// ThinWall is the thickness below which both wall laminae move together.
	ThinWall = 0.005

	minDensityFactor = 0.2
	maxDensityFactor = 1.8

	groundConvection = 1.0 // W/m2 K

	soilEvapCoef      = 0.2
	condensationCoef  = 0.01
	bottleExposedArea = 0.0001

	// Empirical rates and absorptivities in calibrated profiles are
	// per-megajoule; this scales them to the step length.
	rateScale = 1e6
)

// Step integrates one time step of dt seconds. The returned State has
// Unstable set when a clamped air or roof air increment hits MaxStep or
// any node stops being finite; the caller should stop the run there.
func Step(cfg *greenhouse.Config, cur State, ext Exterior, dt float64) (State, Diagnostics, error) {
	var d Diagnostics

	wallArea := cfg.WallArea()
	roofArea := cfg.RoofArea()
	groundArea := cfg.GroundArea()
	volume := cfg.Volume()
	wall, roof, soil := cfg.Wall, cfg.Roof, cfg.Soil

	// Air properties
	h := physics.AbsoluteHumidity(cur.AirTemp, cur.RH)
	d.CpAir = physics.HumidAirSpecificHeat(h)
	cpWater := physics.WaterSpecificHeatAt(cur.BufferTemp)
	d.AirDensity = airDensity(ext.Pressure, cur.AirTemp, cur.RH)
	d.TopAirDensity = airDensity(ext.Pressure, cur.TopTemp, cur.RH)
	if cfg.SmoothDensity {
		d.AirDensity = smooth(d.AirDensity, cur.AirDensity)
		d.TopAirDensity = smooth(d.TopAirDensity, cur.TopAirDensity)
	}

	// Thermal masses
	waterMass := cfg.BufferMass()
	walls := physics.Mass{
		WallArea:         wallArea,
		WallThickness:    wall.Thickness,
		WallDensity:      wall.Density,
		WallSpecificHeat: wall.SpecificHeat,
	}
	mid := walls
	mid.AirDensity = d.AirDensity
	mid.AirSpecificHeat = d.CpAir
	mid.WaterSpecificHeat = cpWater
	mid.AirVolume = volume
	mid.WaterMass = waterMass
	mid.RH = cur.RH
	mid.AirTemp = cur.AirTemp
	mid.Pressure = ext.Pressure
	top := mid
	top.AirDensity = d.TopAirDensity
	top.AirTemp = cur.TopTemp

	d.MassMid = physics.ThermalMass(mid)
	d.MassTop = physics.ThermalMass(top)
	d.MassWall = physics.ThermalMass(walls)
	d.MassSoil = physics.ThermalMass(physics.Mass{
		FloorArea:         groundArea,
		FloorDepth:        soil.Depth,
		FloorDensity:      soil.Density,
		FloorSpecificHeat: soil.SpecificHeat,
	})
	for _, m := range []struct {
		node string
		v    float64
	}{{"air", d.MassMid}, {"roof air", d.MassTop}, {"soil", d.MassSoil}, {"wall", wallMass(wall, d.MassWall)}} {
		if !(m.v > 0) || math.IsInf(m.v, 0) {
			return cur, d, fmt.Errorf("%w: %s node has %v J/K", ErrDegenerateThermalMass, m.node, m.v)
		}
	}

	next := cur
	next.AirDensity = d.AirDensity
	next.TopAirDensity = d.TopAirDensity

	// Water buffer, exchanging with the roof air
	store := buffer.Store{Mass: waterMass, Area: cfg.BufferArea(), OpenFraction: cfg.Bottles.OpenFraction}
	d.Buffer = store.Step(cur.BufferTemp, cur.TopTemp, cur.RH)
	next.BufferTemp = d.Buffer.Temp
	released := d.Buffer.Released()

	irradiance := ext.Solar * rateScale / dt

	// Walls
	d.WallSolar = physics.SolarGain(irradiance, wall.SolarAbsorptivity, wallArea)
	d.WallExtRad = physics.RadiationLoss(cur.WallExtTemp, ext.Temp, wall.Emissivity, wallArea)
	d.WallExtConv = physics.Convection(cur.WallExtTemp, ext.Temp, wall.Conductivity, wallArea)
	d.WallExtCond = physics.Conduction(cur.WallExtTemp, cur.WallIntTemp, wall.Conductivity, wall.Thickness, wallArea)
	d.WallIntConv = physics.Convection(cur.WallIntTemp, cur.AirTemp, wall.Conductivity, wallArea)
	d.WallIntCond = physics.Conduction(cur.WallIntTemp, cur.AirTemp, wall.Conductivity, wall.Thickness, wallArea)

	if wall.Thickness < ThinWall {
		// single lamina; the net is applied as a per-step energy
		d.WallNetExt = d.WallSolar + d.WallExtConv - d.WallExtRad - d.WallIntConv - d.WallIntCond
		d.WallNetInt = d.WallNetExt
		next.WallExtTemp = cur.WallExtTemp + d.WallNetExt/d.MassWall
		next.WallIntTemp = next.WallExtTemp
	} else {
		d.WallNetExt = d.WallSolar + d.WallExtConv - (d.WallExtRad + d.WallExtCond)
		d.WallNetInt = d.WallExtCond - (d.WallIntConv + d.WallIntCond)
		next.WallExtTemp = cur.WallExtTemp + dt*d.WallNetExt/d.MassWall
		next.WallIntTemp = cur.WallIntTemp + dt*d.WallNetInt/d.MassWall
	}

	// Roof air
	d.TopSolar = math.Max(physics.SolarGain(irradiance, roof.SolarAbsorptivity, roofArea)*math.Cos(ext.SolarAngle*math.Pi/180), 0)
	d.TopCond = physics.Conduction(cur.TopTemp, ext.Temp, roof.Conductivity, roof.Thickness, roofArea)
	d.TopConv = physics.Convection(cur.TopTemp, ext.Temp, roof.Conductivity, roofArea)
	d.TopRad = physics.RadiationLoss(cur.TopTemp, ext.Temp, roof.Emissivity, roofArea)
	d.TopVent = physics.VentilationLoss(cur.TopTemp, ext.Temp, d.CpAir, d.TopAirDensity, cfg.TopVentRate*rateScale/dt, cfg.RoofVolume())
	d.RoofIntConv = physics.Convection(cur.TopTemp, cur.AirTemp, roof.Conductivity, roofArea)
	d.RoofIntRad = physics.RadiationLoss(cur.TopTemp, cur.AirTemp, roof.Emissivity, roofArea)

	// Ground
	d.GroundCond = physics.Conduction(cur.GroundTemp, cur.AirTemp, soil.SpecificHeat, soil.Depth, groundArea)
	d.GroundConv = physics.Convection(cur.AirTemp, cur.GroundTemp, groundConvection, groundArea)
	d.GroundNet = d.GroundConv - d.GroundCond
	next.GroundTemp = cur.GroundTemp + dt*d.GroundNet/(physics.AirDensity*physics.AirSpecificHeat*d.MassSoil)
	d.GroundLoss = physics.Conduction(cur.AirTemp, cur.GroundTemp, soil.Conductivity, soil.Depth, groundArea)

	// Main air
	d.AirCond = physics.Conduction(cur.AirTemp, ext.Temp, wall.Conductivity, wall.Thickness, wallArea)
	d.AirConv = physics.Convection(cur.AirTemp, ext.Temp, wall.Conductivity, wallArea)
	d.AirRad = physics.RadiationLoss(cur.AirTemp, ext.Temp, wall.Emissivity, wallArea)
	d.AirVent = physics.VentilationLoss(cur.AirTemp, ext.Temp, d.CpAir, d.AirDensity, cfg.VentRate*rateScale/dt, volume)
	d.AirInternal = physics.Convection(cur.TopTemp, cur.AirTemp, cfg.ConvectionCoef, roofArea+wallArea)

	// Humidity
	d.Moisture = physics.Moisture{
		AirTemp:          cur.AirTemp,
		AirRH:            cur.RH,
		ExtTemp:          ext.Temp,
		ExtRH:            ext.RH,
		Ventilation:      cfg.VentRate * dt,
		Transpiration:    cfg.TranspirationRate,
		SoilTemp:         cur.GroundTemp,
		Radiation:        ext.Solar,
		EvapCoef:         soilEvapCoef,
		WallTemp:         cur.WallIntTemp,
		CondCoef:         condensationCoef,
		CondArea:         wallArea + roofArea,
		WaterTemp:        cur.BufferTemp,
		WaterExposedArea: cfg.BufferArea() * cfg.Bottles.OpenFraction * bottleExposedArea,
	}.Balance()
	next.RH = physics.Clamp(d.Moisture.NewRelative, 0.5, 100)
	d.Latent = physics.LatentHeat(cfg.TranspirationRate, cur.RH, cur.AirTemp)

	d.TopNet = d.TopSolar - (d.TopCond + d.TopConv + d.TopRad + d.TopVent + d.RoofIntConv + d.RoofIntRad) + released
	d.TopIncrement = physics.Clamp(dt*d.TopNet/d.MassTop, -MaxStep, MaxStep)
	next.TopTemp = cur.TopTemp + d.TopIncrement

	d.AirNet = d.TopSolar/4 + d.AirInternal + d.WallIntConv + d.WallIntCond -
		(d.AirCond + d.AirConv + d.AirRad + d.AirVent + d.GroundLoss + d.Latent) + released/4
	d.AirIncrement = physics.Clamp(dt*d.AirNet/d.MassMid, -MaxStep, MaxStep)
	next.AirTemp = cur.AirTemp + d.AirIncrement

	if math.Abs(d.TopIncrement) == MaxStep || math.Abs(d.AirIncrement) == MaxStep || !next.finite() {
		next.Unstable = true
	}
	return next, d, nil
}

func airDensity(pressure, temp, rh float64) float64 {
	rho := physics.HumidAirDensity(pressure, temp, rh)
	return physics.Clamp(rho, physics.AirDensity*minDensityFactor, physics.AirDensity*maxDensityFactor)
}

func smooth(rho, prev float64) float64 {
	if prev > 0 && math.Abs(rho-prev) > greenhouse.MaxDensityJump {
		return (rho + prev) / 2
	}
	return rho
}

// wallMass is the wall node's thermal mass as the guard sees it. A wall of
// zero thickness has no node to integrate and is left to diverge.
func wallMass(wall greenhouse.Material, m float64) float64 {
	if wall.Thickness == 0 {
		return 1
	}
	return m
}
