// Package climate advances the greenhouse by one explicit time step: air,
// roof air, wall laminae, ground, water buffer and humidity.
package climate

import (
	"math"
	"time"

	"github.com/lox/greenhouse/internal/physics"
)

// State is the full thermal state between two steps. Temperatures are in
// Celsius, RH in percent.
type State struct {
	AirTemp     float64
	TopTemp     float64
	WallExtTemp float64
	WallIntTemp float64
	GroundTemp  float64
	BufferTemp  float64
	RH          float64

	// Densities of the previous step, kg/m3, used for optional smoothing.
	AirDensity    float64
	TopAirDensity float64

	Unstable bool
}

// Initial returns the starting state of a run. Walls and ground start at
// the air temperature; the water buffer starts 5 C warmer.
func Initial(airTemp, topTemp, rh float64) State {
	return State{
		AirTemp:       airTemp,
		TopTemp:       topTemp,
		WallExtTemp:   airTemp,
		WallIntTemp:   airTemp,
		GroundTemp:    airTemp,
		BufferTemp:    airTemp + 5,
		RH:            rh,
		AirDensity:    physics.AirDensity,
		TopAirDensity: physics.AirDensity,
	}
}

func (s State) finite() bool {
	for _, v := range []float64{s.AirTemp, s.TopTemp, s.WallExtTemp, s.WallIntTemp, s.GroundTemp, s.BufferTemp, s.RH} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Exterior is one hourly weather observation.
type Exterior struct {
	Time       time.Time
	Temp       float64 // C
	RH         float64 // %
	Pressure   float64 // hPa
	Solar      float64 // W/m2
	SolarAngle float64 // zenith, degrees
}
