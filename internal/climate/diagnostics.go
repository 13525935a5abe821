package climate

import (
	"github.com/lox/greenhouse/internal/buffer"
	"github.com/lox/greenhouse/internal/physics"
)

// Diagnostics records every intermediate flux (W) and property of one
// step. It is for inspection only.
type Diagnostics struct {
	CpAir         float64
	AirDensity    float64
	TopAirDensity float64

	MassMid  float64 // J/K
	MassTop  float64
	MassWall float64
	MassSoil float64

	WallSolar   float64
	WallExtConv float64
	WallExtRad  float64
	WallExtCond float64
	WallIntConv float64
	WallIntCond float64
	WallNetExt  float64
	WallNetInt  float64

	TopSolar    float64
	TopCond     float64
	TopConv     float64
	TopRad      float64
	TopVent     float64
	RoofIntConv float64
	RoofIntRad  float64
	TopNet      float64

	GroundConv float64
	GroundCond float64
	GroundNet  float64
	GroundLoss float64

	AirCond     float64
	AirConv     float64
	AirRad      float64
	AirVent     float64
	AirInternal float64
	Latent      float64
	AirNet      float64

	TopIncrement float64 // C, after clamping
	AirIncrement float64

	Buffer   buffer.Exchange
	Moisture physics.MoistureTerms
}
