package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConductionAntisymmetric(t *testing.T) {
	cases := []struct {
		tIn, tOut, k, thickness, area float64
	}{
		{20, 5, 0.8, 0.3, 66},
		{-10, 35, 0.19, 0.006, 50},
		{12.5, 12.5, 1, 0.001, 3},
		{40, -5, 2.1, 1.2, 0.5},
	}
	for _, c := range cases {
		fwd := Conduction(c.tIn, c.tOut, c.k, c.thickness, c.area)
		rev := Conduction(c.tOut, c.tIn, c.k, c.thickness, c.area)
		assert.InDelta(t, 0, fwd+rev, 1e-9)
	}
	assert.InDelta(t, 0.8*66*15/0.3, Conduction(20, 5, 0.8, 0.3, 66), 1e-9)
}

func TestRadiationLossEqualTemperatures(t *testing.T) {
	for _, temp := range []float64{-30, -10, 0, 15.5, 40, 80} {
		assert.Equal(t, 0.0, RadiationLoss(temp, temp, 0.9, 42))
	}
	assert.Greater(t, RadiationLoss(30, 10, 0.9, 1), 0.0)
	assert.Less(t, RadiationLoss(10, 30, 0.9, 1), 0.0)
}

func TestSolarGainFloored(t *testing.T) {
	assert.Equal(t, 0.0, SolarGain(-100, 0.5, 10))
	assert.InDelta(t, 400.0, SolarGain(800, 0.5, 1), 1e-12)
}

func TestLatentHeatFallsWithHumidity(t *testing.T) {
	dry := LatentHeat(0.001, 0, 20)
	humid := LatentHeat(0.001, 80, 20)
	saturated := LatentHeat(0.001, 100, 20)

	assert.Greater(t, dry, humid)
	assert.Equal(t, 0.0, saturated)
	assert.InDelta(t, 0.001*(2.45e6-2370*20), dry, 1e-9)
}

func TestVentilationAndConvection(t *testing.T) {
	assert.InDelta(t, 1.2*100*0.5*1005*4, VentilationLoss(24, 20, 1005, 1.2, 0.5, 100), 1e-9)
	assert.InDelta(t, -50, Convection(10, 20, 5, 1), 1e-12)
}
