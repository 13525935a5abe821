package crop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{
		Name:           "test",
		ThermalTimeSum: 100,
		HarvestIndex:   0.5,
		I50A:           50,
		BaseTemp:       10,
		OptimalTemp:    25,
		RUE:            1.5,
		HeatTemp:       32,
		ExtremeTemp:    42,
		SCO2:           0.0008,
	}
}

func TestFTemp(t *testing.T) {
	tests := []struct {
		temp float64
		want float64
	}{
		{5, 0},
		{10, 0},
		{13, 0.2},
		{17.5, 0.5},
		{25, 1},
		{35, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, FTemp(tt.temp, 10, 25), 1e-12, "T=%v", tt.temp)
	}
}

func TestFHeat(t *testing.T) {
	assert.Equal(t, 1.0, FHeat(20, 32, 42))
	assert.Equal(t, 1.0, FHeat(32, 32, 42))
	assert.InDelta(t, 0.5, FHeat(37, 32, 42), 1e-12)
	assert.InDelta(t, 0.0, FHeat(42, 32, 42), 1e-12)
	assert.Equal(t, 0.0, FHeat(50, 32, 42))

	prev := FHeat(0, 32, 42)
	for tMax := 0.0; tMax <= 60; tMax += 0.25 {
		v := FHeat(tMax, 32, 42)
		assert.LessOrEqual(t, v, prev, "non-increasing at %v", tMax)
		prev = v
	}
}

func TestFCO2(t *testing.T) {
	assert.InDelta(t, 1.0, FCO2(350, 0.001), 1e-12)
	assert.InDelta(t, 1.05, FCO2(400, 0.001), 1e-12)
	assert.InDelta(t, 1.35, FCO2(700, 0.001), 1e-12)
	assert.InDelta(t, 1.35, FCO2(200, 0.001), 1e-12)
}

func TestFSolar(t *testing.T) {
	assert.InDelta(t, 0.475, FSolar(50, 50), 1e-12)
	assert.Less(t, FSolar(0, 50), FSolar(100, 50))
	assert.Less(t, FSolar(1e6, 50), 0.95+1e-12)
}

func TestGrow(t *testing.T) {
	p := testParams()

	biomass, tt := Grow(1, 40, 10, 20, 25, p, AmbientCO2)
	assert.InDelta(t, 50, tt, 1e-12)
	want := 1 + 10*FSolar(50, p.I50A)*p.RUE*FCO2(AmbientCO2, p.SCO2)*FTemp(20, 10, 25)
	assert.InDelta(t, want, biomass, 1e-12)

	// below base temperature nothing accumulates
	biomass, tt = Grow(1, 40, 10, 5, 8, p, AmbientCO2)
	assert.Equal(t, 40.0, tt)
	assert.Equal(t, 1.0, biomass)

	// extreme heat stops growth but not development
	biomass, tt = Grow(1, 40, 10, 20, 45, p, AmbientCO2)
	assert.Equal(t, 50.0, tt)
	assert.Equal(t, 1.0, biomass)
}

func TestStateHarvestResets(t *testing.T) {
	s := NewState(testParams())

	harvested := false
	for day := 0; day < 9; day++ {
		harvested = s.Day(10, 20, 25)
		require.False(t, harvested, "day %d", day)
	}
	before := s.Biomass
	assert.InDelta(t, 90, s.ThermalTime, 1e-9)

	// a single day overshooting maturity still counts one cycle
	harvested = s.Day(10, 80, 25)
	assert.True(t, harvested)
	assert.Equal(t, 1.0, s.Cycles)
	assert.Equal(t, 0.0, s.ThermalTime)
	assert.Equal(t, RestartBiomass, s.Biomass)
	assert.Greater(t, s.Harvested, before)
}

func TestStateFinalize(t *testing.T) {
	s := NewState(testParams())
	for day := 0; day < 15; day++ {
		s.Day(10, 20, 25)
	}
	require.Equal(t, 1.0, s.Cycles)
	inProgress := s.Biomass
	harvested := s.Harvested

	cycles, total := s.Finalize()
	assert.InDelta(t, 1.5, cycles, 1e-9)
	assert.InDelta(t, harvested+inProgress, total, 1e-12)
	assert.InDelta(t, total*0.5, s.Yield(), 1e-12)
}

func TestOpenFieldRestartFromZero(t *testing.T) {
	s := NewState(testParams())
	s.Restart = 0
	for day := 0; day < 10; day++ {
		s.Day(10, 20, 25)
	}
	assert.Equal(t, 1.0, s.Cycles)
	assert.Equal(t, 0.0, s.Biomass)
}
