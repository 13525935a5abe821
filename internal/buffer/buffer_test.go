package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepAbsentStore(t *testing.T) {
	tests := []struct {
		name  string
		store Store
	}{
		{"no mass", Store{Mass: 0, Area: 3}},
		{"no area", Store{Mass: 60, Area: 0}},
		{"negative mass", Store{Mass: -1, Area: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := tt.store.Step(22, 30, 60)
			assert.Equal(t, 0.0, ex.Gain)
			assert.Equal(t, 0.0, ex.Released())
			assert.Equal(t, 22.0, ex.Temp)
		})
	}
}

func TestStepEquilibrium(t *testing.T) {
	s := Store{Mass: 60, Area: 3}
	ex := s.Step(18, 18, 50)

	assert.InDelta(t, 0, ex.Gain, 1e-9)
	assert.InDelta(t, 18, ex.Temp, 1e-9)
}

func TestStepMovesTowardAir(t *testing.T) {
	s := Store{Mass: 60, Area: 3}

	warm := s.Step(10, 25, 50)
	assert.Greater(t, warm.Gain, 0.0)
	assert.Less(t, warm.Released(), 0.0)
	assert.Greater(t, warm.Temp, 10.0)
	assert.Less(t, warm.Temp, 25.0)

	cool := s.Step(25, 10, 50)
	assert.Less(t, cool.Gain, 0.0)
	assert.Greater(t, cool.Released(), 0.0)
	assert.Less(t, cool.Temp, 25.0)
	assert.Greater(t, cool.Temp, 10.0)
}

func TestOpenBottlesEvaporate(t *testing.T) {
	closed := Store{Mass: 60, Area: 3}.Step(20, 20, 40)
	open := Store{Mass: 60, Area: 3, OpenFraction: 0.5}.Step(20, 20, 40)

	assert.Equal(t, 0.0, closed.Vapour)
	assert.Greater(t, open.Vapour, 0.0)
	assert.Greater(t, open.Latent, 0.0)
	assert.Less(t, open.Temp, closed.Temp)
}
