package greenhouse

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedFlatRoof(t *testing.T) {
	c := NewConfig(Geometry{Length: 10, Width: 5, Height: 2.2})
	d := c.Derived()

	assert.InDelta(t, 66.0, d.WallArea, 1e-9)
	assert.InDelta(t, 50.0, d.GroundArea, 1e-9)
	assert.InDelta(t, 110.0, d.Volume, 1e-9)
	assert.InDelta(t, 50.0, d.RoofArea, 1e-9)
	assert.InDelta(t, 11.0, d.RoofVolume, 1e-9)
}

func TestDerivedSemicircularArch(t *testing.T) {
	// rise equal to half the span gives a half cylinder of radius 2
	c := NewConfig(Geometry{Length: 10, Width: 4, Height: 2, RoofHeight: 2})

	assert.InDelta(t, 2*math.Pi*10, c.RoofVolume(), 1e-9)
	assert.InDelta(t, 24*math.Pi, c.RoofArea(), 1e-9)
}

func TestArchIgnoresOrientation(t *testing.T) {
	a := NewConfig(Geometry{Length: 12, Width: 6, Height: 2, RoofHeight: 1.5})
	b := NewConfig(Geometry{Length: 6, Width: 12, Height: 2, RoofHeight: 1.5})

	assert.InDelta(t, a.RoofVolume(), b.RoofVolume(), 1e-9)
	assert.InDelta(t, a.RoofArea(), b.RoofArea(), 1e-9)
}

func TestGeometryOverrideRecomputesDerived(t *testing.T) {
	c := Default()
	require.NoError(t, c.ApplyOverrides(map[string]float64{KeyLength: 20}))

	assert.Equal(t, 20.0, c.Geometry().Length)
	assert.InDelta(t, 20*5*2.2, c.Volume(), 1e-9)
	assert.InDelta(t, 100.0, c.GroundArea(), 1e-9)
	assert.InDelta(t, 2*(2.2*20+2.2*5), c.WallArea(), 1e-9)
}

func TestApplyOverridesUnknownKey(t *testing.T) {
	c := Default()
	before := c.Params()

	err := c.ApplyOverrides(map[string]float64{
		KeyVentRate: 0.5,
		"warp_core": 1,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownParameter))
	assert.Equal(t, before, c.Params(), "config must be untouched")
}

func TestGetAndParams(t *testing.T) {
	c := Default()

	v, err := c.Get(KeyBottles)
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)

	_, err = c.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownParameter)

	params := c.Params()
	assert.Len(t, params, len(Keys()))
	assert.Equal(t, 0.3, params["wall_thickness"])
	assert.Equal(t, 0.19, params["roof_conductivity"])
}

func TestCloneIsIndependent(t *testing.T) {
	a := Default()
	b := a.Clone()
	require.NoError(t, b.ApplyOverrides(map[string]float64{KeyWidth: 8, "wall_cp": 1}))

	assert.Equal(t, 5.0, a.Geometry().Width)
	assert.Equal(t, 900.0, a.Wall.SpecificHeat)
	assert.InDelta(t, 110.0, a.Volume(), 1e-9)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  map[string]float64
		wantErr bool
	}{
		{"default", nil, false},
		{"zero wall thickness allowed", map[string]float64{"wall_thickness": 0}, false},
		{"zero volume", map[string]float64{KeyHeight: 0}, true},
		{"zero soil depth", map[string]float64{KeySoilDepth: 0}, true},
		{"negative vent", map[string]float64{KeyVentRate: -1}, true},
		{"open fraction above one", map[string]float64{KeyBottlesOpen: 1.5}, true},
		{"emissivity above one", map[string]float64{"roof_emissivity": 2}, true},
		{"nan length", map[string]float64{KeyLength: math.NaN()}, true},
		{"massless wall", map[string]float64{"wall_rho": 0}, true},
		{"wall without heat capacity", map[string]float64{"wall_cp": 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			require.NoError(t, c.ApplyOverrides(tt.mutate))
			err := c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromParamsMissingGeometry(t *testing.T) {
	_, err := FromParams(map[string]float64{KeySoilDepth: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestProfileRoundTrip(t *testing.T) {
	c := Default()
	require.NoError(t, c.ApplyOverrides(map[string]float64{KeyRoofHeight: 1.2, KeySmoothDensity: 1}))

	path := filepath.Join(t.TempDir(), "gh.json")
	require.NoError(t, SaveProfile(path, c))

	loaded, err := LoadProfile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, c.Params(), loaded.Params())
	assert.True(t, loaded.SmoothDensity)
	assert.InDelta(t, c.RoofVolume(), loaded.RoofVolume(), 1e-12)
}

func TestReadProfilePartialKeepsDefaults(t *testing.T) {
	c, err := ReadProfile(bytes.NewBufferString(`{"vent_rate": 0.0003}`))
	require.NoError(t, err)

	want := Default().Params()
	want[KeyVentRate] = 0.0003
	assert.Equal(t, want, c.Params())
}

func TestLoadProfileOverlaysBase(t *testing.T) {
	base := Default()
	require.NoError(t, base.ApplyOverrides(map[string]float64{KeyConvection: 7, "wall_conductivity": 0.85}))
	before := base.Params()

	path := filepath.Join(t.TempDir(), "geometry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"gh_length": 6, "gh_width": 4, "gh_height": 2, "soil_depth": 0.3}`), 0o644))

	c, err := LoadProfile(path, base)
	require.NoError(t, err)
	assert.Equal(t, 6.0, c.Geometry().Length)
	assert.Equal(t, 0.3, c.Soil.Depth)
	assert.Equal(t, 7.0, c.ConvectionCoef)
	assert.Equal(t, 0.85, c.Wall.Conductivity)
	assert.Equal(t, base.Wall.Density, c.Wall.Density)
	assert.InDelta(t, 48.0, c.Volume(), 1e-9)

	assert.Equal(t, before, base.Params())
}

func TestReadProfileInvalidResult(t *testing.T) {
	_, err := ReadProfile(bytes.NewBufferString(`{"wall_rho": 0}`))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestReadProfileUnknownKey(t *testing.T) {
	_, err := ReadProfile(bytes.NewBufferString(`{"gh_length": 1, "thermal_massive": 3}`))
	assert.ErrorIs(t, err, ErrUnknownParameter)
}
