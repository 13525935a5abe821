package greenhouse

import (
	"fmt"
	"sort"
)

// Profile parameter names.
const (
	KeyLength         = "gh_length"
	KeyWidth          = "gh_width"
	KeyHeight         = "gh_height"
	KeyRoofHeight     = "gh_roof_height"
	KeyConvection     = "h_conv"
	KeyVentRate       = "vent_rate"
	KeyTopVentRate    = "top_vent_rate"
	KeyTranspiration  = "plant_transpiration_rate"
	KeyBottles        = "nr_water_bottles"
	KeyBottlesOpen    = "bottles_percent_open"
	KeySoilDepth      = "soil_depth"
	KeySoilConduct    = "soil_conduct"
	KeySoilCp         = "soil_cp"
	KeySoilDensity    = "soil_density"
	KeySmoothDensity  = "smooth_density"
	materialAbsorp    = "_solar_absorp_coef"
	materialConduct   = "_conductivity"
	materialThickness = "_thickness"
	materialEmiss     = "_emissivity"
	materialCp        = "_cp"
	materialRho       = "_rho"
)

type field struct {
	get func(*Config) float64
	set func(*Config, float64)
}

func scalar(p func(*Config) *float64) field {
	return field{
		get: func(c *Config) float64 { return *p(c) },
		set: func(c *Config, v float64) { *p(c) = v },
	}
}

func geometryField(p func(*Geometry) *float64) field {
	return field{
		get: func(c *Config) float64 { g := c.geometry; return *p(&g) },
		set: func(c *Config, v float64) {
			g := c.geometry
			*p(&g) = v
			c.SetGeometry(g)
		},
	}
}

func materialFields(prefix string, m func(*Config) *Material) map[string]field {
	return map[string]field{
		prefix + materialAbsorp:    scalar(func(c *Config) *float64 { return &m(c).SolarAbsorptivity }),
		prefix + materialConduct:   scalar(func(c *Config) *float64 { return &m(c).Conductivity }),
		prefix + materialThickness: scalar(func(c *Config) *float64 { return &m(c).Thickness }),
		prefix + materialEmiss:     scalar(func(c *Config) *float64 { return &m(c).Emissivity }),
		prefix + materialCp:        scalar(func(c *Config) *float64 { return &m(c).SpecificHeat }),
		prefix + materialRho:       scalar(func(c *Config) *float64 { return &m(c).Density }),
	}
}

var fields = func() map[string]field {
	f := map[string]field{
		KeyLength:        geometryField(func(g *Geometry) *float64 { return &g.Length }),
		KeyWidth:         geometryField(func(g *Geometry) *float64 { return &g.Width }),
		KeyHeight:        geometryField(func(g *Geometry) *float64 { return &g.Height }),
		KeyRoofHeight:    geometryField(func(g *Geometry) *float64 { return &g.RoofHeight }),
		KeyConvection:    scalar(func(c *Config) *float64 { return &c.ConvectionCoef }),
		KeyVentRate:      scalar(func(c *Config) *float64 { return &c.VentRate }),
		KeyTopVentRate:   scalar(func(c *Config) *float64 { return &c.TopVentRate }),
		KeyTranspiration: scalar(func(c *Config) *float64 { return &c.TranspirationRate }),
		KeyBottles:       scalar(func(c *Config) *float64 { return &c.Bottles.Count }),
		KeyBottlesOpen:   scalar(func(c *Config) *float64 { return &c.Bottles.OpenFraction }),
		KeySoilDepth:     scalar(func(c *Config) *float64 { return &c.Soil.Depth }),
		KeySoilConduct:   scalar(func(c *Config) *float64 { return &c.Soil.Conductivity }),
		KeySoilCp:        scalar(func(c *Config) *float64 { return &c.Soil.SpecificHeat }),
		KeySoilDensity:   scalar(func(c *Config) *float64 { return &c.Soil.Density }),
		KeySmoothDensity: {
			get: func(c *Config) float64 {
				if c.SmoothDensity {
					return 1
				}
				return 0
			},
			set: func(c *Config, v float64) { c.SmoothDensity = v != 0 },
		},
	}
	for k, v := range materialFields("wall", func(c *Config) *Material { return &c.Wall }) {
		f[k] = v
	}
	for k, v := range materialFields("roof", func(c *Config) *Material { return &c.Roof }) {
		f[k] = v
	}
	return f
}()

// Keys lists every recognised parameter name in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a named parameter.
func (c *Config) Get(key string) (float64, error) {
	f, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
	return f.get(c), nil
}

// ApplyOverrides sets the named parameters. Every key is checked before
// any is applied, so an unknown key leaves the Config untouched.
func (c *Config) ApplyOverrides(overrides map[string]float64) error {
	for k := range overrides {
		if _, ok := fields[k]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownParameter, k)
		}
	}
	for k, v := range overrides {
		fields[k].set(c, v)
	}
	return nil
}

// Params returns every parameter keyed by its profile name.
func (c *Config) Params() map[string]float64 {
	out := make(map[string]float64, len(fields))
	for k, f := range fields {
		out[k] = f.get(c)
	}
	return out
}
