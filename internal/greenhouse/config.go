// Package greenhouse holds the structural and material description of a
// passive solar greenhouse and the profile format used to persist it.
package greenhouse

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownParameter = errors.New("unknown greenhouse parameter")
	ErrInvalidConfig    = errors.New("invalid greenhouse configuration")
)

const (
	// BottleMass is the water mass of one hanging bottle, kg.
	BottleMass = 3.0
	// BottleArea is the surface area of one hanging bottle, m2.
	BottleArea = 0.15
)

// Material describes a wall or roof lamina.
type Material struct {
	Conductivity      float64 // W/m K
	Thickness         float64 // m
	Density           float64 // kg/m3
	SpecificHeat      float64 // J/kg K
	Emissivity        float64
	SolarAbsorptivity float64
}

// Soil describes the single effective ground node.
type Soil struct {
	Depth        float64 // m
	Density      float64 // kg/m3
	SpecificHeat float64 // J/kg K
	Conductivity float64 // W/m K
}

// Buffer sizes the hanging water bottle store.
type Buffer struct {
	Count        float64
	OpenFraction float64
}

// Config is the full parameter set of one greenhouse. A Config is a plain
// value: copies are independent, so parallel trials each take their own.
// Geometry is only reachable through SetGeometry so the derived areas and
// volumes are never stale.
type Config struct {
	geometry Geometry
	derived  Derived

	Wall    Material
	Roof    Material
	Soil    Soil
	Bottles Buffer

	ConvectionCoef    float64 // interior air to roof/wall, W/m2 K
	VentRate          float64
	TopVentRate       float64
	TranspirationRate float64 // kg/s at RH=0

	// SmoothDensity averages a humid-air density jump larger than
	// MaxDensityJump with the previous step's value.
	SmoothDensity bool
}

// MaxDensityJump is the per-step density change, kg/m3, beyond which
// smoothing kicks in.
const MaxDensityJump = 0.8

// NewConfig returns a Config with the given geometry and zero materials.
func NewConfig(g Geometry) *Config {
	c := &Config{}
	c.SetGeometry(g)
	return c
}

// SetGeometry replaces the geometry and recomputes every derived quantity.
func (c *Config) SetGeometry(g Geometry) {
	c.geometry = g
	c.derived = derive(g)
}

func (c *Config) Geometry() Geometry { return c.geometry }
func (c *Config) Derived() Derived   { return c.derived }

func (c *Config) WallArea() float64   { return c.derived.WallArea }
func (c *Config) GroundArea() float64 { return c.derived.GroundArea }
func (c *Config) Volume() float64     { return c.derived.Volume }
func (c *Config) RoofArea() float64   { return c.derived.RoofArea }
func (c *Config) RoofVolume() float64 { return c.derived.RoofVolume }

// BufferMass is the total water held by the bottles, kg.
func (c *Config) BufferMass() float64 { return BottleMass * c.Bottles.Count }

// BufferArea is the total bottle surface, m2.
func (c *Config) BufferArea() float64 { return BottleArea * c.Bottles.Count }

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate reports configurations the step cannot integrate: a node with
// no volume, no soil or a massless wall material would give a zero thermal
// mass. Wall and roof thickness may be zero; that is a legitimate trial
// which simply diverges.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	nonNegative := func(name string, v float64) {
		if !(v >= 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", name, v))
		}
	}
	fraction := func(name string, v float64) {
		if !(v >= 0 && v <= 1) {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", name, v))
		}
	}

	g := c.geometry
	positive(KeyLength, g.Length)
	positive(KeyWidth, g.Width)
	positive(KeyHeight, g.Height)
	nonNegative(KeyRoofHeight, g.RoofHeight)

	positive(KeySoilDepth, c.Soil.Depth)
	positive(KeySoilDensity, c.Soil.Density)
	positive(KeySoilCp, c.Soil.SpecificHeat)
	nonNegative(KeySoilConduct, c.Soil.Conductivity)

	for _, m := range []struct {
		prefix string
		mat    Material
	}{{"wall", c.Wall}, {"roof", c.Roof}} {
		nonNegative(m.prefix+"_conductivity", m.mat.Conductivity)
		nonNegative(m.prefix+"_thickness", m.mat.Thickness)
		fraction(m.prefix+"_emissivity", m.mat.Emissivity)
		nonNegative(m.prefix+"_solar_absorp_coef", m.mat.SolarAbsorptivity)
	}

	positive("wall_rho", c.Wall.Density)
	positive("wall_cp", c.Wall.SpecificHeat)
	nonNegative("roof_rho", c.Roof.Density)
	nonNegative("roof_cp", c.Roof.SpecificHeat)

	nonNegative(KeyConvection, c.ConvectionCoef)
	nonNegative(KeyVentRate, c.VentRate)
	nonNegative(KeyTopVentRate, c.TopVentRate)
	nonNegative(KeyTranspiration, c.TranspirationRate)
	nonNegative(KeyBottles, c.Bottles.Count)
	fraction(KeyBottlesOpen, c.Bottles.OpenFraction)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
