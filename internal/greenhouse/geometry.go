package greenhouse

import "math"

// Geometry is the outer shape of the greenhouse, metres.
type Geometry struct {
	Length     float64
	Width      float64
	Height     float64 // wall height
	RoofHeight float64 // arch rise; zero means a flat roof
}

// Derived holds the areas (m2) and volumes (m3) computed from a Geometry.
type Derived struct {
	WallArea   float64
	GroundArea float64
	Volume     float64
	RoofArea   float64
	RoofVolume float64
}

func derive(g Geometry) Derived {
	d := Derived{
		WallArea:   2 * (g.Height*g.Length + g.Height*g.Width),
		GroundArea: g.Length * g.Width,
		Volume:     g.Length * g.Width * g.Height,
	}
	if g.RoofHeight > 0 {
		d.RoofArea = archArea(g.RoofHeight, g.Length, g.Width)
		d.RoofVolume = archVolume(g.RoofHeight, g.Length, g.Width)
	} else {
		d.RoofArea = g.Length * g.Width
		d.RoofVolume = d.Volume / 10
	}
	return d
}

// arch returns the circular segment spanning the short side of the house,
// its radius and its extrusion length.
func arch(rise, length, width float64) (segment, radius, theta, extrusion float64) {
	span := math.Min(length, width)
	extrusion = math.Max(length, width)

	radius = span*span/(8*rise) + rise/2
	theta = 2 * math.Asin(span/(2*radius))
	segment = 0.5 * radius * radius * (theta - math.Sin(theta))
	return segment, radius, theta, extrusion
}

func archVolume(rise, length, width float64) float64 {
	segment, _, _, extrusion := arch(rise, length, width)
	return segment * extrusion
}

// archArea is the curved roof plus the two gable segments.
func archArea(rise, length, width float64) float64 {
	segment, radius, theta, extrusion := arch(rise, length, width)
	return theta*radius*extrusion + 2*segment
}
