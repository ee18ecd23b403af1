// Package lighting provides the directional light the viewer shades with.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Sun is a directional light placed by longitude and latitude in degrees.
// Longitude is rotation around the Y axis, latitude is elevation from the
// horizon.
type Sun struct {
	Longitude float32 `yaml:"longitude"`
	Latitude  float32 `yaml:"latitude"`
}

// DefaultSun lights the scene from above and in front.
func DefaultSun() Sun {
	return Sun{Longitude: 35, Latitude: 55}
}

// Position returns the unit vector pointing towards the sun.
func (s Sun) Position() mgl32.Vec3 {
	lon := float64(mgl32.DegToRad(s.Longitude))
	lat := float64(mgl32.DegToRad(s.Latitude))

	// Spherical to Cartesian with Y up
	return mgl32.Vec3{
		float32(math.Cos(lat) * math.Sin(lon)),
		float32(math.Sin(lat)),
		float32(math.Cos(lat) * math.Cos(lon)),
	}
}

// Direction returns the unit vector the light travels along.
func (s Sun) Direction() mgl32.Vec3 {
	return s.Position().Mul(-1)
}
