package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray represents a single geometric ray in the global frame.
// Position and direction are in one consistent length unit; the engine is
// unit-agnostic, so millimeters and nanometers must be resolved to plain
// scalars before rays are constructed.
type Ray struct {
	Position   mgl64.Vec3
	Direction  mgl64.Vec3
	Wavelength float64
	Alive      bool
}

// NewRay creates a live ray with a normalized direction.
func NewRay(position, direction mgl64.Vec3, wavelength float64) Ray {
	return Ray{
		Position:   position,
		Direction:  direction.Normalize(),
		Wavelength: wavelength,
		Alive:      true,
	}
}

// DeadRay returns the sentinel state recorded for a blocked or absorbed ray.
// The position is NaN rather than zero so downstream array-oriented analysis
// can distinguish "no ray here" from a ray at the origin, and the rectangular
// grid shape is preserved.
func DeadRay(wavelength float64) Ray {
	nan := math.NaN()
	return Ray{
		Position:   mgl64.Vec3{nan, nan, nan},
		Direction:  mgl64.Vec3{},
		Wavelength: wavelength,
		Alive:      false,
	}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Position.Add(r.Direction.Mul(t))
}

// Finite reports whether the ray's position and direction contain no NaN or
// infinite components.
func (r Ray) Finite() bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(r.Position[i]) || math.IsInf(r.Position[i], 0) {
			return false
		}
		if math.IsNaN(r.Direction[i]) || math.IsInf(r.Direction[i], 0) {
			return false
		}
	}
	return true
}
