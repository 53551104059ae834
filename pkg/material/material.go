// Package material provides the closed set of ray-interaction rules a
// surface can apply at an intercept.
package material

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Material maps an incident direction and a surface normal to an outgoing
// direction. Absorption is an outcome, not an exception: alive is false when
// the ray terminates at the surface.
type Material interface {
	Interact(dir, normal mgl64.Vec3) (out mgl64.Vec3, alive bool)
}

// Mirror reflects specularly about the surface normal.
type Mirror struct{}

// Interact returns dir - 2(dir·n)n. Wavelength and direction magnitude are
// untouched, so a unit incident direction stays unit length.
func (Mirror) Interact(dir, normal mgl64.Vec3) (mgl64.Vec3, bool) {
	return Reflect(dir, normal), true
}

// Absorber terminates every ray that reaches it, modeling an obscuration or
// a baffle.
type Absorber struct{}

func (Absorber) Interact(dir, normal mgl64.Vec3) (mgl64.Vec3, bool) {
	return mgl64.Vec3{}, false
}

// Vacuum passes rays through unchanged. Sensors and virtual reference planes
// use it so the recorded ray keeps a valid direction.
type Vacuum struct{}

func (Vacuum) Interact(dir, normal mgl64.Vec3) (mgl64.Vec3, bool) {
	return dir, true
}

// Refractive bends rays by Snell's law across an index step from IndexIn to
// IndexOut. Total internal reflection falls back to a specular reflection.
type Refractive struct {
	IndexIn  float64
	IndexOut float64
}

func (m Refractive) Interact(dir, normal mgl64.Vec3) (mgl64.Vec3, bool) {
	eta := m.IndexIn / m.IndexOut
	n := normal
	cosI := -dir.Dot(n)
	if cosI < 0 {
		// Ray approaches from the other side of the normal.
		n = n.Mul(-1)
		cosI = -cosI
	}
	sin2T := eta * eta * (1 - cosI*cosI)
	if sin2T > 1 {
		return Reflect(dir, normal), true
	}
	cosT := math.Sqrt(1 - sin2T)
	return dir.Mul(eta).Add(n.Mul(eta*cosI - cosT)).Normalize(), true
}

// Reflect returns v - 2(v·n)n, the specular reflection of v about n.
func Reflect(v, n mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}
