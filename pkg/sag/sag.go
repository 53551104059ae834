// Package sag provides the closed set of surface height profiles the engine
// traces against. Each profile is a pure height function z(x, y) with an
// analytic normal and a closed-form ray intercept.
//
// Sign convention: the normal always carries a negative z component, and a
// collimated bundle traveling +z off a parabolic mirror with focal parameter
// f converges at axial coordinate z = f in the vertex frame. A negative f
// therefore flips concavity and places the focus on the incoming side.
package sag

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// tMin rejects intercepts at or behind the ray origin. Surfaces in a
// sequential system are well separated, so this only guards against a ray
// re-hitting the surface it just left.
const tMin = 1e-9

// Profile is a surface height function with an analytic normal and a
// closed-form ray intercept in the surface's local frame.
type Profile interface {
	// Height returns the sag z at lateral position (x, y).
	Height(x, y float64) float64
	// Normal returns the unit surface normal at (x, y).
	Normal(x, y float64) mgl64.Vec3
	// Intercept solves for the smallest positive ray parameter t where
	// origin + t*dir lies on the profile. ok is false when there is no
	// forward intersection or the solve is degenerate or non-finite.
	Intercept(origin, dir mgl64.Vec3) (t float64, ok bool)
}

// Flat is the trivial profile z = 0, used for sensors, fold mirrors and
// field stops.
type Flat struct{}

func (Flat) Height(x, y float64) float64 { return 0 }

func (Flat) Normal(x, y float64) mgl64.Vec3 { return mgl64.Vec3{0, 0, -1} }

func (Flat) Intercept(origin, dir mgl64.Vec3) (float64, bool) {
	if dir.Z() == 0 {
		return 0, false
	}
	t := -origin.Z() / dir.Z()
	if t <= tMin || math.IsInf(t, 0) || math.IsNaN(t) {
		return 0, false
	}
	return t, true
}

// Parabolic is the profile z = r² / (4f) for focal parameter f.
type Parabolic struct {
	Focal float64
}

// NewParabolic returns a parabolic profile with the given focal parameter.
func NewParabolic(focal float64) Parabolic {
	return Parabolic{Focal: focal}
}

func (p Parabolic) Height(x, y float64) float64 {
	return (x*x + y*y) / (4 * p.Focal)
}

func (p Parabolic) Normal(x, y float64) mgl64.Vec3 {
	n := mgl64.Vec3{x / (2 * p.Focal), y / (2 * p.Focal), -1}
	return n.Normalize()
}

func (p Parabolic) Intercept(origin, dir mgl64.Vec3) (float64, bool) {
	// Implicit form x² + y² - 4fz = 0 reduces to a quadratic in t.
	a := dir.X()*dir.X() + dir.Y()*dir.Y()
	b := 2*(origin.X()*dir.X()+origin.Y()*dir.Y()) - 4*p.Focal*dir.Z()
	c := origin.X()*origin.X() + origin.Y()*origin.Y() - 4*p.Focal*origin.Z()
	roots, n := solveQuadratic(a, b, c)
	for i := 0; i < n; i++ {
		if acceptRoot(roots[i]) {
			return roots[i], true
		}
	}
	return 0, false
}

// Spherical is the profile z = cr² / (1 + √(1 - c²r²)) with curvature
// c = 1/Radius. The lateral extent is limited to |r| ≤ |Radius|; Height is
// NaN outside it.
type Spherical struct {
	Radius float64
}

// NewSpherical returns a spherical profile with the given radius of
// curvature.
func NewSpherical(radius float64) Spherical {
	return Spherical{Radius: radius}
}

func (s Spherical) Height(x, y float64) float64 {
	return conicHeight(1/s.Radius, 0, x, y)
}

func (s Spherical) Normal(x, y float64) mgl64.Vec3 {
	return conicNormal(1/s.Radius, 0, x, y)
}

func (s Spherical) Intercept(origin, dir mgl64.Vec3) (float64, bool) {
	return conicIntercept(s.Radius, 0, origin, dir)
}

// Conic is the profile z = cr² / (1 + √(1 - (1+k)c²r²)) for curvature
// c = 1/Radius and conic constant k. k = 0 is a sphere, k = -1 a paraboloid,
// k < -1 a hyperboloid.
type Conic struct {
	Radius float64
	Conic  float64
}

// NewConic returns a conic profile with the given radius of curvature and
// conic constant.
func NewConic(radius, conic float64) Conic {
	return Conic{Radius: radius, Conic: conic}
}

func (c Conic) Height(x, y float64) float64 {
	return conicHeight(1/c.Radius, c.Conic, x, y)
}

func (c Conic) Normal(x, y float64) mgl64.Vec3 {
	return conicNormal(1/c.Radius, c.Conic, x, y)
}

func (c Conic) Intercept(origin, dir mgl64.Vec3) (float64, bool) {
	return conicIntercept(c.Radius, c.Conic, origin, dir)
}

func conicHeight(curv, k, x, y float64) float64 {
	r2 := x*x + y*y
	return curv * r2 / (1 + math.Sqrt(1-(1+k)*curv*curv*r2))
}

// conicNormal is the normalized gradient (∂z/∂x, ∂z/∂y, -1).
func conicNormal(curv, k, x, y float64) mgl64.Vec3 {
	g := math.Sqrt(1 - (1+k)*curv*curv*(x*x+y*y))
	n := mgl64.Vec3{curv * x / g, curv * y / g, -1}
	return n.Normalize()
}

// conicIntercept intersects a ray with the implicit quadric
// x² + y² - 2Rz + (1+k)z² = 0 and selects the smallest forward root on the
// sag branch, which satisfies (1+k)·z/R ≤ 1.
func conicIntercept(radius, k float64, origin, dir mgl64.Vec3) (float64, bool) {
	q := 1 + k
	a := dir.X()*dir.X() + dir.Y()*dir.Y() + q*dir.Z()*dir.Z()
	b := 2*(origin.X()*dir.X()+origin.Y()*dir.Y()) - 2*radius*dir.Z() + 2*q*origin.Z()*dir.Z()
	c := origin.X()*origin.X() + origin.Y()*origin.Y() - 2*radius*origin.Z() + q*origin.Z()*origin.Z()
	roots, n := solveQuadratic(a, b, c)
	for i := 0; i < n; i++ {
		t := roots[i]
		if !acceptRoot(t) {
			continue
		}
		z := origin.Z() + t*dir.Z()
		if q*z/radius <= 1+1e-12 {
			return t, true
		}
	}
	return 0, false
}

// acceptRoot rejects roots behind the origin and non-finite solve results,
// collapsing degenerate geometry and numeric overflow into a plain miss.
func acceptRoot(t float64) bool {
	return t > tMin && !math.IsInf(t, 0) && !math.IsNaN(t)
}

// solveQuadratic returns the real roots of at² + bt + c = 0 in ascending
// order. A vanishing leading coefficient degrades to the linear solve.
func solveQuadratic(a, b, c float64) ([2]float64, int) {
	if math.Abs(a) < 1e-300 {
		if b == 0 {
			return [2]float64{}, 0
		}
		return [2]float64{-c / b}, 1
	}
	disc := b*b - 4*a*c
	if disc < 0 || math.IsNaN(disc) {
		return [2]float64{}, 0
	}
	sqrtD := math.Sqrt(disc)
	t0 := (-b - sqrtD) / (2 * a)
	t1 := (-b + sqrtD) / (2 * a)
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return [2]float64{t0, t1}, 2
}
