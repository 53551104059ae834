// Package aperture provides the lateral boundaries within which a surface is
// optically active.
package aperture

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Aperture is a deterministic, side-effect-free boundary test plus a bounding
// extent used for grid scaling and plotting.
type Aperture interface {
	// Contains reports whether the lateral point (x, y) is inside the
	// aperture.
	Contains(x, y float64) bool
	// Extent returns the bounding radius of the aperture.
	Extent() float64
	// Outline returns n boundary samples, counterclockwise, for plotting
	// consumers.
	Outline(n int) []mgl64.Vec2
}

// Circular is a circular aperture centered on the surface vertex.
type Circular struct {
	Radius float64
}

func (c Circular) Contains(x, y float64) bool {
	return x*x+y*y <= c.Radius*c.Radius
}

func (c Circular) Extent() float64 { return c.Radius }

func (c Circular) Outline(n int) []mgl64.Vec2 {
	return circle(c.Radius, n)
}

// Rectangular is an axis-aligned rectangular aperture centered on the
// surface vertex.
type Rectangular struct {
	HalfWidth  float64
	HalfHeight float64
}

func (r Rectangular) Contains(x, y float64) bool {
	return math.Abs(x) <= r.HalfWidth && math.Abs(y) <= r.HalfHeight
}

func (r Rectangular) Extent() float64 {
	return math.Hypot(r.HalfWidth, r.HalfHeight)
}

func (r Rectangular) Outline(n int) []mgl64.Vec2 {
	corners := []mgl64.Vec2{
		{r.HalfWidth, r.HalfHeight},
		{-r.HalfWidth, r.HalfHeight},
		{-r.HalfWidth, -r.HalfHeight},
		{r.HalfWidth, -r.HalfHeight},
	}
	if n <= 4 {
		return corners
	}
	// Distribute samples along the perimeter, corner to corner.
	out := make([]mgl64.Vec2, 0, n)
	perSide := n / 4
	for i := 0; i < 4; i++ {
		a, b := corners[i], corners[(i+1)%4]
		for j := 0; j < perSide; j++ {
			f := float64(j) / float64(perSide)
			out = append(out, mgl64.Vec2{
				a.X() + f*(b.X()-a.X()),
				a.Y() + f*(b.Y()-a.Y()),
			})
		}
	}
	return out
}

// Annular is a circular aperture with a circular central obscuration, as cast
// by a prime-focus sensor package or a secondary mirror.
type Annular struct {
	InnerRadius float64
	OuterRadius float64
}

func (a Annular) Contains(x, y float64) bool {
	r2 := x*x + y*y
	return r2 >= a.InnerRadius*a.InnerRadius && r2 <= a.OuterRadius*a.OuterRadius
}

func (a Annular) Extent() float64 { return a.OuterRadius }

// Outline returns the outer boundary followed by the inner boundary.
func (a Annular) Outline(n int) []mgl64.Vec2 {
	half := n / 2
	if half < 3 {
		half = 3
	}
	out := circle(a.OuterRadius, half)
	return append(out, circle(a.InnerRadius, half)...)
}

func circle(radius float64, n int) []mgl64.Vec2 {
	if n < 3 {
		n = 3
	}
	out := make([]mgl64.Vec2, n)
	for i := range out {
		theta := 2 * math.Pi * float64(i) / float64(n)
		out[i] = mgl64.Vec2{radius * math.Cos(theta), radius * math.Sin(theta)}
	}
	return out
}
