// Package surface composes a sag profile, aperture, material, and rigid
// transform into a single ray-interactable optical surface.
package surface

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/byrdie/optika/pkg/aperture"
	"github.com/byrdie/optika/pkg/core"
	"github.com/byrdie/optika/pkg/geom"
	"github.com/byrdie/optika/pkg/material"
	"github.com/byrdie/optika/pkg/sag"
)

// Surface is one optical interface in a sequential system. Surfaces are
// immutable once constructed; the transform maps the surface's local frame
// (vertex at the origin, sag along +z) to the global frame.
type Surface struct {
	Name        string
	Sag         sag.Profile
	Aperture    aperture.Aperture // nil means unbounded
	Material    material.Material
	Transform   geom.Transform
	IsPupilStop bool
	IsFieldStop bool
}

// New returns a surface with the identity transform, a flat sag, and a
// vacuum material for any nil component, mirroring the behavior of a bare
// reference plane.
func New(name string) *Surface {
	return &Surface{
		Name:      name,
		Sag:       sag.Flat{},
		Material:  material.Vacuum{},
		Transform: geom.Identity(),
	}
}

// Vertex returns the surface's vertex position in the global frame.
func (s *Surface) Vertex() mgl64.Vec3 {
	return s.Transform.Point(mgl64.Vec3{})
}

// Block names the outcome of a surface interaction for live input rays.
type Block int

const (
	// BlockNone means the ray continues downstream.
	BlockNone Block = iota
	// BlockMiss means the ray never intersected the sag.
	BlockMiss
	// BlockClip means the intercept fell outside the aperture.
	BlockClip
	// BlockAbsorbed means the material terminated the ray.
	BlockAbsorbed
	// BlockNonFinite means the solve produced NaN or infinite components.
	BlockNonFinite
)

// Propagate intersects a global-frame ray with the surface, applies the
// material interaction, and returns the outgoing global-frame ray.
//
// A ray that misses the surface, falls outside the aperture, or produces a
// non-finite solve is blocked: the result is the dead-ray sentinel, and a
// dead input stays dead. A ray absorbed by the material keeps its intercept
// position so the absorbing surface records where the ray landed.
func (s *Surface) Propagate(r core.Ray) core.Ray {
	out, _ := s.trace(r, true)
	return out
}

// Trace behaves like Propagate but also reports why the ray was blocked, so
// callers can separate expected clipping from numeric failures. An already
// dead input reports BlockNone.
func (s *Surface) Trace(r core.Ray) (core.Ray, Block) {
	return s.trace(r, true)
}

// PropagateUnclipped behaves like Propagate but ignores the aperture test.
// The stop-finding pass uses it so an obscuration in front of the chief ray
// does not prevent the stop geometry from being resolved.
func (s *Surface) PropagateUnclipped(r core.Ray) core.Ray {
	out, _ := s.trace(r, false)
	return out
}

func (s *Surface) trace(r core.Ray, clip bool) (core.Ray, Block) {
	if !r.Alive {
		return core.DeadRay(r.Wavelength), BlockNone
	}

	inv := s.Transform.Inverse()
	o := inv.Point(r.Position)
	d := inv.Direction(r.Direction)

	t, ok := s.Sag.Intercept(o, d)
	if !ok {
		return core.DeadRay(r.Wavelength), BlockMiss
	}
	p := o.Add(d.Mul(t))

	if clip && s.Aperture != nil && !s.Aperture.Contains(p.X(), p.Y()) {
		return core.DeadRay(r.Wavelength), BlockClip
	}

	n := s.Sag.Normal(p.X(), p.Y())
	out, alive := s.Material.Interact(d, n)

	result := core.Ray{
		Position:   s.Transform.Point(p),
		Direction:  s.Transform.Direction(out),
		Wavelength: r.Wavelength,
		Alive:      alive,
	}
	if !result.Finite() {
		return core.DeadRay(r.Wavelength), BlockNonFinite
	}
	if !alive {
		return result, BlockAbsorbed
	}
	return result, BlockNone
}

// Outline samples the surface's aperture boundary, with the sag evaluated at
// each boundary point, in the global frame. Plotting consumers use it to
// draw the surface in a system layout.
func (s *Surface) Outline(n int) []mgl64.Vec3 {
	if s.Aperture == nil {
		return nil
	}
	boundary := s.Aperture.Outline(n)
	out := make([]mgl64.Vec3, len(boundary))
	for i, b := range boundary {
		local := mgl64.Vec3{b.X(), b.Y(), s.Sag.Height(b.X(), b.Y())}
		out[i] = s.Transform.Point(local)
	}
	return out
}

// RadialProfile samples the sag along the local x axis across the aperture
// extent, in the global frame, for 2D cross-section plots.
func (s *Surface) RadialProfile(n int) []mgl64.Vec3 {
	if s.Aperture == nil || n < 2 {
		return nil
	}
	extent := s.Aperture.Extent()
	xs := core.Linspace(-extent, extent, n)
	out := make([]mgl64.Vec3, 0, n)
	for _, x := range xs {
		if !s.Aperture.Contains(x, 0) {
			continue
		}
		out = append(out, s.Transform.Point(mgl64.Vec3{x, 0, s.Sag.Height(x, 0)}))
	}
	return out
}
