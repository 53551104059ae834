// Package geom provides the rigid-body transforms that place optical
// surfaces on the global optical axis.
package geom

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a rigid transform (rotation then translation) mapping a
// surface's local frame to the global frame. Moving local→global applies the
// rotation first, so a surface is tilted about its own vertex and then
// positioned.
type Transform struct {
	Rotation    mgl64.Mat3
	Translation mgl64.Vec3
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Rotation: mgl64.Ident3()}
}

// Translate returns a pure translation.
func Translate(x, y, z float64) Transform {
	return Transform{Rotation: mgl64.Ident3(), Translation: mgl64.Vec3{x, y, z}}
}

// RotateX returns a rotation about the x axis by angle radians.
func RotateX(angle float64) Transform {
	return Transform{Rotation: mgl64.Rotate3DX(angle)}
}

// RotateY returns a rotation about the y axis by angle radians.
func RotateY(angle float64) Transform {
	return Transform{Rotation: mgl64.Rotate3DY(angle)}
}

// RotateZ returns a rotation about the z axis by angle radians.
func RotateZ(angle float64) Transform {
	return Transform{Rotation: mgl64.Rotate3DZ(angle)}
}

// Compose returns the transform equivalent to applying inner first and then
// t, so t.Compose(inner).Point(p) == t.Point(inner.Point(p)).
func (t Transform) Compose(inner Transform) Transform {
	return Transform{
		Rotation:    t.Rotation.Mul3(inner.Rotation),
		Translation: t.Rotation.Mul3x1(inner.Translation).Add(t.Translation),
	}
}

// Inverse returns the global→local transform. The rotation block is
// orthonormal, so its transpose is its inverse.
func (t Transform) Inverse() Transform {
	rt := t.Rotation.Transpose()
	return Transform{
		Rotation:    rt,
		Translation: rt.Mul3x1(t.Translation).Mul(-1),
	}
}

// Point maps a point through the transform: rotate, then translate.
func (t Transform) Point(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Mul3x1(p).Add(t.Translation)
}

// Direction maps a direction through the transform. Directions rotate but do
// not translate.
func (t Transform) Direction(d mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Mul3x1(d)
}
