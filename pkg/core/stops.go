package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// StopGeometry is the resolved physical mapping produced by the stop-finding
// pass. It is an explicit immutable value passed into ray generation rather
// than state threaded through the surface graph: normalized pupil coordinates
// scale to PupilRadius around PupilCenter, and normalized field coordinates
// scale to MaxFieldAngle.
type StopGeometry struct {
	// PupilCenter is the global-frame vertex of the pupil-stop surface.
	PupilCenter mgl64.Vec3
	// PupilRotation maps the pupil stop's local frame to the global frame.
	// Normalized pupil offsets are measured laterally in the stop's own
	// plane, so a tilted stop is still filled edge to edge.
	PupilRotation mgl64.Mat3
	// PupilRadius is the bounding radius of the pupil stop's aperture.
	PupilRadius float64
	// FieldRadius is the bounding radius of the field stop's aperture.
	FieldRadius float64
	// MaxFieldAngle is the half-angle, in radians, that a normalized field
	// coordinate of ±1 maps to.
	MaxFieldAngle float64
	// EntranceZ is the axial coordinate of the plane rays are launched from.
	EntranceZ float64
	// StopSeparation is the chief-ray path length from the pupil stop to the
	// field stop, measured by the stop-finding trace.
	StopSeparation float64
}
