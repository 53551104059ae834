package system

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/byrdie/optika/pkg/core"
	"github.com/byrdie/optika/pkg/surface"
)

// ResolveStops is the first pass of the two-pass trace: it traces a chief
// probe ray down the chain and produces the immutable physical mapping from
// normalized pupil/field coordinates to starting positions and directions.
// The mapping is returned as an explicit value rather than threaded through
// the surface graph, so the second pass and its tests can consume it in
// isolation.
//
// The probe ignores aperture clipping: an obscuration sitting on the axis
// must not prevent the stop geometry from being measured.
func (sys *System) ResolveStops() (core.StopGeometry, error) {
	if err := sys.Validate(); err != nil {
		return core.StopGeometry{}, err
	}
	pupilIdx, fieldIdx, err := sys.stopIndices()
	if err != nil {
		return core.StopGeometry{}, err
	}

	all := sys.all()
	pupilSurf := all[pupilIdx]
	fieldSurf := all[fieldIdx]
	if pupilSurf.Aperture == nil || fieldSurf.Aperture == nil {
		return core.StopGeometry{}, core.ErrStopWithoutAperture
	}
	pupilRadius := pupilSurf.Aperture.Extent()
	fieldRadius := fieldSurf.Aperture.Extent()

	pupilCenter := pupilSurf.Vertex()
	entranceZ := entrancePlane(all, pupilRadius)

	// Chief probe: launched on the pupil axis from the entrance plane,
	// traveling +z. The accumulated path length between the pupil-stop hit
	// and the field-stop hit converts the field stop's radius into an angle,
	// which stays correct when the chain folds the axis.
	probe := core.NewRay(
		mgl64.Vec3{pupilCenter.X(), pupilCenter.Y(), entranceZ},
		mgl64.Vec3{0, 0, 1},
		0,
	)
	var pupilPath, fieldPath float64
	path := 0.0
	for i, s := range all {
		next := s.PropagateUnclipped(probe)
		if !next.Finite() {
			return core.StopGeometry{}, fmt.Errorf("%w: probe blocked at surface %q", core.ErrStopTraceFailed, s.Name)
		}
		path += next.Position.Sub(probe.Position).Len()
		if i == pupilIdx {
			pupilPath = path
		}
		if i == fieldIdx {
			fieldPath = path
		}
		probe = next
		if i == fieldIdx && i >= pupilIdx {
			break
		}
	}

	separation := fieldPath - pupilPath
	if separation <= 0 {
		return core.StopGeometry{}, fmt.Errorf("%w: field stop is not downstream of the pupil stop", core.ErrStopTraceFailed)
	}

	stops := core.StopGeometry{
		PupilCenter:    pupilCenter,
		PupilRotation:  pupilSurf.Transform.Rotation,
		PupilRadius:    pupilRadius,
		FieldRadius:    fieldRadius,
		MaxFieldAngle:  fieldAngle(fieldRadius, separation),
		EntranceZ:      entranceZ,
		StopSeparation: separation,
	}
	return stops, nil
}

// entrancePlane places the launch plane upstream of every surface vertex by
// one pupil radius, so launched rays reach the first surface from outside
// its sag.
func entrancePlane(all []*surface.Surface, pupilRadius float64) float64 {
	z := math.Inf(1)
	for _, s := range all {
		z = math.Min(z, s.Vertex().Z())
	}
	return z - pupilRadius
}

// fieldAngle converts the field stop's radius at the traced stop separation
// into the half-angle that a normalized field coordinate of ±1 maps to.
func fieldAngle(fieldRadius, separation float64) float64 {
	return math.Atan2(fieldRadius, separation)
}
