package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/byrdie/optika/pkg/core"
)

// GenerateRays is the input to the second pass: it maps every cell of the
// normalized input grid to a launch-ready global-frame ray using the stop
// geometry resolved in the first pass.
//
// Field coordinates become the propagation direction: a normalized field
// coordinate of ±1 tilts the ray by the resolved maximum field angle. Pupil
// coordinates become the lateral offset in the pupil stop's own plane, so a
// tilted stop is still filled edge to edge; the ray is then backed off along
// its own direction to the entrance plane. Pupil cells whose physical
// position falls outside the stop's aperture are launched anyway and die at
// the stop surface, keeping the output grid rectangular.
func GenerateRays(stops core.StopGeometry, grid core.InputGrid) []core.Ray {
	rays := make([]core.Ray, grid.NumCells())
	for iw, wavelength := range grid.Wavelengths {
		for ify, fy := range grid.FieldY {
			for ifx, fx := range grid.FieldX {
				dir := fieldDirection(fx, fy, stops.MaxFieldAngle)
				for ipy, py := range grid.PupilY {
					for ipx, px := range grid.PupilX {
						offset := stops.PupilRotation.Mul3x1(mgl64.Vec3{
							px * stops.PupilRadius,
							py * stops.PupilRadius,
							0,
						})
						pupilPoint := stops.PupilCenter.Add(offset)
						// Back off along the ray so the origin sits on the
						// entrance plane and the ray still crosses the pupil
						// plane at pupilPoint.
						t := (pupilPoint.Z() - stops.EntranceZ) / dir.Z()
						origin := pupilPoint.Sub(dir.Mul(t))
						i := grid.Index(iw, ify, ifx, ipy, ipx)
						rays[i] = core.NewRay(origin, dir, wavelength)
					}
				}
			}
		}
	}
	return rays
}

// fieldDirection maps normalized field coordinates to a unit direction
// tilted off the +z axis by fx and fy fractions of the maximum field angle.
func fieldDirection(fx, fy, maxAngle float64) mgl64.Vec3 {
	return mgl64.Vec3{
		math.Tan(fx * maxAngle),
		math.Tan(fy * maxAngle),
		1,
	}.Normalize()
}
