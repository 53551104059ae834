package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// RayFunction associates every input grid coordinate with the ray state
// recorded at every surface of a trace. Surface index 0 holds the launched
// rays, indices 1..N the state after each system surface in order, and the
// last index the state at the sensor. Built once per propagation run and
// immutable afterwards.
type RayFunction struct {
	Grid         InputGrid
	SurfaceNames []string
	// States[surface][cell]; every inner slice has Grid.NumCells() entries.
	States [][]Ray
}

// NumSurfaces returns the number of recorded surface states, including the
// launch state and the sensor.
func (rf *RayFunction) NumSurfaces() int {
	return len(rf.States)
}

// At returns the ray state for one grid coordinate at one surface.
func (rf *RayFunction) At(surface, iw, ify, ifx, ipy, ipx int) Ray {
	return rf.States[surface][rf.Grid.Index(iw, ify, ifx, ipy, ipx)]
}

// Sensor returns the ray states at the terminal sensor surface.
func (rf *RayFunction) Sensor() []Ray {
	return rf.States[len(rf.States)-1]
}

// AliveCount returns the number of live rays at the given surface.
func (rf *RayFunction) AliveCount(surface int) int {
	n := 0
	for _, r := range rf.States[surface] {
		if r.Alive {
			n++
		}
	}
	return n
}

// Centroid returns the mean sensor position over the pupil axes for one
// field point and wavelength, counting only live rays. The second return is
// false when every pupil ray for that field point is dead.
func (rf *RayFunction) Centroid(iw, ify, ifx int) (mgl64.Vec3, bool) {
	sensor := rf.Sensor()
	var sum mgl64.Vec3
	n := 0
	for ipy := range rf.Grid.PupilY {
		for ipx := range rf.Grid.PupilX {
			r := sensor[rf.Grid.Index(iw, ify, ifx, ipy, ipx)]
			if !r.Alive {
				continue
			}
			sum = sum.Add(r.Position)
			n++
		}
	}
	if n == 0 {
		return mgl64.Vec3{}, false
	}
	return sum.Mul(1 / float64(n)), true
}

// Residuals returns, for every sensor ray, its position minus the centroid
// of its own field point, so spot spreads can be compared across field
// points without contaminating one field point's spread with another's
// centroid offset. Dead rays keep their NaN positions.
func (rf *RayFunction) Residuals() []mgl64.Vec3 {
	sensor := rf.Sensor()
	out := make([]mgl64.Vec3, len(sensor))
	for iw := range rf.Grid.Wavelengths {
		for ify := range rf.Grid.FieldY {
			for ifx := range rf.Grid.FieldX {
				centroid, ok := rf.Centroid(iw, ify, ifx)
				for ipy := range rf.Grid.PupilY {
					for ipx := range rf.Grid.PupilX {
						i := rf.Grid.Index(iw, ify, ifx, ipy, ipx)
						if !ok || !sensor[i].Alive {
							out[i] = DeadRay(sensor[i].Wavelength).Position
							continue
						}
						out[i] = sensor[i].Position.Sub(centroid)
					}
				}
			}
		}
	}
	return out
}
