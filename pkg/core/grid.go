package core

// InputGrid is the logical coordinate space of a trace: one wavelength axis
// and two 2D axes (field and pupil) in normalized [-1, 1] coordinates. The
// full input is the outer product across all five axes, one ray per cell.
// The stop surfaces define the physical mapping from normalized coordinates
// to starting positions and directions.
type InputGrid struct {
	Wavelengths []float64
	FieldY      []float64
	FieldX      []float64
	PupilY      []float64
	PupilX      []float64
}

// NewUniformGrid builds a grid with nField×nField field points and
// nPupil×nPupil pupil points, both spanning [-1, 1], at the given wavelengths.
func NewUniformGrid(wavelengths []float64, nField, nPupil int) InputGrid {
	return InputGrid{
		Wavelengths: append([]float64(nil), wavelengths...),
		FieldY:      Linspace(-1, 1, nField),
		FieldX:      Linspace(-1, 1, nField),
		PupilY:      Linspace(-1, 1, nPupil),
		PupilX:      Linspace(-1, 1, nPupil),
	}
}

// Linspace returns n evenly spaced samples over [lo, hi]. A single sample
// sits at the midpoint.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{(lo + hi) / 2}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// NumCells returns the total number of grid cells (rays per surface).
func (g InputGrid) NumCells() int {
	return len(g.Wavelengths) * len(g.FieldY) * len(g.FieldX) * len(g.PupilY) * len(g.PupilX)
}

// Index flattens grid coordinates to a cell index. Ordering is
// wavelength-major, then field y, field x, pupil y, pupil x.
func (g InputGrid) Index(iw, ify, ifx, ipy, ipx int) int {
	i := iw
	i = i*len(g.FieldY) + ify
	i = i*len(g.FieldX) + ifx
	i = i*len(g.PupilY) + ipy
	i = i*len(g.PupilX) + ipx
	return i
}

// Coords is the inverse of Index.
func (g InputGrid) Coords(cell int) (iw, ify, ifx, ipy, ipx int) {
	ipx = cell % len(g.PupilX)
	cell /= len(g.PupilX)
	ipy = cell % len(g.PupilY)
	cell /= len(g.PupilY)
	ifx = cell % len(g.FieldX)
	cell /= len(g.FieldX)
	ify = cell % len(g.FieldY)
	iw = cell / len(g.FieldY)
	return iw, ify, ifx, ipy, ipx
}

// Empty reports whether any axis has zero samples.
func (g InputGrid) Empty() bool {
	return g.NumCells() == 0
}
