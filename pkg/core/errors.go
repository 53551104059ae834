package core

import "errors"

// Structural configuration errors. These fail a run fast, before any
// propagation; per-ray failures never surface as errors and are recorded as
// dead rays instead.
var (
	ErrEmptySystem         = errors.New("optika: system has no sensor surface")
	ErrEmptyGrid           = errors.New("optika: input grid has no cells")
	ErrGridShapeMismatch   = errors.New("optika: ray count does not match grid shape")
	ErrNoPupilStop         = errors.New("optika: no surface is flagged as the pupil stop")
	ErrNoFieldStop         = errors.New("optika: no surface is flagged as the field stop")
	ErrMultiplePupilStops  = errors.New("optika: more than one surface is flagged as the pupil stop")
	ErrMultipleFieldStops  = errors.New("optika: more than one surface is flagged as the field stop")
	ErrStopWithoutAperture = errors.New("optika: stop surface has no aperture to size the grid against")
	ErrStopTraceFailed     = errors.New("optika: chief ray died before reaching the field stop")
)
