// Package designs provides prebuilt optical systems for the CLI, the web
// server, and tests.
package designs

import (
	"math"

	"github.com/byrdie/optika/pkg/aperture"
	"github.com/byrdie/optika/pkg/geom"
	"github.com/byrdie/optika/pkg/material"
	"github.com/byrdie/optika/pkg/sag"
	"github.com/byrdie/optika/pkg/surface"
	"github.com/byrdie/optika/pkg/system"
)

// PrimeFocusConfig sizes a single-mirror prime-focus telescope.
type PrimeFocusConfig struct {
	// ApertureRadius is the primary mirror's clear radius.
	ApertureRadius float64
	// FNumber sets the focal length as FNumber * ApertureRadius.
	FNumber float64
	// SensorRadius is the half-size of the sensor, which acts as the field
	// stop.
	SensorRadius float64
	// ObscurationRadius blocks the center of the primary, as the sensor
	// package sitting in the beam would. Zero means unobscured.
	ObscurationRadius float64
}

// DefaultPrimeFocusConfig returns the notebook's reference design: a 100
// unit radius f/5 primary with a small central sensor.
func DefaultPrimeFocusConfig() PrimeFocusConfig {
	return PrimeFocusConfig{
		ApertureRadius: 100,
		FNumber:        5,
		SensorRadius:   5,
	}
}

// NewPrimeFocus builds a prime-focus telescope: a parabolic primary at the
// origin acting as the pupil stop, and a sensor at the prime focus acting as
// the field stop. Rays enter traveling +z; the primary's negative focal
// parameter reflects them back to a focus one focal length up the beam.
func NewPrimeFocus(cfg PrimeFocusConfig) *system.System {
	focal := cfg.FNumber * cfg.ApertureRadius

	var clear aperture.Aperture = aperture.Circular{Radius: cfg.ApertureRadius}
	if cfg.ObscurationRadius > 0 {
		clear = aperture.Annular{
			InnerRadius: cfg.ObscurationRadius,
			OuterRadius: cfg.ApertureRadius,
		}
	}

	primary := &surface.Surface{
		Name:        "primary",
		Sag:         sag.NewParabolic(-focal),
		Aperture:    clear,
		Material:    material.Mirror{},
		Transform:   geom.Identity(),
		IsPupilStop: true,
	}
	sensor := &surface.Surface{
		Name:        "sensor",
		Sag:         sag.Flat{},
		Aperture:    aperture.Circular{Radius: cfg.SensorRadius},
		Material:    material.Vacuum{},
		Transform:   geom.Translate(0, 0, -focal),
		IsFieldStop: true,
	}
	return system.New("prime-focus", []*surface.Surface{primary}, sensor)
}

// NewFoldBench builds a diagnostic bench: a flat mirror at the origin tilted
// 45° about y folds a +z beam onto the -x axis, where the sensor sits one
// arm length away. Useful for checking transforms and the reflection law
// without any focusing power.
func NewFoldBench(mirrorRadius, armLength, sensorRadius float64) *system.System {
	fold := &surface.Surface{
		Name:        "fold",
		Sag:         sag.Flat{},
		Aperture:    aperture.Circular{Radius: mirrorRadius},
		Material:    material.Mirror{},
		Transform:   geom.RotateY(math.Pi / 4),
		IsPupilStop: true,
	}
	sensor := &surface.Surface{
		Name:        "sensor",
		Sag:         sag.Flat{},
		Aperture:    aperture.Circular{Radius: sensorRadius},
		Material:    material.Vacuum{},
		Transform:   geom.Translate(-armLength, 0, 0).Compose(geom.RotateY(math.Pi / 2)),
		IsFieldStop: true,
	}
	return system.New("fold-bench", []*surface.Surface{fold}, sensor)
}

// ByName builds a named design with its default parameters. The second
// return is false for an unknown name.
func ByName(name string) (*system.System, bool) {
	switch name {
	case "prime-focus":
		return NewPrimeFocus(DefaultPrimeFocusConfig()), true
	case "prime-focus-obscured":
		cfg := DefaultPrimeFocusConfig()
		cfg.ObscurationRadius = cfg.SensorRadius
		return NewPrimeFocus(cfg), true
	case "fold-bench":
		return NewFoldBench(25, 200, 25), true
	default:
		return nil, false
	}
}

// Names lists the designs ByName accepts.
func Names() []string {
	return []string{"prime-focus", "prime-focus-obscured", "fold-bench"}
}
