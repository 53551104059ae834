// Package system orders optical surfaces into a sequential system, resolves
// the pupil and field stops, and propagates ray grids through the chain.
package system

import (
	"fmt"
	"log"

	"github.com/byrdie/optika/pkg/core"
	"github.com/byrdie/optika/pkg/surface"
)

// System is an ordered sequence of optical surfaces plus a distinguished
// terminal sensor surface. Rays pass through every surface exactly once, in
// order, then hit the sensor.
type System struct {
	Name     string
	Surfaces []*surface.Surface
	Sensor   *surface.Surface

	// Workers is the number of parallel propagation workers; zero means one
	// per CPU.
	Workers int

	Logger core.Logger
}

// New creates a system with a default stdout logger.
func New(name string, surfaces []*surface.Surface, sensor *surface.Surface) *System {
	return &System{
		Name:     name,
		Surfaces: surfaces,
		Sensor:   sensor,
		Logger:   NewDefaultLogger(),
	}
}

// DefaultLogger implements core.Logger by writing to the standard logger.
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger.
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// all returns the propagation order: every surface, then the sensor.
func (sys *System) all() []*surface.Surface {
	return append(append([]*surface.Surface(nil), sys.Surfaces...), sys.Sensor)
}

// surfaceNames returns the recorded state labels: the launch grid, each
// surface, then the sensor.
func (sys *System) surfaceNames() []string {
	names := make([]string, 0, len(sys.Surfaces)+2)
	names = append(names, "input")
	for _, s := range sys.Surfaces {
		names = append(names, s.Name)
	}
	names = append(names, sys.Sensor.Name)
	return names
}

// Validate checks the structural configuration of the system: a sensor must
// be present, and no stop flag may appear more than once. It does not demand
// that stops exist, since a system can be propagated with explicit rays;
// ResolveStops additionally requires exactly one of each.
func (sys *System) Validate() error {
	if sys.Sensor == nil {
		return core.ErrEmptySystem
	}
	pupils, fields := 0, 0
	for _, s := range sys.all() {
		if s.IsPupilStop {
			pupils++
		}
		if s.IsFieldStop {
			fields++
		}
	}
	if pupils > 1 {
		return fmt.Errorf("%w (%d found)", core.ErrMultiplePupilStops, pupils)
	}
	if fields > 1 {
		return fmt.Errorf("%w (%d found)", core.ErrMultipleFieldStops, fields)
	}
	return nil
}

// stopIndices locates the pupil and field stops in propagation order,
// requiring exactly one of each.
func (sys *System) stopIndices() (pupil, field int, err error) {
	pupil, field = -1, -1
	for i, s := range sys.all() {
		if s.IsPupilStop {
			if pupil >= 0 {
				return 0, 0, core.ErrMultiplePupilStops
			}
			pupil = i
		}
		if s.IsFieldStop {
			if field >= 0 {
				return 0, 0, core.ErrMultipleFieldStops
			}
			field = i
		}
	}
	if pupil < 0 {
		return 0, 0, core.ErrNoPupilStop
	}
	if field < 0 {
		return 0, 0, core.ErrNoFieldStop
	}
	return pupil, field, nil
}
