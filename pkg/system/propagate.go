package system

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/byrdie/optika/pkg/core"
	"github.com/byrdie/optika/pkg/surface"
)

// chunkSize is the number of grid cells a worker claims at a time. Rays are
// independent, so the only constraint is cancellation granularity.
const chunkSize = 256

// Trace runs the full two-pass pipeline: validate, resolve the stops,
// generate the grid rays, and propagate them through every surface.
func (sys *System) Trace(ctx context.Context, grid core.InputGrid) (*core.RayFunction, error) {
	stops, err := sys.ResolveStops()
	if err != nil {
		return nil, err
	}
	return sys.Propagate(ctx, GenerateRays(stops, grid), grid)
}

// Propagate pushes the given rays through every surface in order, then the
// sensor, recording the ray state after each. The work is a data-parallel
// map over grid cells: workers claim contiguous chunks and write disjoint
// regions of preallocated state arrays, so identical inputs produce
// bit-identical outputs regardless of scheduling. A ray that dies mid-chain
// is recorded dead at every later surface, preserving the rectangular
// grid × surface shape of the output.
func (sys *System) Propagate(ctx context.Context, rays []core.Ray, grid core.InputGrid) (*core.RayFunction, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	if grid.Empty() || len(rays) == 0 {
		return nil, core.ErrEmptyGrid
	}
	if len(rays) != grid.NumCells() {
		return nil, fmt.Errorf("%w: %d rays for %d cells", core.ErrGridShapeMismatch, len(rays), grid.NumCells())
	}

	surfaces := sys.all()
	states := make([][]core.Ray, len(surfaces)+1)
	states[0] = append([]core.Ray(nil), rays...)
	for i := range surfaces {
		states[i+1] = make([]core.Ray, len(rays))
	}

	workers := sys.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	chunks := make(chan [2]int)
	go func() {
		defer close(chunks)
		for lo := 0; lo < len(rays); lo += chunkSize {
			hi := min(lo+chunkSize, len(rays))
			select {
			case chunks <- [2]int{lo, hi}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var nonFinite atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range chunks {
				for i := chunk[0]; i < chunk[1]; i++ {
					r := rays[i]
					for si, s := range surfaces {
						var block surface.Block
						r, block = s.Trace(r)
						if block == surface.BlockNonFinite {
							nonFinite.Add(1)
						}
						states[si+1][i] = r
					}
				}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rf := &core.RayFunction{
		Grid:         grid,
		SurfaceNames: sys.surfaceNames(),
		States:       states,
	}
	if sys.Logger != nil {
		alive := rf.AliveCount(len(states) - 1)
		sys.Logger.Printf("trace %q: %d surfaces, %d rays, %d alive at sensor, %d non-finite collapses\n",
			sys.Name, len(surfaces), len(rays), alive, nonFinite.Load())
	}
	return rf, nil
}
