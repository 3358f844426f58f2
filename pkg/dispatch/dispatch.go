// Package dispatch implements §4.6's ray-tracing entry points: the
// pixel-grid worker pool that drives one photon per pixel through
// pkg/photon and pkg/astrobj, plus the re-render-from-impact-coords
// shortcut.
//
// The teacher's pkg/renderer/worker_pool.go hand-rolls a channel-based
// pool (TileTask/TileResult structs, a fixed worker slice, a
// sync.WaitGroup shutdown). This package keeps that task/result naming
// and the "each task owns a non-overlapping pixel range, so writes to
// the shared output grid need no locking" invariant, but drives the
// pool with golang.org/x/sync/errgroup instead of hand-rolled channels
// — one Go routine per pixel range, bounded by errgroup.SetLimit,
// with the first fatal pixel-level error cancelling the group's context.
package dispatch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/arlowen/grtrace/pkg/astrobj"
	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/photon"
	"github.com/arlowen/grtrace/pkg/scenery"
)

// PixelTask is one worker's unit of work: a half-open row range
// [JMin,JMax) of the output grid, every column in [IMin,IMax). Ranges
// assigned to distinct tasks never overlap, so each task writes to its
// own slice of the output grid without synchronization, mirroring the
// teacher's "each tile has non-overlapping bounds, so this is
// thread-safe" comment in Worker.run.
type PixelTask struct {
	IMin, IMax, JMin, JMax int
	TaskID                 int
}

// PixelResult is the outcome of one PixelTask, named after the
// teacher's TileResult.
type PixelResult struct {
	TaskID int
	Error  error
}

// Grid is the caller-owned output buffer of §4.6: one Properties per
// pixel, column-major in (i,j) to match the teacher's image.Rectangle
// row-major iteration order (j outer, i inner) while keeping per-pixel
// storage addressable as Grid.At(i,j).
type Grid struct {
	Width, Height int
	cells         []*core.Properties
}

// NewGrid allocates a Width*Height grid of Properties, each configured
// for the same requested quantities and spectral channel count.
func NewGrid(width, height int, requested core.Quantities, nSpectral int) *Grid {
	g := &Grid{Width: width, Height: height, cells: make([]*core.Properties, width*height)}
	for idx := range g.cells {
		g.cells[idx] = core.NewProperties(requested, nSpectral)
	}
	return g
}

func (g *Grid) At(i, j int) *core.Properties { return g.cells[j*g.Width+i] }

// tileRows returns up to numWorkers row-aligned tasks covering
// [jMin,jMax), splitting as evenly as the teacher's maxTiles estimate
// splits a 2-D tile grid, but along rows only since a pixel's photon
// integration cost does not depend on its column.
func tileRows(iMin, iMax, jMin, jMax, numWorkers int) []PixelTask {
	rows := jMax - jMin
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if numWorkers > rows {
		numWorkers = rows
	}
	if numWorkers <= 0 {
		return nil
	}
	chunk := (rows + numWorkers - 1) / numWorkers
	var tasks []PixelTask
	id := 0
	for j := jMin; j < jMax; j += chunk {
		end := j + chunk
		if end > jMax {
			end = jMax
		}
		tasks = append(tasks, PixelTask{IMin: iMin, IMax: iMax, JMin: j, JMax: end, TaskID: id})
		id++
	}
	return tasks
}

// RayTrace implements §4.6's primary entry point: trace every pixel in
// [iMin,iMax)x[jMin,jMax), writing results into out. Pixels are
// distributed across scn.EffectiveThreads() goroutines via errgroup; a
// worker-pool.Stop()-equivalent drain happens implicitly at grp.Wait().
func RayTrace(ctx context.Context, scn *scenery.Scenery, iMin, iMax, jMin, jMax int, out *Grid) error {
	numWorkers := scn.EffectiveThreads()
	tasks := tileRows(iMin, iMax, jMin, jMax, numWorkers)

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(numWorkers)

	for _, task := range tasks {
		task := task
		grp.Go(func() error {
			return runPixelTask(gctx, scn, task, out)
		})
	}
	return grp.Wait()
}

// runPixelTask traces every pixel in task's range, cloning a fresh
// photon per pixel from the Scenery's template (§3's ownership rule: a
// worker never shares a photon across pixels or with another worker).
func runPixelTask(ctx context.Context, scn *scenery.Scenery, task PixelTask, out *Grid) error {
	for j := task.JMin; j < task.JMax; j++ {
		for i := task.IMin; i < task.IMax; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := tracePixel(scn, i, j, out.At(i, j)); err != nil {
				if !errKind(err).Fatal() {
					continue // per-pixel non-fatal failure: sentinel already filled by tracePixel
				}
				return err
			}
		}
	}
	return nil
}

func errKind(err error) core.Kind {
	if ce, ok := err.(*core.Error); ok {
		return ce.Kind
	}
	return core.Invariant
}

// tracePixel seeds one photon from the screen, integrates it to a
// terminal state while testing Impact against the Scenery's emitter
// between every pair of accepted samples, and fills outProps (§4.4
// step 5 / §4.6).
func tracePixel(scn *scenery.Scenery, i, j int, outProps *core.Properties) error {
	pos0, k0, err := scn.Screen.PixelRay(i, j)
	if err != nil {
		return err
	}

	ph, err := scn.ClonePhoton()
	if err != nil {
		return err
	}
	ph.Seed(pos0, k0)
	ph.SetStepGovernor(stepGovernorFor(scn))

	runErr := ph.Run(func(prev, curr core.State8) bool {
		idx := ph.WorldLine().Len() - 2
		hit, ierr := astrobj.Impact(scn.Astrobj, scn.Metric, ph, idx, outProps)
		if ierr != nil {
			err = ierr
			return true
		}
		return hit && scn.Tuning.PrimaryOnly
	})
	if err != nil {
		return err
	}
	if runErr != nil {
		if ce, ok := runErr.(*core.Error); ok && !ce.Kind.Fatal() {
			if !outProps.Hit() {
				outProps.FillNoHit()
			}
			return nil
		}
		return runErr
	}
	if !outProps.Hit() {
		outProps.FillNoHit()
	}
	return nil
}

// stepGovernorFor returns scn.Astrobj's DeltaMax as a photon.StepGovernor,
// bound to the metric's coordinate kind, when the active emitter is a
// geometric one (§4.4's cooperative step-size governor). A GridAstrobj
// has no position-local step bound, so this returns nil for it.
func stepGovernorFor(scn *scenery.Scenery) photon.StepGovernor {
	geo, ok := scn.Astrobj.(astrobj.GeometricAstrobj)
	if !ok {
		return nil
	}
	coordKind := scn.Metric.CoordKind()
	return func(pos core.Position4) float64 {
		return geo.DeltaMax(pos, coordKind)
	}
}

// RayTraceFromImpact implements §4.6's re-render shortcut: skip
// integration entirely and re-evaluate radiative transfer at each
// pixel's previously recorded ImpactCoords, used to re-render an
// optically-thick scene after altering emissivity at constant
// geometry. impactCoords must be the same shape as out (one [16]float64
// per pixel, all zeros for a pixel that never hit).
func RayTraceFromImpact(scn *scenery.Scenery, impactCoords [][16]float64, out *Grid) error {
	for j := 0; j < out.Height; j++ {
		for i := 0; i < out.Width; i++ {
			coords := impactCoords[j*out.Width+i]
			props := out.At(i, j)
			if coords == ([16]float64{}) {
				props.FillNoHit()
				continue
			}
			if err := astrobj.Recompute(scn.Astrobj, coords, scn.Metric.CoordKind(), props); err != nil {
				return err
			}
		}
	}
	return nil
}
