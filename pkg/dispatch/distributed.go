package dispatch

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/rpc"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arlowen/grtrace/pkg/astrobj"
	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/scenery"
)

// Tag is the closed message vocabulary of §5's distributed mode,
// lifted directly from Gyoto's own MPI tag enum
// (`give_task/read_scenery/terminate/raytrace/raytrace_done/ready/
// impactcoords/noimpactcoords` in `original_source/`'s
// `GyotoScenery.h`). net/rpc's request/reply calls replace Gyoto's
// raw MPI send/recv, but the tags travel along for the ride inside
// every reply so a worker can distinguish "more work" from "drain".
type Tag string

const (
	TagReady          Tag = "ready"
	TagGiveTask       Tag = "give_task"
	TagReadScenery    Tag = "read_scenery"
	TagTerminate      Tag = "terminate"
	TagRaytrace       Tag = "raytrace"
	TagRaytraceDone   Tag = "raytrace_done"
	TagImpactCoords   Tag = "impactcoords"
	TagNoImpactCoords Tag = "noimpactcoords"
)

// leaseTimeout bounds how long a coordinator waits for a worker's
// raytrace_done before reissuing the same range to the next ready
// worker, implementing §5's "must tolerate worker failure by
// reissuing the pending range" rule.
const leaseTimeout = 30 * time.Second

// ReadyArgs is a worker's `ready` call.
type ReadyArgs struct {
	WorkerID    uuid.UUID
	SceneryPath string
}

// TaskReply is the coordinator's reply to `ready`: either `give_task`
// (with a pixel range, and optionally `impactcoords` carrying the
// pre-computed impact points for a re-render run) or `terminate`.
type TaskReply struct {
	Tag         Tag
	SceneryTag  Tag // echoes read_scenery, confirming the path the worker should load
	SceneryPath string
	Task        PixelTask
	ImpactTag   Tag // impactcoords or noimpactcoords
	Impact      [][16]float64
}

// DoneArgs is a worker's `raytrace_done` call, carrying the filled
// slice of the output grid for exactly the range it was given.
type DoneArgs struct {
	WorkerID uuid.UUID
	Task     PixelTask
	Cells    []core.Properties
}

// Ack is the coordinator's empty reply to Done.
type Ack struct{}

type lease struct {
	task      PixelTask
	assigned  time.Time
	fulfilled bool
}

// Coordinator is the §5 distributed-mode server: it owns the pending
// pixel-range queue and the shared output Grid, and answers workers'
// ready/raytrace_done RPCs over net/rpc. Partial results are never
// merged — a lease is either fulfilled whole or reissued whole.
type Coordinator struct {
	mu          sync.Mutex
	sceneryPath string
	grid        *Grid
	impact      [][16]float64 // non-nil in re-render mode
	pending     []PixelTask
	leases      map[int]*lease
}

// NewCoordinator builds a Coordinator serving the given pixel tasks
// against out. impact is non-nil for a RayTraceFromImpact-style
// distributed re-render; in that case no photon is integrated and
// each worker's task only exercises radiative transfer.
func NewCoordinator(sceneryPath string, tasks []PixelTask, out *Grid, impact [][16]float64) *Coordinator {
	return &Coordinator{
		sceneryPath: sceneryPath,
		grid:        out,
		impact:      impact,
		pending:     append([]PixelTask(nil), tasks...),
		leases:      make(map[int]*lease),
	}
}

// Ready answers a worker's `ready` call with either `give_task` (a
// fresh range, or a timed-out lease reissued to this worker) or
// `terminate` once no range remains outstanding.
func (c *Coordinator) Ready(args *ReadyArgs, reply *TaskReply) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	reply.SceneryTag = TagReadScenery
	reply.SceneryPath = c.sceneryPath

	task, ok := c.nextTask()
	if !ok {
		reply.Tag = TagTerminate
		return nil
	}

	reply.Tag = TagGiveTask
	reply.Task = task
	if c.impact != nil {
		reply.ImpactTag = TagImpactCoords
		reply.Impact = sliceRange(c.impact, task, c.grid.Width)
	} else {
		reply.ImpactTag = TagNoImpactCoords
	}
	c.leases[task.TaskID] = &lease{task: task, assigned: time.Now()}
	return nil
}

// nextTask pops a fresh pending range, or reclaims the oldest
// timed-out, unfulfilled lease if the pending queue is empty.
func (c *Coordinator) nextTask() (PixelTask, bool) {
	if len(c.pending) > 0 {
		t := c.pending[0]
		c.pending = c.pending[1:]
		return t, true
	}
	now := time.Now()
	for id, l := range c.leases {
		if !l.fulfilled && now.Sub(l.assigned) > leaseTimeout {
			delete(c.leases, id)
			return l.task, true
		}
	}
	return PixelTask{}, false
}

// Done answers a worker's `raytrace_done` call, copying the returned
// cells into the shared Grid iff this lease has not already been
// fulfilled by a different (e.g. previously presumed-dead, now slow)
// worker — the first writer for a given range wins.
func (c *Coordinator) Done(args *DoneArgs, reply *Ack) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.leases[args.Task.TaskID]
	if !ok || l.fulfilled {
		return nil // stale/duplicate report for an already-reissued or already-done range
	}
	if want := (args.Task.JMax - args.Task.JMin) * (args.Task.IMax - args.Task.IMin); len(args.Cells) < want {
		return core.NewError(core.Invariant, "dispatch.Coordinator.Done",
			fmt.Errorf("worker returned %d cells, want %d", len(args.Cells), want))
	}
	l.fulfilled = true

	idx := 0
	for j := args.Task.JMin; j < args.Task.JMax; j++ {
		for i := args.Task.IMin; i < args.Task.IMax; i++ {
			*c.grid.At(i, j) = args.Cells[idx]
			idx++
		}
	}
	return nil
}

// Drained reports whether every task has a fulfilled lease and no
// range remains pending, i.e. the run is complete.
func (c *Coordinator) Drained() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) > 0 {
		return false
	}
	for _, l := range c.leases {
		if !l.fulfilled {
			return false
		}
	}
	return true
}

// Serve registers the Coordinator on a private net/rpc server and
// accepts connections on addr until the caller closes the returned
// listener.
func Serve(addr string, coord *Coordinator) (net.Listener, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("Coordinator", coord); err != nil {
		return nil, core.NewError(core.Configuration, "dispatch.Serve", err)
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, core.NewError(core.Configuration, "dispatch.Serve", err)
	}
	go srv.Accept(lis)
	return lis, nil
}

func sliceRange(impact [][16]float64, task PixelTask, width int) [][16]float64 {
	out := make([][16]float64, 0, (task.JMax-task.JMin)*(task.IMax-task.IMin))
	for j := task.JMin; j < task.JMax; j++ {
		for i := task.IMin; i < task.IMax; i++ {
			out = append(out, impact[j*width+i])
		}
	}
	return out
}

// RunWorker implements the §5 worker side: it connects to addr, loops
// `ready`/`give_task`/`raytrace_done` until the coordinator replies
// `terminate`, tracing every pixel in each assigned range against scn
// (or, in re-render mode, recomputing radiative transfer from the
// range's supplied impact coordinates).
func RunWorker(addr string, scn *scenery.Scenery) error {
	client, err := rpc.Dial("tcp", addr)
	if err != nil {
		return core.NewError(core.Configuration, "dispatch.RunWorker", err)
	}
	defer client.Close()

	workerID := uuid.New()
	for {
		readyArgs := ReadyArgs{WorkerID: workerID}
		var reply TaskReply
		if err := client.Call("Coordinator.Ready", &readyArgs, &reply); err != nil {
			return core.NewError(core.Invariant, "dispatch.RunWorker", err)
		}
		if reply.Tag == TagTerminate {
			return nil
		}
		if reply.Tag != TagGiveTask {
			return core.NewError(core.Invariant, "dispatch.RunWorker",
				fmt.Errorf("unexpected tag %q from coordinator", reply.Tag))
		}

		cells, err := workOnTask(scn, reply)
		if err != nil {
			log.Printf("grtrace worker %s: task %d failed: %v", workerID, reply.Task.TaskID, err)
			continue // do not report done; the coordinator will reissue after leaseTimeout
		}

		doneArgs := DoneArgs{WorkerID: workerID, Task: reply.Task, Cells: cells}
		var ack Ack
		if err := client.Call("Coordinator.Done", &doneArgs, &ack); err != nil {
			return core.NewError(core.Invariant, "dispatch.RunWorker", err)
		}
	}
}

func workOnTask(scn *scenery.Scenery, reply TaskReply) ([]core.Properties, error) {
	task := reply.Task
	n := (task.JMax - task.JMin) * (task.IMax - task.IMin)
	cells := make([]core.Properties, 0, n)

	if reply.ImpactTag == TagImpactCoords {
		idx := 0
		for j := task.JMin; j < task.JMax; j++ {
			for i := task.IMin; i < task.IMax; i++ {
				props := core.NewProperties(scn.Quantities, scn.NSpectral)
				coords := reply.Impact[idx]
				idx++
				if coords == ([16]float64{}) {
					props.FillNoHit()
				} else {
					if err := astrobj.Recompute(scn.Astrobj, coords, scn.Metric.CoordKind(), props); err != nil {
						return nil, err
					}
				}
				cells = append(cells, *props)
			}
		}
		return cells, nil
	}

	grid := NewGrid(task.IMax-task.IMin, task.JMax-task.JMin, scn.Quantities, scn.NSpectral)
	if err := runPixelTaskLocal(scn, task, grid); err != nil {
		return nil, err
	}
	for lj := 0; lj < grid.Height; lj++ {
		for li := 0; li < grid.Width; li++ {
			cells = append(cells, *grid.At(li, lj))
		}
	}
	return cells, nil
}

// runPixelTaskLocal is runPixelTask adapted to a task-local grid
// indexed from (0,0) rather than the full scene's (IMin,JMin) origin,
// since a distributed worker never sees the full output Grid.
func runPixelTaskLocal(scn *scenery.Scenery, task PixelTask, local *Grid) error {
	for j := task.JMin; j < task.JMax; j++ {
		for i := task.IMin; i < task.IMax; i++ {
			if err := tracePixel(scn, i, j, local.At(i-task.IMin, j-task.JMin)); err != nil {
				var ce *core.Error
				if errors.As(err, &ce) && !ce.Kind.Fatal() {
					continue
				}
				return err
			}
		}
	}
	return nil
}

