package dispatch

import (
	"testing"
	"time"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/google/uuid"
)

func TestCoordinatorReadyGiveTaskThenTerminate(t *testing.T) {
	grid := NewGrid(2, 2, core.Quantities(0).With(core.QuantityIntensity), 0)
	tasks := tileRows(0, 2, 0, 2, 2)
	coord := NewCoordinator("scene.xml", tasks, grid, nil)

	var reply TaskReply
	if err := coord.Ready(&ReadyArgs{WorkerID: uuid.New()}, &reply); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if reply.Tag != TagGiveTask {
		t.Fatalf("Tag = %q, want %q", reply.Tag, TagGiveTask)
	}
	if reply.ImpactTag != TagNoImpactCoords {
		t.Errorf("ImpactTag = %q, want %q for a non-replay run", reply.ImpactTag, TagNoImpactCoords)
	}

	doneArgs := DoneArgs{Task: reply.Task, Cells: make([]core.Properties, (reply.Task.JMax-reply.Task.JMin)*(reply.Task.IMax-reply.Task.IMin))}
	var ack Ack
	if err := coord.Done(&doneArgs, &ack); err != nil {
		t.Fatalf("Done: %v", err)
	}

	// Drain remaining tasks.
	for !coord.Drained() {
		var r TaskReply
		if err := coord.Ready(&ReadyArgs{WorkerID: uuid.New()}, &r); err != nil {
			t.Fatalf("Ready: %v", err)
		}
		if r.Tag == TagTerminate {
			t.Fatalf("coordinator signalled terminate before every lease was fulfilled")
		}
		d := DoneArgs{Task: r.Task, Cells: make([]core.Properties, (r.Task.JMax-r.Task.JMin)*(r.Task.IMax-r.Task.IMin))}
		if err := coord.Done(&d, &ack); err != nil {
			t.Fatalf("Done: %v", err)
		}
	}

	var final TaskReply
	if err := coord.Ready(&ReadyArgs{WorkerID: uuid.New()}, &final); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if final.Tag != TagTerminate {
		t.Errorf("Tag = %q, want %q once drained", final.Tag, TagTerminate)
	}
}

func TestCoordinatorReissuesTimedOutLease(t *testing.T) {
	grid := NewGrid(1, 1, core.Quantities(0).With(core.QuantityIntensity), 0)
	tasks := []PixelTask{{IMin: 0, IMax: 1, JMin: 0, JMax: 1, TaskID: 0}}
	coord := NewCoordinator("scene.xml", tasks, grid, nil)

	var first TaskReply
	if err := coord.Ready(&ReadyArgs{WorkerID: uuid.New()}, &first); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if first.Tag != TagGiveTask {
		t.Fatalf("expected the sole task to be handed out first")
	}

	coord.leases[0].assigned = time.Now().Add(-2 * leaseTimeout) // simulate a dead worker

	var second TaskReply
	if err := coord.Ready(&ReadyArgs{WorkerID: uuid.New()}, &second); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if second.Tag != TagGiveTask {
		t.Errorf("Tag = %q, want %q: the timed-out lease should be reissued", second.Tag, TagGiveTask)
	}
	if second.Task != tasks[0] {
		t.Errorf("reissued task = %+v, want %+v", second.Task, tasks[0])
	}
}

func TestCoordinatorIgnoresDuplicateDone(t *testing.T) {
	grid := NewGrid(1, 1, core.Quantities(0).With(core.QuantityIntensity), 0)
	tasks := []PixelTask{{IMin: 0, IMax: 1, JMin: 0, JMax: 1, TaskID: 0}}
	coord := NewCoordinator("scene.xml", tasks, grid, nil)

	var reply TaskReply
	_ = coord.Ready(&ReadyArgs{WorkerID: uuid.New()}, &reply)

	var ack Ack
	want := 42.0
	cells := []core.Properties{{Intensity: &want}}
	if err := coord.Done(&DoneArgs{Task: reply.Task, Cells: cells}, &ack); err != nil {
		t.Fatalf("Done: %v", err)
	}
	other := 7.0
	if err := coord.Done(&DoneArgs{Task: reply.Task, Cells: []core.Properties{{Intensity: &other}}}, &ack); err != nil {
		t.Fatalf("duplicate Done: %v", err)
	}
	if *grid.At(0, 0).Intensity != want {
		t.Errorf("Intensity = %v, want %v: a duplicate raytrace_done must not overwrite a fulfilled lease", *grid.At(0, 0).Intensity, want)
	}
}
