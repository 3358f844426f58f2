package photon

import (
	"math"
	"testing"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
)

func TestPhotonSeedTransitionsToSeeded(t *testing.T) {
	m := metric.NewMinkowski(core.Cartesian)
	tune := NewTuning(WithIntegrator(RungeKuttaCashKarp54), WithDelta(0.5), WithMaxiter(10))
	ph, err := New(m, tune)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ph.Seed(core.Position4{0, 0, 0, 0}, core.Position4{1, 1, 0, 0})
	if ph.Status() != Seeded {
		t.Fatalf("Status() = %v, want Seeded", ph.Status())
	}
}

func TestPhotonIntegratesRadialNullRay(t *testing.T) {
	m := metric.NewMinkowski(core.Cartesian)
	tune := NewTuning(WithIntegrator(RungeKuttaCashKarp54), WithDelta(0.1), WithMaxiter(5), WithAdaptive(false))
	ph, err := New(m, tune)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ph.Seed(core.Position4{0, 0, 0, 0}, core.Position4{-1, 1, 0, 0})

	err = ph.Run(nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ph.Status() != TerminatedNormal {
		t.Fatalf("Status() = %v, want TerminatedNormal", ph.Status())
	}
	if ph.WorldLine().Len() != 6 {
		t.Fatalf("WorldLine().Len() = %d, want 6 (seed + 5 steps)", ph.WorldLine().Len())
	}
	last, err := ph.GetCoordAt(ph.WorldLine().Len() - 1)
	if err != nil {
		t.Fatalf("GetCoordAt: %v", err)
	}
	if math.Abs(last[1]-0.5) > 1e-9 {
		t.Errorf("final x = %g, want 0.5 (5 steps of 0.1 along +x)", last[1])
	}
}

func TestPhotonRunStopsOnPrimaryOnlyCallback(t *testing.T) {
	m := metric.NewMinkowski(core.Cartesian)
	tune := NewTuning(WithIntegrator(RungeKuttaCashKarp54), WithDelta(0.1), WithMaxiter(100), WithAdaptive(false))
	ph, err := New(m, tune)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ph.Seed(core.Position4{0, 0, 0, 0}, core.Position4{-1, 1, 0, 0})

	calls := 0
	err = ph.Run(func(prev, curr core.State8) bool {
		calls++
		return calls == 1
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 1 {
		t.Errorf("onStep called %d times, want 1", calls)
	}
	if ph.Status() != TerminatedNormal {
		t.Errorf("Status() = %v, want TerminatedNormal", ph.Status())
	}
}

func TestPhotonCloneIsIndependent(t *testing.T) {
	m := metric.NewMinkowski(core.Cartesian)
	tune := NewTuning(WithIntegrator(RungeKuttaCashKarp54), WithDelta(0.1), WithMaxiter(3), WithAdaptive(false))
	ph, err := New(m, tune)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ph.Seed(core.Position4{0, 0, 0, 0}, core.Position4{-1, 1, 0, 0})
	if err := ph.Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	clone, err := ph.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	clone.Seed(core.Position4{0, 0, 0, 0}, core.Position4{-1, 0, 1, 0})
	if err := clone.Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	origLast, _ := ph.GetCoordAt(ph.WorldLine().Len() - 1)
	cloneLast, _ := clone.GetCoordAt(clone.WorldLine().Len() - 1)
	if origLast == cloneLast {
		t.Errorf("clone mutated the original photon's worldline")
	}
}

func TestPhotonStepGovernorClampsStepSize(t *testing.T) {
	m := metric.NewMinkowski(core.Cartesian)
	tune := NewTuning(WithIntegrator(RungeKuttaCashKarp54), WithDelta(1), WithMaxiter(1),
		WithAbsTol(1e-3), WithRelTol(1e-3))
	ph, err := New(m, tune)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ph.Seed(core.Position4{0, 0, 0, 0}, core.Position4{-1, 1, 0, 0})
	ph.SetStepGovernor(func(pos core.Position4) float64 { return 0.02 })

	if _, err := ph.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if ph.delta > 0.02 {
		t.Errorf("delta = %g after a step, want <= 0.02 (the installed governor's bound)", ph.delta)
	}
}

func TestPhotonRejectsLegacyWithoutLegacyStepper(t *testing.T) {
	m := metric.NewMinkowski(core.Cartesian)
	tune := NewTuning(WithIntegrator(Legacy))
	if _, err := New(m, tune); err == nil {
		t.Errorf("expected Configuration error: Minkowski has no LegacyStep")
	}
}
