package metric

import (
	"math"
	"testing"

	"github.com/arlowen/grtrace/pkg/core"
)

func TestMinkowskiCartesianRadialNull(t *testing.T) {
	m := NewMinkowski(core.Cartesian)
	s := core.State8{0, 0, 0, 0, 1, 1, 0, 0}
	if got := m.Norm(s); math.Abs(got) > 1e-12 {
		t.Errorf("Norm() = %g, want 0 for a null ray", got)
	}
	rhs, err := m.RHS(s)
	if err != nil {
		t.Fatalf("RHS: %v", err)
	}
	want := core.State8{-1, 1, 0, 0, 0, 0, 0, 0}
	if rhs != want {
		t.Errorf("RHS() = %v, want %v", rhs, want)
	}
}

func TestMinkowskiSphericalOutwardNull(t *testing.T) {
	m := NewMinkowski(core.Spherical)
	s := core.State8{0, 5, math.Pi / 2, 0, 1, 1, 0, 0}
	if got := m.Norm(s); math.Abs(got) > 1e-10 {
		t.Errorf("Norm() = %g, want 0 for a null ray", got)
	}
	rhs, err := m.RHS(s)
	if err != nil {
		t.Fatalf("RHS: %v", err)
	}
	if rhs[1] != 1 {
		t.Errorf("dr/dlambda = %g, want 1", rhs[1])
	}
}

func TestMinkowskiSinkAlwaysFalse(t *testing.T) {
	m := NewMinkowski(core.Spherical)
	if m.Sink(core.Position4{0, 0, 0, 0}) {
		t.Errorf("flat space should never sink")
	}
}

func TestMinkowskiSysPrimeToTdotStaticObserver(t *testing.T) {
	m := NewMinkowski(core.Cartesian)
	got, err := m.SysPrimeToTdot(core.Position4{}, [3]float64{0, 0, 0}, -1)
	if err != nil {
		t.Fatalf("SysPrimeToTdot: %v", err)
	}
	if got != 1 {
		t.Errorf("SysPrimeToTdot(static) = %g, want 1", got)
	}
}
