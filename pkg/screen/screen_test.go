package screen

import (
	"math"
	"testing"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
)

func TestPixelRayOutOfRange(t *testing.T) {
	m := metric.NewMinkowski(core.Spherical)
	s := New(m, 0.01, math.Pi/2, 0, 0, 100, 0, 8, 8)
	if _, _, err := s.PixelRay(8, 0); err == nil {
		t.Errorf("expected PixelOutOfRange for i == ResolutionX")
	}
	if _, _, err := s.PixelRay(-1, 0); err == nil {
		t.Errorf("expected PixelOutOfRange for negative i")
	}
}

func TestPixelRayIsNullUnderMinkowski(t *testing.T) {
	m := metric.NewMinkowski(core.Spherical)
	s := New(m, 0.001, math.Pi/2, 0, 0, 100, 0, 4, 4)
	pos0, k0, err := s.PixelRay(2, 2)
	if err != nil {
		t.Fatalf("PixelRay: %v", err)
	}
	state := core.State8{pos0[0], pos0[1], pos0[2], pos0[3], k0[0], k0[1], k0[2], k0[3]}
	if got := m.Norm(state); math.Abs(got) > 1e-6 {
		t.Errorf("Norm(k0) = %g, want ~0 (null)", got)
	}
}

func TestPixelRayCentralPixelPointsInward(t *testing.T) {
	m := metric.NewMinkowski(core.Spherical)
	s := New(m, 0.01, math.Pi/2, 0, 0, 50, 0, 2, 2)
	_, k0, err := s.PixelRay(0, 0)
	if err != nil {
		t.Fatalf("PixelRay: %v", err)
	}
	if k0[1] >= 0 {
		t.Errorf("radial momentum component = %g, want negative (inward)", k0[1])
	}
}
