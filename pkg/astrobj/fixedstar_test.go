package astrobj

import (
	"math"
	"testing"

	"github.com/arlowen/grtrace/pkg/core"
)

func TestFixedStarOperatorInsideOutside(t *testing.T) {
	s := &FixedStar{Center: core.Position4{0, 0, 0, 0}, Radius: 12, Thin: true}
	inside := s.Operator(core.Position4{0, 5, 0, 0}, core.Cartesian)
	outside := s.Operator(core.Position4{0, 20, 0, 0}, core.Cartesian)
	if inside >= s.CriticalValue() {
		t.Errorf("expected inside point to have d² < CriticalValue")
	}
	if outside < s.CriticalValue() {
		t.Errorf("expected outside point to have d² >= CriticalValue")
	}
}

func TestFixedStarAbsorptionZeroWhenThin(t *testing.T) {
	s := &FixedStar{Center: core.Position4{}, Radius: 12, Thin: true, OpacityCoeff: 1e-2}
	if got := s.AbsorptionCoefficient(core.Position4{0, 5, 0, 0}, 1); got != 0 {
		t.Errorf("AbsorptionCoefficient = %g, want 0 for an optically thin star", got)
	}
}

func TestFixedStarDeltaMaxUnboundedFarAway(t *testing.T) {
	s := &FixedStar{Center: core.Position4{}, Radius: 12}
	if got := s.DeltaMax(core.Position4{0, 1000, 0, 0}, core.Cartesian); !math.IsInf(got, 1) {
		t.Errorf("DeltaMax() = %g, want +Inf far from the safety shell", got)
	}
}

// TestFixedStarOperatorSphericalMatchesCartesian checks that a point at
// spherical (r, theta, phi) reports the same d² as its Cartesian
// equivalent: treating (r, theta, phi) as if it were already (x, y, z)
// would instead mix a radius with two angles and corrupt the result.
func TestFixedStarOperatorSphericalMatchesCartesian(t *testing.T) {
	s := &FixedStar{Center: core.Position4{0, 0, 0, 0}, Radius: 12}

	r, theta, phi := 20.0, math.Pi/3, math.Pi/5
	spherical := core.Position4{0, r, theta, phi}
	x := r * math.Sin(theta) * math.Cos(phi)
	y := r * math.Sin(theta) * math.Sin(phi)
	z := r * math.Cos(theta)
	cartesian := core.Position4{0, x, y, z}

	got := s.Operator(spherical, core.Spherical)
	want := s.Operator(cartesian, core.Cartesian)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Operator(spherical) = %g, want %g (the Cartesian-equivalent point's d²)", got, want)
	}

	// A point at r=12 on the star's surface must read as exactly on the
	// boundary (d² == 0) regardless of theta/phi, which a component-wise
	// subtraction of (r, theta, phi) would not guarantee.
	onSurface := core.Position4{0, s.Radius, math.Pi / 4, 1.2}
	if d2 := s.Operator(onSurface, core.Spherical); math.Abs(d2) > 1e-9 {
		t.Errorf("Operator(on surface) = %g, want ~0", d2)
	}
}
