package astrobj

import (
	"math"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
)

// FixedStar is the geometric-predicate emitter of scenario 1: a static
// sphere of radius Radius centered on Center, with power-law emission
// and absorption coefficients j_nu = EmissivityCoeff*nu^EmissivityExp
// and alpha_nu = OpacityCoeff*nu^OpacityExp.
type FixedStar struct {
	Center core.Position4
	Radius float64

	Thin bool

	EmissivityCoeff, EmissivityExp float64
	OpacityCoeff, OpacityExp       float64
}

func (s *FixedStar) Kind() string         { return "FixedStar" }
func (s *FixedStar) OpticallyThin() bool  { return s.Thin }
func (s *FixedStar) RMax() float64        { return s.Radius }
func (s *FixedStar) CriticalValue() float64 { return 0 }
func (s *FixedStar) SafetyValue() float64   { return (1.5 * s.Radius) * (1.5 * s.Radius) - s.Radius*s.Radius }

// Operator returns |pos-Center|^2 - Radius^2 in Euclidean 3-space. Both
// pos and Center are expressed in the metric's own chart, which for a
// Spherical metric means (r, theta, phi): neither is a Cartesian
// coordinate, so a plain component-wise subtraction would mix a radius
// with two angles. Both are converted to Cartesian first.
func (s *FixedStar) Operator(pos core.Position4, coordKind core.CoordKind) float64 {
	x, y, z := core.ToCartesian(pos, coordKind)
	cx, cy, cz := core.ToCartesian(s.Center, coordKind)
	dx, dy, dz := x-cx, y-cy, z-cz
	d2 := dx*dx + dy*dy + dz*dz
	return d2 - s.Radius*s.Radius
}

// DeltaMax bounds the integrator step near the star's surface, per
// §4.4: 0.1*sqrt(d²) once inside the safety shell, unbounded outside.
func (s *FixedStar) DeltaMax(pos core.Position4, coordKind core.CoordKind) float64 {
	d2 := s.Operator(pos, coordKind)
	if d2 > s.SafetyValue() {
		return math.Inf(1)
	}
	return 0.1 * math.Sqrt(math.Max(d2, 0))
}

func (s *FixedStar) EmissionCoefficient(pos core.Position4, nu float64) float64 {
	return s.EmissivityCoeff * math.Pow(nu, s.EmissivityExp)
}

func (s *FixedStar) AbsorptionCoefficient(pos core.Position4, nu float64) float64 {
	if s.Thin {
		return 0
	}
	return s.OpacityCoeff * math.Pow(nu, s.OpacityExp)
}

// Velocity returns a static observer's spatial 4-velocity (zero): a
// FixedStar, as its name says, does not move.
func (s *FixedStar) Velocity(m metric.Metric, pos core.Position4) ([3]float64, error) {
	return [3]float64{0, 0, 0}, nil
}
