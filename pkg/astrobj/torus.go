package astrobj

import (
	"math"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
)

// Torus is a geometric torus in circular rotation, supplemented from
// the original implementation's Torus.C (not present in the
// distilled specification, but a straightforward second instance of
// the geometric-predicate mode worth carrying over): LargeRadius is
// the major radius (tube center to torus center), SmallRadius is the
// minor radius.
type Torus struct {
	LargeRadius float64
	SmallRadius float64

	Thin bool

	EmissivityCoeff, EmissivityExp float64
	OpacityCoeff, OpacityExp       float64
}

func (t *Torus) Kind() string        { return "Torus" }
func (t *Torus) OpticallyThin() bool { return t.Thin }
func (t *Torus) RMax() float64       { return 3 * (t.LargeRadius + t.SmallRadius) }

func (t *Torus) CriticalValue() float64 { return t.SmallRadius * t.SmallRadius }
func (t *Torus) SafetyValue() float64   { return 1.1 * t.CriticalValue() }

// Operator returns the squared distance from the torus's tube,
// drproj²+h², per Torus::operator() in the original implementation:
// drproj is the projected distance in the equatorial plane from the
// tube's centerline, h is height above the equatorial plane. rCyl and
// h come from cylindrical, the same chart-aware conversion gridImpact
// uses, so a Cartesian metric's (x, y, z) is handled identically to a
// Spherical one's (r, theta, phi).
func (t *Torus) Operator(pos core.Position4, coordKind core.CoordKind) float64 {
	rCyl, h, _ := cylindrical(pos, coordKind)
	drproj := rCyl - t.LargeRadius
	return drproj*drproj + h*h
}

// DeltaMax mirrors Torus::deltaMax: 0.1*sqrt(d²), with d² floored at
// CriticalValue so the bound never collapses to zero right at the
// tube's surface.
func (t *Torus) DeltaMax(pos core.Position4, coordKind core.CoordKind) float64 {
	d2 := t.Operator(pos, coordKind)
	if d2 < t.CriticalValue() {
		d2 = t.CriticalValue()
	}
	return 0.1 * math.Sqrt(d2)
}

func (t *Torus) EmissionCoefficient(pos core.Position4, nu float64) float64 {
	return t.EmissivityCoeff * math.Pow(nu, t.EmissivityExp)
}

func (t *Torus) AbsorptionCoefficient(pos core.Position4, nu float64) float64 {
	if t.Thin {
		return 0
	}
	return t.OpacityCoeff * math.Pow(nu, t.OpacityExp)
}

// Velocity projects pos onto the equatorial plane at the same
// cylindrical radius and asks the metric for the circular geodesic
// velocity there, per Torus::getVelocity: the torus's matter is
// assumed Keplerian about the central body.
func (t *Torus) Velocity(m metric.Metric, pos core.Position4) ([3]float64, error) {
	r, theta := pos[1], pos[2]
	var equatorialPos core.Position4
	switch m.CoordKind() {
	case core.Cartesian:
		equatorialPos = core.Position4{pos[0], pos[1], pos[2], 0}
	default:
		equatorialPos = core.Position4{pos[0], r * math.Sin(theta), math.Pi / 2, pos[3]}
	}
	v, err := m.CircularVelocity(equatorialPos)
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{v[1], v[2], v[3]}, nil
}
