// Package astrobj implements the emitter (Astrobj) capability set of
// §4.4: two complementary modes — a geometric point-inside predicate
// (FixedStar, Torus) and a tabulated grid (Disk3D) — plus the shared
// Impact algorithm that drives radiative-transfer accumulation between
// two adjacent worldline samples.
package astrobj

import (
	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
)

// Astrobj is the capability set every concrete emitter satisfies,
// regardless of mode.
type Astrobj interface {
	Kind() string

	// OpticallyThin forces the absorption coefficient to zero
	// regardless of any tabulated opacity (§4.4: "The emitter's
	// optically-thin flag forces alpha_nu=0 regardless of tabulated
	// opacity").
	OpticallyThin() bool

	// RMax bounds the emitter's support. Impact does not use it: the
	// grid mode's cheap-reject test (§4.4 step 1) uses 2*rout from
	// GridAstrobj.Bounds, and the geometric mode has no cheap reject.
	RMax() float64
}

// GeometricAstrobj is the point-inside-predicate mode of §4.4.
type GeometricAstrobj interface {
	Astrobj

	// Operator returns a signed-squared distance scalar at pos, given
	// the chart pos (and this emitter's own geometry) is expressed in;
	// d² < CriticalValue() means "inside the emitter body".
	Operator(pos core.Position4, coordKind core.CoordKind) float64

	// CriticalValue is the d² threshold below which pos is inside the
	// emitter.
	CriticalValue() float64

	// SafetyValue is the d² threshold below which the integrator's
	// step must be bounded by DeltaMax, even if pos is not yet inside.
	SafetyValue() float64

	// DeltaMax returns the maximum integrator step permitted at pos,
	// typically 0.1*sqrt(d²) clamped to the safety shell (§4.4). This is
	// the cooperative step-size governor the integrator consults on
	// every adaptive step while this emitter is active (fixed-step
	// integration does not consult it).
	DeltaMax(pos core.Position4, coordKind core.CoordKind) float64

	// EmissionCoefficient and AbsorptionCoefficient give this
	// emitter's local radiative properties at pos and frequency nu.
	EmissionCoefficient(pos core.Position4, nu float64) float64
	AbsorptionCoefficient(pos core.Position4, nu float64) float64

	// Velocity returns the emitting matter's spatial 4-velocity
	// components at pos (promoted to a full 4-velocity via the
	// metric's SysPrimeToTdot).
	Velocity(m metric.Metric, pos core.Position4) ([3]float64, error)
}

// GridAstrobj is the tabulated 4-D emitter mode of §3/§4.4 (e.g.
// Disk3D).
type GridAstrobj interface {
	Astrobj

	// Bounds returns the grid's radial and vertical extent, used by
	// Impact's cheap-reject test and its inside-the-box test.
	Bounds() (rin, rout, zmin, zmax float64)

	// GetIndices resolves a 4-position and frequency to grid cell
	// indices, per §4.4's bit-exact semantics. coordKind selects how
	// pos is converted to cylindrical coordinates.
	GetIndices(pos core.Position4, nu float64, coordKind core.CoordKind) (iNu, iPhi, iZ, iR int, err error)

	// EmissionCoefficient and AbsorptionCoefficient look up the
	// tabulated j_nu/alpha_nu at the given grid cell.
	EmissionCoefficient(iNu, iPhi, iZ, iR int) float64
	AbsorptionCoefficient(iNu, iPhi, iZ, iR int) float64

	// CellVelocity returns the tabulated (phi', z', r') at the given
	// grid cell (frequency-independent).
	CellVelocity(iPhi, iZ, iR int) [3]float64
}
