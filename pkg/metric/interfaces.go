// Package metric implements the capability set a space-time model must
// provide (§4.2): coordinate kind, geodesic right-hand side, circular
// orbit velocity, and the normalization used to derive the timelike
// component of a matter 4-velocity. Concrete metrics (Minkowski, Kerr in
// Boyer-Lindquist form) are capability records rather than a class
// hierarchy, per the design notes' re-expression of Gyoto's virtual
// dispatch as a tagged interface.
package metric

import "github.com/arlowen/grtrace/pkg/core"

// Metric is the polymorphic capability set every concrete space-time
// must satisfy.
type Metric interface {
	// Kind names the concrete metric, for diagnostics and Configuration
	// error messages (not part of §4.2's closed operation set, but every
	// concrete metric has one).
	Kind() string

	// CoordKind reports the chart this metric's positions are expressed
	// in.
	CoordKind() core.CoordKind

	// RHS evaluates the geodesic right-hand side: the returned State8's
	// position half is dx^mu/dlambda and momentum half is dp_mu/dlambda.
	RHS(state core.State8) (core.State8, error)

	// CircularVelocity returns the 4-velocity of a circular geodesic
	// orbit at pos, used by emitters whose matter is assumed to rotate
	// on circular geodesics (e.g. a thin Keplerian disk).
	CircularVelocity(pos core.Position4) (core.Velocity4, error)

	// SysPrimeToTdot solves g(u,u) = targetNorm for dt/dlambda given the
	// spatial components of a 4-vector at pos. Two callers use this
	// with two different targets: the screen seeds a photon's initial
	// momentum with targetNorm=0 (null), while an emitter promoting a
	// tabulated spatial velocity field to a full 4-velocity always
	// passes targetNorm=-1 (timelike, per §4.4's invariant that matter
	// 4-velocities are never null). Of the two roots of the resulting
	// quadratic, the one with dt/dlambda > 0 is returned.
	SysPrimeToTdot(pos core.Position4, sPrime [3]float64, targetNorm float64) (float64, error)

	// Norm returns the metric contraction g(p,p) for a full state's
	// momentum half. An accepted integrator step must keep |Norm| within
	// the configured tolerance (§8): it is the null-geodesic invariant
	// the integrator checks every step.
	Norm(state core.State8) float64

	// Sink is the terminal-event predicate the integrator consults every
	// step: true once pos has crossed the metric's horizon/singularity
	// (§4.3's Terminated-horizon transition). A metric with no sink
	// (e.g. flat space) always returns false.
	Sink(pos core.Position4) bool

	// ThreadSafe reports whether this metric's RHS/Sink/etc. may be
	// called concurrently from multiple goroutines against the same
	// instance without synchronization. A metric that answers false
	// forces the dispatcher to fall back to single-threaded execution
	// (§5).
	ThreadSafe() bool

	// Clone returns an independent copy suitable for a per-pixel worker
	// to own exclusively, mirroring §3's ownership rule ("Each pixel's
	// worker holds shared (read-only) references to metric and emitter
	// and exclusively owns its photon clone"): a thread-safe metric may
	// return itself.
	Clone() Metric
}

// LegacyStepper is the optional capability a metric exposes for the
// "Legacy" integrator, which §4.3 says "delegates to the metric's own
// adaptive RK4" rather than using one of the shared embedded-RK
// tableaus in pkg/photon. A metric that does not implement this cannot
// be combined with Integrator=Legacy; pkg/scenery rejects that
// combination as a Configuration error at construction time.
type LegacyStepper interface {
	Metric

	// LegacyStep attempts one adaptive RK4 step of at most `delta` from
	// state. It returns the proposed next state, the step size to use
	// next (grown or shrunk per the metric's own step-control policy),
	// and whether the step was accepted.
	LegacyStep(state core.State8, delta float64, tol core.StepTolerances) (next core.State8, nextDelta float64, accepted bool, err error)
}
