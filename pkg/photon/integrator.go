package photon

import (
	"fmt"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
)

// StepGovernor is §4.4's cooperative step-size governor: given the
// photon's current position, it returns the largest step the active
// geometric emitter permits there (math.Inf(1) when no bound applies).
// A nil StepGovernor means no emitter-side bound is active.
type StepGovernor func(pos core.Position4) float64

// Integrator is the closed-vocabulary stepper interface behind every
// integrator kind listed in §4.3: Legacy and the four embedded-RK
// tableaus all share this one contract, so the photon state machine in
// photon.go never branches on which was selected.
type Integrator interface {
	// Step attempts one step of at most delta from state under m,
	// returning the proposed next state, the step size to use next,
	// and whether the step was accepted. governor, when non-nil, is
	// consulted on every adaptive step in addition to tune's own
	// DeltaMax/DeltaMaxOverR bounds (§4.4); with tune.Adaptive false the
	// embedded-RK integrators apply none of these bounds. A non-nil error is always
	// fatal to the current pixel (IntegratorStalled or a metric-raised
	// error propagated from RHS).
	Step(m metric.Metric, state core.State8, delta float64, tune Tuning, governor StepGovernor) (next core.State8, nextDelta float64, accepted bool, err error)
}

// NewIntegrator resolves an IntegratorKind to a concrete Integrator.
// Legacy requires m to implement metric.LegacyStepper; any other
// metric combined with Legacy is a Configuration error, per the design
// decision recorded for pkg/scenery.
func NewIntegrator(kind IntegratorKind, m metric.Metric) (Integrator, error) {
	switch kind {
	case Legacy:
		stepper, ok := m.(metric.LegacyStepper)
		if !ok {
			return nil, core.NewError(core.Configuration, "photon.NewIntegrator",
				fmt.Errorf("metric %q does not implement LegacyStepper, required by Integrator=Legacy", m.Kind()))
		}
		return &legacyIntegrator{stepper: stepper}, nil
	case RungeKuttaCashKarp54:
		return &rkIntegrator{tbl: cashKarp54Tableau}, nil
	case RungeKuttaCashKarp54Classic:
		return &rkIntegrator{tbl: cashKarp54Tableau, classic: true}, nil
	case RungeKuttaDopri5:
		return &rkIntegrator{tbl: dopri5Tableau}, nil
	case RungeKuttaFehlberg78:
		return &rkIntegrator{tbl: fehlberg78Tableau}, nil
	default:
		return nil, core.NewError(core.Configuration, "photon.NewIntegrator", fmt.Errorf("unknown integrator %q", kind))
	}
}
