package photon

import (
	"math"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
)

// legacyIntegrator delegates every step to the metric's own adaptive
// RK4, per §4.3's "Legacy — delegates to the metric's own adaptive
// RK4". It exists purely to give Integrator=Legacy the same Step
// contract as the embedded-RK integrators in rk.go.
type legacyIntegrator struct {
	stepper metric.LegacyStepper
}

func (l *legacyIntegrator) Step(m metric.Metric, state core.State8, delta float64, tune Tuning, governor StepGovernor) (core.State8, float64, bool, error) {
	next, nextDelta, accepted, err := l.stepper.LegacyStep(state, delta, core.StepTolerances{
		AbsTol:        tune.AbsTol,
		RelTol:        tune.RelTol,
		DeltaMin:      tune.DeltaMin,
		DeltaMax:      tune.DeltaMax,
		DeltaMaxOverR: tune.DeltaMaxOverR,
	})
	if err != nil {
		return core.State8{}, delta, false, err
	}
	if governor != nil {
		nextDelta = math.Min(nextDelta, governor(state.Pos()))
	}
	return next, nextDelta, accepted, nil
}
