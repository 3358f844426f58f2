package photon

import (
	"fmt"
	"math"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
)

// rkIntegrator is the shared embedded-Runge-Kutta engine behind every
// named integrator in §4.3 except Legacy: one Butcher tableau, one
// step-acceptance policy. "classic" selects the older, more
// conservative step-growth factor some callers request for
// runge_kutta_cash_karp54_classic (same coefficients as
// runge_kutta_cash_karp54, different step-control policy, per the
// spec's closed integrator vocabulary listing them as distinct names).
type rkIntegrator struct {
	tbl     tableau
	classic bool
}

const (
	stepShrinkFactor = 0.25
	stepGrowFactor   = 4.0
	stepSafety       = 0.9
)

// Step advances state by at most delta using this integrator's
// tableau, per §4.3's step-acceptance rule: the local error estimate's
// infinity norm must be <= max(AbsTol, RelTol*|state|). On rejection,
// delta shrinks by the standard factor, and a rejected step taken at
// |delta| <= tune.DeltaMin is returned as an IntegratorStalled error.
// With tune.Adaptive false, the step is always accepted at delta and
// neither the error estimate nor maxStep's bounds are applied.
func (r *rkIntegrator) Step(m metric.Metric, state core.State8, delta float64, tune Tuning, governor StepGovernor) (core.State8, float64, bool, error) {
	tbl := r.tbl
	var k [13]core.State8

	for stage := 0; stage < tbl.stages; stage++ {
		trial := state
		for j := 0; j < stage; j++ {
			coeff := tbl.a[stage][j]
			if coeff == 0 {
				continue
			}
			trial = addScaled(trial, k[j], delta*coeff)
		}
		rhs, err := m.RHS(trial)
		if err != nil {
			return core.State8{}, delta, false, err
		}
		k[stage] = rhs
	}

	var y, yStar core.State8
	y = state
	yStar = state
	for stage := 0; stage < tbl.stages; stage++ {
		y = addScaled(y, k[stage], delta*tbl.b[stage])
		yStar = addScaled(yStar, k[stage], delta*tbl.bStar[stage])
	}

	errNorm := 0.0
	for i := 0; i < 8; i++ {
		scale := math.Max(tune.AbsTol, tune.RelTol*math.Abs(state[i]))
		if scale == 0 {
			scale = tune.AbsTol
		}
		if scale == 0 {
			scale = 1
		}
		e := math.Abs(y[i]-yStar[i]) / scale
		if e > errNorm {
			errNorm = e
		}
	}

	if !tune.Adaptive {
		return y, delta, true, nil
	}

	if errNorm == 0 {
		return y, math.Min(delta*stepGrowFactor, maxStep(tune, state, governor)), true, nil
	}

	factor := stepSafety * math.Pow(1/errNorm, 1.0/float64(tbl.order))
	if r.classic {
		// The "classic" policy clamps growth more conservatively, the
		// way older Cash-Karp step controllers do, trading some
		// efficiency for fewer rejected steps on stiff geodesics near
		// the horizon.
		factor = math.Min(factor, 2.0)
	}
	factor = math.Max(stepShrinkFactor, math.Min(stepGrowFactor, factor))
	nextDelta := delta * factor
	nextDelta = math.Min(nextDelta, maxStep(tune, state, governor))

	if errNorm <= 1 {
		return y, nextDelta, true, nil
	}

	if math.Abs(delta) <= tune.DeltaMin {
		return core.State8{}, delta, false, core.NewError(core.IntegratorStalled, "rkIntegrator.Step",
			fmt.Errorf("step shrank to DeltaMin=%g without meeting tolerance (err=%g)", tune.DeltaMin, errNorm))
	}

	return state, nextDelta, false, nil
}

// maxStep clamps a proposed step to the tuning's DeltaMax and, if set,
// to DeltaMaxOverR times the current radial coordinate (§4.3), and
// further to governor(state.Pos()) when a geometric emitter's
// cooperative step-size governor is active (§4.4). Step consults it on
// every adaptive step; fixed-step integration (Adaptive false) does not
// call it, so no DeltaMax, DeltaMaxOverR or governor bound applies there.
func maxStep(tune Tuning, state core.State8, governor StepGovernor) float64 {
	max := tune.DeltaMax
	if max == 0 {
		max = math.Inf(1)
	}
	if tune.DeltaMaxOverR > 0 {
		r := math.Abs(state[1])
		if r > 0 {
			max = math.Min(max, tune.DeltaMaxOverR*r)
		}
	}
	if governor != nil {
		max = math.Min(max, governor(state.Pos()))
	}
	return max
}

func addScaled(s, k core.State8, scale float64) core.State8 {
	var out core.State8
	for i := 0; i < 8; i++ {
		out[i] = s[i] + scale*k[i]
	}
	return out
}
