package photon

import (
	"errors"
	"math"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
)

// Status is the photon state machine of §4.3:
// Uninitialized -> Seeded -> Integrating -> one of four terminal states.
type Status int

const (
	Uninitialized Status = iota
	Seeded
	Integrating
	TerminatedNormal
	TerminatedStalled
	TerminatedEscape
	TerminatedHorizon
)

func (s Status) Terminal() bool {
	return s >= TerminatedNormal
}

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Seeded:
		return "Seeded"
	case Integrating:
		return "Integrating"
	case TerminatedNormal:
		return "Terminated-normal"
	case TerminatedStalled:
		return "Terminated-stalled"
	case TerminatedEscape:
		return "Terminated-escape"
	case TerminatedHorizon:
		return "Terminated-horizon"
	default:
		return "Unknown"
	}
}

// Photon drives one null geodesic's backward integration. A Scenery
// owns a template Photon; every pixel clones it and integrates its own
// clone exclusively (§3's ownership rule).
type Photon struct {
	m          metric.Metric
	integrator Integrator
	tune       Tuning
	governor   StepGovernor
	worldline  *WorldLine
	status     Status
	delta      float64
	iterations int
	t0         float64
}

// New constructs a Photon bound to metric m with tuning tune. The
// photon starts Uninitialized; call Seed before Step.
func New(m metric.Metric, tune Tuning) (*Photon, error) {
	integ, err := photonIntegrator(m, tune)
	if err != nil {
		return nil, err
	}
	return &Photon{
		m:          m,
		integrator: integ,
		tune:       tune,
		worldline:  &WorldLine{},
		status:     Uninitialized,
		delta:      tune.Delta,
	}, nil
}

func photonIntegrator(m metric.Metric, tune Tuning) (Integrator, error) {
	return NewIntegrator(tune.Integrator, m)
}

// Seed sets the initial 4-position and null 4-momentum, per §4.1's
// pixelRay contract, and transitions Uninitialized -> Seeded.
func (p *Photon) Seed(pos core.Position4, mom core.Position4) {
	s := core.State8{pos[0], pos[1], pos[2], pos[3], mom[0], mom[1], mom[2], mom[3]}
	p.worldline = &WorldLine{}
	p.worldline.Append(s)
	p.status = Seeded
	p.delta = p.tune.Delta
	p.iterations = 0
	p.t0 = s[0]
}

// SetStepGovernor installs the active geometric emitter's cooperative
// step-size governor (§4.4), consulted by the integrator on every
// proposed step from here on. A dispatcher calls this once per cloned
// photon, before Run; nil clears it (no emitter-side bound).
func (p *Photon) SetStepGovernor(g StepGovernor) { p.governor = g }

// Status reports the current state-machine state.
func (p *Photon) Status() Status { return p.status }

// WorldLine exposes the recorded samples; callers must only rely on
// accessors once the photon has reached a terminal or requested-t state
// per §4.3.
func (p *Photon) WorldLine() *WorldLine { return p.worldline }

// GetCoord delegates to the worldline's interpolated lookup.
func (p *Photon) GetCoord(t float64) (core.State8, error) { return p.worldline.GetCoord(t) }

// GetCoordAt delegates to the worldline's indexed lookup.
func (p *Photon) GetCoordAt(index int) (core.State8, error) { return p.worldline.At(index) }

// Step advances the photon by one accepted integration step. It
// returns true once the photon has reached a terminal status; callers
// (the ray-trace dispatcher, which also drives the emitter's Impact
// test between consecutive accepted samples) loop on Step until it
// returns true.
func (p *Photon) Step() (terminal bool, err error) {
	if p.status == Seeded {
		p.status = Integrating
	}
	if p.status != Integrating {
		return true, nil
	}

	last, lastErr := p.worldline.At(p.worldline.Len() - 1)
	if lastErr != nil {
		return true, lastErr
	}

	for {
		next, nextDelta, accepted, stepErr := p.integrator.Step(p.m, last, p.delta, p.tune, p.governor)
		if stepErr != nil {
			var ce *core.Error
			if errors.As(stepErr, &ce) {
				switch ce.Kind {
				case core.IntegratorStalled:
					p.status = TerminatedStalled
					return true, nil
				case core.HorizonReached:
					p.status = TerminatedHorizon
					return true, nil
				case core.EscapeReached:
					p.status = TerminatedEscape
					return true, nil
				}
			}
			return true, stepErr
		}

		if !accepted {
			p.delta = nextDelta
			if math.Abs(p.delta) <= p.tune.DeltaMin {
				p.status = TerminatedStalled
				return true, core.NewError(core.IntegratorStalled, "Photon.Step", nil)
			}
			continue
		}

		p.worldline.Append(next)
		p.iterations++
		p.delta = nextDelta

		if p.m.Sink(next.Pos()) {
			p.status = TerminatedHorizon
			return true, nil
		}
		if p.iterations >= p.tune.Maxiter {
			p.status = TerminatedNormal
			return true, nil
		}
		if p.tune.MinimumTime != 0 && math.Abs(next[0]-p.t0) >= math.Abs(p.tune.MinimumTime) {
			p.status = TerminatedNormal
			return true, nil
		}
		return false, nil
	}
}

// Run steps the photon until it reaches a terminal status, invoking
// onStep after every accepted step with the two most recent samples
// (for the dispatcher's Impact test). onStep returning true ("stop
// here", used for PrimaryOnly) ends the run early with
// TerminatedNormal.
func (p *Photon) Run(onStep func(prev, curr core.State8) (stop bool)) error {
	for {
		n := p.worldline.Len()
		terminal, err := p.Step()
		if err != nil {
			return err
		}
		if p.worldline.Len() > n && onStep != nil {
			prev, _ := p.worldline.At(p.worldline.Len() - 2)
			curr, _ := p.worldline.At(p.worldline.Len() - 1)
			if onStep(prev, curr) {
				p.status = TerminatedNormal
				return nil
			}
		}
		if terminal {
			return nil
		}
	}
}

// Clone returns an independent photon suitable for a pixel worker to
// integrate exclusively, per §3's ownership rule. The underlying
// metric is cloned too (Metric.Clone, a no-op for thread-safe metrics).
func (p *Photon) Clone() (*Photon, error) {
	clonedMetric := p.m.Clone()
	integ, err := photonIntegrator(clonedMetric, p.tune)
	if err != nil {
		return nil, err
	}
	return &Photon{
		m:          clonedMetric,
		integrator: integ,
		tune:       p.tune,
		governor:   p.governor,
		worldline:  p.worldline.Clone(),
		status:     p.status,
		delta:      p.delta,
		iterations: p.iterations,
		t0:         p.t0,
	}, nil
}
