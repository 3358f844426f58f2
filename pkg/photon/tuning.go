package photon

// IntegratorKind names one of the closed vocabulary of integrators
// §4.3 allows a Scenery to select.
type IntegratorKind string

const (
	Legacy                     IntegratorKind = "Legacy"
	RungeKuttaFehlberg78       IntegratorKind = "runge_kutta_fehlberg78"
	RungeKuttaCashKarp54       IntegratorKind = "runge_kutta_cash_karp54"
	RungeKuttaDopri5           IntegratorKind = "runge_kutta_dopri5"
	RungeKuttaCashKarp54Classic IntegratorKind = "runge_kutta_cash_karp54_classic"
)

// Tuning carries the step-control parameters of §4.3, all given
// language-neutral meaning there: initial step size, adaptive on/off,
// absolute/relative tolerance, step bounds, iteration and time caps,
// and whether tracing may stop at the first impact.
type Tuning struct {
	Delta         float64
	Adaptive      bool
	Integrator    IntegratorKind
	AbsTol        float64
	RelTol        float64
	DeltaMax      float64
	DeltaMaxOverR float64
	DeltaMin      float64
	Maxiter       int
	MinimumTime   float64
	PrimaryOnly   bool
}

// DefaultTuning mirrors Gyoto's own defaults: a small initial step,
// adaptive stepping on, a generous iteration cap, and the Legacy
// integrator (the metric's own adaptive RK4) unless the scenery
// requests one of the embedded-RK tableaus by name.
func DefaultTuning() Tuning {
	return Tuning{
		Delta:         0.01,
		Adaptive:      true,
		Integrator:    Legacy,
		AbsTol:        1e-6,
		RelTol:        1e-6,
		DeltaMax:      1.0,
		DeltaMaxOverR: 0.5,
		DeltaMin:      1e-6,
		Maxiter:       100000,
		MinimumTime:   0,
		PrimaryOnly:   false,
	}
}

// Option mutates a Tuning in place; constructors over Tuning follow
// the functional-options idiom used throughout this codebase's
// constructors (e.g. pkg/scenery.New).
type Option func(*Tuning)

func WithDelta(d float64) Option             { return func(t *Tuning) { t.Delta = d } }
func WithAdaptive(a bool) Option             { return func(t *Tuning) { t.Adaptive = a } }
func WithIntegrator(k IntegratorKind) Option { return func(t *Tuning) { t.Integrator = k } }
func WithAbsTol(v float64) Option            { return func(t *Tuning) { t.AbsTol = v } }
func WithRelTol(v float64) Option            { return func(t *Tuning) { t.RelTol = v } }
func WithDeltaMax(v float64) Option          { return func(t *Tuning) { t.DeltaMax = v } }
func WithDeltaMaxOverR(v float64) Option     { return func(t *Tuning) { t.DeltaMaxOverR = v } }
func WithDeltaMin(v float64) Option          { return func(t *Tuning) { t.DeltaMin = v } }
func WithMaxiter(n int) Option               { return func(t *Tuning) { t.Maxiter = n } }
func WithMinimumTime(v float64) Option       { return func(t *Tuning) { t.MinimumTime = v } }
func WithPrimaryOnly(b bool) Option          { return func(t *Tuning) { t.PrimaryOnly = b } }

// NewTuning builds a Tuning from DefaultTuning with opts applied.
func NewTuning(opts ...Option) Tuning {
	t := DefaultTuning()
	for _, opt := range opts {
		opt(&t)
	}
	return t
}
