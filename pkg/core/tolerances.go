package core

// StepTolerances carries the subset of a Scenery's tuning parameters a
// Metric's own legacy stepper needs to run its adaptive RK4 (§4.3,
// "Legacy — delegates to the metric's own adaptive RK4"). Kept in core
// rather than pkg/photon so pkg/metric can depend on it without an
// import cycle against pkg/photon.
type StepTolerances struct {
	AbsTol        float64
	RelTol        float64
	DeltaMin      float64
	DeltaMax      float64
	DeltaMaxOverR float64
}
