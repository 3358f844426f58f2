package core

import "math"

// Properties is the per-pixel output accumulator of §4.5: one field per
// requested quantity, written by an emitter's Impact/processHitQuantities
// helper as a ray crosses the emitting region. The dispatcher's output
// Grid holds one Properties per pixel, and tracing writes into that
// pixel's Properties directly (§4.6).
//
// Gyoto's own Properties type holds raw pointers directly into the
// shared output buffer to avoid a per-pixel allocation; this package
// instead gives every pixel its own Properties value (cheap in Go, and
// it keeps "each pixel writes its own slot" an actual type-level
// guarantee rather than a convention about pointer arithmetic); the
// Grid of these values is itself the output buffer.
type Properties struct {
	Requested Quantities

	Intensity      *float64
	EmissionTime   *float64
	MinDistance    *float64
	FirstDistMin   *float64
	Redshift       *float64
	ImpactCoords   *[16]float64 // photon state (8) followed by matter state (8)
	Spectrum       []float64
	BinSpectrum    []float64
	Opacity        *float64
	NbCrossEqPlane *float64

	// FirstLegDone is set once the first inward leg of the trace has
	// completed, so FirstDistMin's running minimum knows when to stop
	// updating (§4.5: "min across only the first inward leg").
	FirstLegDone bool

	hit bool
}

// NewProperties allocates a Properties with exactly the fields named in
// requested non-nil, and nSpectral channels for Spectrum/BinSpectrum
// when those are requested.
func NewProperties(requested Quantities, nSpectral int) *Properties {
	p := &Properties{Requested: requested}
	if requested.Has(QuantityIntensity) {
		p.Intensity = new(float64)
	}
	if requested.Has(QuantityEmissionTime) {
		p.EmissionTime = new(float64)
	}
	if requested.Has(QuantityMinDistance) {
		v := math.Inf(1)
		p.MinDistance = &v
	}
	if requested.Has(QuantityFirstDistMin) {
		v := math.Inf(1)
		p.FirstDistMin = &v
	}
	if requested.Has(QuantityRedshift) {
		p.Redshift = new(float64)
	}
	if requested.Has(QuantityImpactCoords) {
		p.ImpactCoords = new([16]float64)
	}
	if requested.Has(QuantitySpectrum) {
		p.Spectrum = make([]float64, nSpectral)
	}
	if requested.Has(QuantityBinSpectrum) {
		p.BinSpectrum = make([]float64, nSpectral)
	}
	if requested.Has(QuantityOpacity) {
		p.Opacity = new(float64)
	}
	if requested.Has(QuantityNbCrossEqPlane) {
		p.NbCrossEqPlane = new(float64)
	}
	return p
}

// Hit reports whether Impact ever processed at least one interior
// sample for this pixel (§4.4 step 5's return value).
func (p *Properties) Hit() bool { return p.hit }

// MarkHit records that at least one interior sample was processed.
func (p *Properties) MarkHit() { p.hit = true }

// NoHitSentinel is the value written to every Intensity-family output
// for a pixel whose ray never intersected the emitter (§8: "all
// Intensity-family outputs equal the configured no-hit sentinel").
const NoHitSentinel = 0.0

// FillNoHit writes NoHitSentinel to every allocated Intensity-family
// field. Called by the dispatcher once a pixel's photon has reached a
// terminal status without Impact ever reporting a hit.
func (p *Properties) FillNoHit() {
	if p.Intensity != nil {
		*p.Intensity = NoHitSentinel
	}
	if p.Redshift != nil {
		*p.Redshift = NoHitSentinel
	}
	for i := range p.Spectrum {
		p.Spectrum[i] = NoHitSentinel
	}
	for i := range p.BinSpectrum {
		p.BinSpectrum[i] = NoHitSentinel
	}
}
