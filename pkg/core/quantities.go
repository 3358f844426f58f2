package core

import (
	"fmt"
	"strings"
)

// Quantity is one bit of the closed vocabulary a Scenery may be asked
// to compute. Quantities is a set of these, stored as a bitmask.
type Quantity uint16

const (
	QuantityIntensity Quantity = 1 << iota
	QuantityEmissionTime
	QuantityMinDistance
	QuantityFirstDistMin
	QuantityRedshift
	QuantityImpactCoords
	QuantitySpectrum
	QuantityBinSpectrum
	QuantityOpacity
	QuantityNbCrossEqPlane
)

var quantityNames = []struct {
	q Quantity
	s string
}{
	{QuantityIntensity, "Intensity"},
	{QuantityEmissionTime, "EmissionTime"},
	{QuantityMinDistance, "MinDistance"},
	{QuantityFirstDistMin, "FirstDistMin"},
	{QuantityRedshift, "Redshift"},
	{QuantityImpactCoords, "ImpactCoords"},
	{QuantitySpectrum, "Spectrum"},
	{QuantityBinSpectrum, "BinSpectrum"},
	{QuantityOpacity, "Opacity"},
	{QuantityNbCrossEqPlane, "NbCrossEqPlane"},
}

// Quantities is a bitwise-OR set of Quantity values.
type Quantities uint16

// Has reports whether q is included in the set.
func (qs Quantities) Has(q Quantity) bool {
	return Quantities(q)&qs != 0
}

// With returns qs with q added.
func (qs Quantities) With(q Quantity) Quantities {
	return qs | Quantities(q)
}

// String renders the set as the same space-separated form accepted by
// the Scenery XML <Quantities> element.
func (qs Quantities) String() string {
	var names []string
	for _, qn := range quantityNames {
		if qs.Has(qn.q) {
			names = append(names, qn.s)
		}
	}
	return strings.Join(names, " ")
}

// ParseQuantities parses a space-separated list of quantity names
// (optionally each followed by a bracketed unit, e.g. "Intensity[Jy]",
// which this function ignores — the unit is consumed by the Scenery's
// property converters, not by the bitmask). An unknown name is returned
// as a plain error, which xmlscenery.Build reports as a Configuration
// error.
func ParseQuantities(s string) (Quantities, error) {
	var qs Quantities
	for _, tok := range strings.Fields(s) {
		name := tok
		if idx := strings.IndexByte(tok, '['); idx >= 0 {
			name = tok[:idx]
		}
		found := false
		for _, qn := range quantityNames {
			if qn.s == name {
				qs = qs.With(qn.q)
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown quantity %q", name)
		}
	}
	return qs, nil
}

// ScalarCount returns the number of requested quantities of scalar
// nature, i.e. every quantity except Spectrum, BinSpectrum and
// ImpactCoords, which occupy more than one output slot per pixel.
func (qs Quantities) ScalarCount() int {
	n := 0
	for _, qn := range quantityNames {
		switch qn.q {
		case QuantitySpectrum, QuantityBinSpectrum, QuantityImpactCoords:
			continue
		}
		if qs.Has(qn.q) {
			n++
		}
	}
	return n
}
