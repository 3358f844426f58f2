package fitsio

import (
	"bytes"
	"testing"

	"github.com/arlowen/grtrace/pkg/core"
)

func testProps(width, height int, quantities core.Quantities) []*core.Properties {
	props := make([]*core.Properties, width*height)
	for idx := range props {
		props[idx] = core.NewProperties(quantities, 3)
	}
	return props
}

func TestWriteThenReadImpactCoordsRoundTrips(t *testing.T) {
	const width, height = 3, 2
	quantities := core.Quantities(0).With(core.QuantityIntensity).With(core.QuantityImpactCoords)
	props := testProps(width, height, quantities)
	for idx, p := range props {
		*p.Intensity = float64(idx) * 1.5
		for k := range p.ImpactCoords {
			p.ImpactCoords[k] = float64(idx*100 + k)
		}
	}
	// Pixel 1 never hit: leave its ImpactCoords at the zero sentinel.
	props[1].ImpactCoords = new([16]float64)

	var buf bytes.Buffer
	if err := WriteProperties(&buf, width, height, quantities, 3, props); err != nil {
		t.Fatalf("WriteProperties: %v", err)
	}

	gotWidth, gotHeight, coords, err := ReadImpactCoords(&buf)
	if err != nil {
		t.Fatalf("ReadImpactCoords: %v", err)
	}
	if gotWidth != width || gotHeight != height {
		t.Fatalf("dims = %dx%d, want %dx%d", gotWidth, gotHeight, width, height)
	}
	for idx, p := range props {
		if coords[idx] != *p.ImpactCoords {
			t.Errorf("coords[%d] = %v, want %v", idx, coords[idx], *p.ImpactCoords)
		}
	}
}

func TestWriteThenReadImpactCoordsHandlesNoImpactCoordsExtension(t *testing.T) {
	quantities := core.Quantities(0).With(core.QuantityIntensity)
	props := testProps(2, 1, quantities)
	var buf bytes.Buffer
	if err := WriteProperties(&buf, 2, 1, quantities, 1, props); err != nil {
		t.Fatalf("WriteProperties: %v", err)
	}
	if _, _, _, err := ReadImpactCoords(&buf); err == nil {
		t.Error("expected an error reading IMPACTCOORDS from a file that never requested it")
	}
}

func TestWritePropertiesRejectsMismatchedPropsLength(t *testing.T) {
	quantities := core.Quantities(0).With(core.QuantityIntensity)
	props := testProps(2, 2, quantities)[:3] // one short of 2x2=4
	var buf bytes.Buffer
	if err := WriteProperties(&buf, 2, 2, quantities, 1, props); err == nil {
		t.Error("expected an Invariant error for a mismatched props length")
	} else if ce, ok := err.(*core.Error); !ok || ce.Kind != core.Invariant {
		t.Errorf("got %v, want a core.Invariant error", err)
	}
}

func TestWritePropertiesEncodesSpectrumExtension(t *testing.T) {
	quantities := core.Quantities(0).With(core.QuantitySpectrum)
	props := testProps(2, 1, quantities)
	for idx, p := range props {
		for k := range p.Spectrum {
			p.Spectrum[k] = float64(idx) + float64(k)*0.1
		}
	}
	var buf bytes.Buffer
	if err := WriteProperties(&buf, 2, 1, quantities, len(props[0].Spectrum), props); err != nil {
		t.Fatalf("WriteProperties: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty FITS output")
	}
}

func TestNoHitSentinelSurvivesWriteProperties(t *testing.T) {
	quantities := core.Quantities(0).With(core.QuantityIntensity)
	props := testProps(1, 1, quantities)
	props[0].FillNoHit()

	var buf bytes.Buffer
	if err := WriteProperties(&buf, 1, 1, quantities, 1, props); err != nil {
		t.Fatalf("WriteProperties: %v", err)
	}
	if *props[0].Intensity != core.NoHitSentinel {
		t.Fatalf("Intensity = %v, want NoHitSentinel", *props[0].Intensity)
	}
}
