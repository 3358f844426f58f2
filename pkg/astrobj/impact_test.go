package astrobj

import (
	"testing"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
	"github.com/arlowen/grtrace/pkg/photon"
)

func TestGeometricImpactHitsFixedStar(t *testing.T) {
	m := metric.NewMinkowski(core.Cartesian)
	star := &FixedStar{
		Center: core.Position4{0, 0, 0, 0}, Radius: 12, Thin: true,
		EmissivityCoeff: 1e-3, EmissivityExp: 0,
	}

	tune := photon.NewTuning(
		photon.WithIntegrator(photon.RungeKuttaCashKarp54),
		photon.WithDelta(1), photon.WithAdaptive(false), photon.WithMaxiter(50))
	ph, err := photon.New(m, tune)
	if err != nil {
		t.Fatalf("photon.New: %v", err)
	}
	// Aimed straight along -x from x=20, so it passes through x=12 (the
	// star's surface on-axis) well before reaching x=0.
	ph.Seed(core.Position4{0, 20, 0, 0}, core.Position4{-1, -1, 0, 0})

	outProps := core.NewProperties(core.Quantities(0).With(core.QuantityIntensity), 0)

	hitAny := false
	err = ph.Run(func(prev, curr core.State8) bool {
		idx := ph.WorldLine().Len() - 2
		hit, ierr := Impact(star, m, ph, idx, outProps)
		if ierr != nil {
			t.Fatalf("Impact: %v", ierr)
		}
		if hit {
			hitAny = true
		}
		return false
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !hitAny {
		t.Errorf("expected the ray crossing the star's surface to report a hit")
	}
	if *outProps.Intensity <= 0 {
		t.Errorf("Intensity = %g, want > 0 after a hit with positive emissivity", *outProps.Intensity)
	}
}

func TestGeometricImpactNoHitFarFromStar(t *testing.T) {
	m := metric.NewMinkowski(core.Cartesian)
	star := &FixedStar{Center: core.Position4{0, 0, 0, 0}, Radius: 1, Thin: true}

	tune := photon.NewTuning(
		photon.WithIntegrator(photon.RungeKuttaCashKarp54),
		photon.WithDelta(1), photon.WithAdaptive(false), photon.WithMaxiter(10))
	ph, err := photon.New(m, tune)
	if err != nil {
		t.Fatalf("photon.New: %v", err)
	}
	ph.Seed(core.Position4{0, 100, 50, 0}, core.Position4{-1, 0, -1, 0})

	outProps := core.NewProperties(core.Quantities(0).With(core.QuantityIntensity), 0)
	hitAny := false
	err = ph.Run(func(prev, curr core.State8) bool {
		idx := ph.WorldLine().Len() - 2
		hit, ierr := Impact(star, m, ph, idx, outProps)
		if ierr != nil {
			t.Fatalf("Impact: %v", ierr)
		}
		if hit {
			hitAny = true
		}
		return false
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if hitAny {
		t.Errorf("did not expect a hit for a ray that stays far from the star")
	}
}

// TestImpactCountsEqPlaneCrossings drives a photon straight through the
// equatorial plane (z=0) once and checks NbCrossEqPlane records the
// crossing, independent of whether the emitter is ever hit.
func TestImpactCountsEqPlaneCrossings(t *testing.T) {
	m := metric.NewMinkowski(core.Cartesian)
	star := &FixedStar{Center: core.Position4{0, 1000, 1000, 1000}, Radius: 1, Thin: true}

	tune := photon.NewTuning(
		photon.WithIntegrator(photon.RungeKuttaCashKarp54),
		photon.WithDelta(1), photon.WithAdaptive(false), photon.WithMaxiter(6))
	ph, err := photon.New(m, tune)
	if err != nil {
		t.Fatalf("photon.New: %v", err)
	}
	// z runs -2.5,-1.5,-0.5,0.5,1.5,2.5,3.5 across 6 unit steps, crossing
	// z=0 exactly once (between the -0.5 and 0.5 samples) without ever
	// landing exactly on the plane itself.
	ph.Seed(core.Position4{0, 0, 0, -2.5}, core.Position4{-1, 0, 0, 1})

	outProps := core.NewProperties(core.Quantities(0).With(core.QuantityNbCrossEqPlane), 0)
	err = ph.Run(func(prev, curr core.State8) bool {
		idx := ph.WorldLine().Len() - 2
		if _, ierr := Impact(star, m, ph, idx, outProps); ierr != nil {
			t.Fatalf("Impact: %v", ierr)
		}
		return false
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if *outProps.NbCrossEqPlane <= 0 {
		t.Errorf("NbCrossEqPlane = %g, want > 0 for a trajectory crossing z=0", *outProps.NbCrossEqPlane)
	}
}

// TestImpactFoldsSpectrumAndBinSpectrum checks that requesting Spectrum
// and BinSpectrum actually populates every channel on a hit, rather than
// leaving them at their zero value.
func TestImpactFoldsSpectrumAndBinSpectrum(t *testing.T) {
	m := metric.NewMinkowski(core.Cartesian)
	star := &FixedStar{
		Center: core.Position4{0, 0, 0, 0}, Radius: 12, Thin: true,
		EmissivityCoeff: 1e-3, EmissivityExp: 0,
	}

	tune := photon.NewTuning(
		photon.WithIntegrator(photon.RungeKuttaCashKarp54),
		photon.WithDelta(1), photon.WithAdaptive(false), photon.WithMaxiter(50))
	ph, err := photon.New(m, tune)
	if err != nil {
		t.Fatalf("photon.New: %v", err)
	}
	ph.Seed(core.Position4{0, 20, 0, 0}, core.Position4{-1, -1, 0, 0})

	requested := core.Quantities(0).With(core.QuantitySpectrum).With(core.QuantityBinSpectrum)
	outProps := core.NewProperties(requested, 4)

	err = ph.Run(func(prev, curr core.State8) bool {
		idx := ph.WorldLine().Len() - 2
		if _, ierr := Impact(star, m, ph, idx, outProps); ierr != nil {
			t.Fatalf("Impact: %v", ierr)
		}
		return false
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for k, v := range outProps.Spectrum {
		if v <= 0 {
			t.Errorf("Spectrum[%d] = %g, want > 0 after a hit with positive emissivity", k, v)
		}
	}
	for k, v := range outProps.BinSpectrum {
		if v <= 0 {
			t.Errorf("BinSpectrum[%d] = %g, want > 0 after a hit with positive emissivity", k, v)
		}
	}
}
