package astrobj

import "github.com/arlowen/grtrace/pkg/core"

// Recompute re-evaluates radiative transfer at a single pre-computed
// impact point, per §4.6's RayTraceFromImpact contract: "the integrator
// is skipped and only radiative transfer is evaluated". coords packs
// the photon state (8) and matter state (8) exactly as
// core.Properties.ImpactCoords does. coordKind is the active metric's
// chart, needed by GridAstrobj.GetIndices to interpret pos.
func Recompute(obj Astrobj, coords [16]float64, coordKind core.CoordKind, outProps *core.Properties) error {
	var photonState core.State8
	copy(photonState[:], coords[:8])
	pos := photonState.Pos()

	var jNu, alphaNu, nu float64
	switch a := obj.(type) {
	case GeometricAstrobj:
		jNu = a.EmissionCoefficient(pos, nu)
		alphaNu = a.AbsorptionCoefficient(pos, nu)
	case GridAstrobj:
		iNu, iPhi, iZ, iR, err := a.GetIndices(pos, nu, coordKind)
		if err != nil {
			return err
		}
		jNu = a.EmissionCoefficient(iNu, iPhi, iZ, iR)
		alphaNu = a.AbsorptionCoefficient(iNu, iPhi, iZ, iR)
	}
	if obj.OpticallyThin() {
		alphaNu = 0
	}

	if outProps.Intensity != nil {
		if alphaNu == 0 {
			*outProps.Intensity = jNu
		} else {
			*outProps.Intensity = jNu / alphaNu
		}
	}
	outProps.MarkHit()
	return nil
}
