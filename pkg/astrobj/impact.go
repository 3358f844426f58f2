package astrobj

import (
	"math"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
	"github.com/arlowen/grtrace/pkg/photon"
)

// transmissionFloor is epsilon in §4.4 step 4: accumulation along a
// segment stops once transmission drops below this, since any further
// contribution is negligible.
const transmissionFloor = 1e-6

// cylindrical converts a 4-position to (r_cyl, z, phi) per the active
// coordinate kind, used by both GetIndices and Impact's cheap reject.
func cylindrical(pos core.Position4, coordKind core.CoordKind) (rCyl, z, phi float64) {
	switch coordKind {
	case core.Cartesian:
		x, y, zc := pos[1], pos[2], pos[3]
		return math.Hypot(x, y), zc, math.Atan2(y, x)
	default: // core.Spherical
		r, theta, ph := pos[1], pos[2], pos[3]
		return r * math.Sin(theta), r * math.Cos(theta), ph
	}
}

// redshiftFactor is Gyoto's g-factor, -p_t(observation)/(p.u)(emission).
// p_t is conserved along a geodesic in any stationary, axisymmetric
// metric (both metrics in this package keep dp_t/dlambda=0), so the
// photon's current p_t equals its value at the screen; p.u needs no
// metric contraction since p is already covariant and u contravariant.
func redshiftFactor(photonState core.State8, u core.Velocity4) float64 {
	pu := photonState[4]*u[0] + photonState[5]*u[1] + photonState[6]*u[2] + photonState[7]*u[3]
	if pu == 0 {
		return 0
	}
	return -photonState[4] / pu
}

// Impact implements §4.4's shared algorithm over the two worldline
// samples at indices segmentIndex and segmentIndex+1, dispatching to
// the geometric or grid mode depending on which capability obj
// satisfies. It returns true if at least one interior sample was
// processed (§4.4 step 5).
func Impact(obj Astrobj, m metric.Metric, ph *photon.Photon, segmentIndex int, outProps *core.Properties) (bool, error) {
	if outProps.NbCrossEqPlane != nil {
		if err := countEqPlaneCrossing(ph, segmentIndex, m.CoordKind(), outProps); err != nil {
			return false, err
		}
	}

	switch a := obj.(type) {
	case GridAstrobj:
		return gridImpact(a, m, ph, segmentIndex, outProps)
	case GeometricAstrobj:
		return geometricImpact(a, m, ph, segmentIndex, outProps)
	default:
		return false, core.NewError(core.Configuration, "astrobj.Impact", nil)
	}
}

// geometricImpact handles the point-inside-predicate mode: a sample is
// "inside" when Operator(pos) < CriticalValue(). Between two adjacent
// samples that straddle the boundary, only the interior endpoint is
// accumulated — matching the grid mode's "process interior samples"
// contract without a tabulated box to search into.
func geometricImpact(obj GeometricAstrobj, m metric.Metric, ph *photon.Photon, segmentIndex int, outProps *core.Properties) (bool, error) {
	s2, err := ph.GetCoordAt(segmentIndex)
	if err != nil {
		return false, err
	}
	s1, err := ph.GetCoordAt(segmentIndex + 1)
	if err != nil {
		return false, err
	}

	hit := false
	for _, s := range [2]core.State8{s1, s2} {
		pos := s.Pos()
		d2 := obj.Operator(pos, m.CoordKind())
		if outProps.MinDistance != nil && d2 < *outProps.MinDistance {
			*outProps.MinDistance = d2
		}
		if !outProps.FirstLegDone && outProps.FirstDistMin != nil && d2 < *outProps.FirstDistMin {
			*outProps.FirstDistMin = d2
		}
		if d2 >= obj.CriticalValue() {
			continue
		}
		hit = true
		dt := s2[0] - s1[0]
		if err := processHit(obj, m, s, pos, dt, outProps); err != nil {
			return false, err
		}
	}
	if hit {
		outProps.MarkHit()
	}
	return hit, nil
}

// gridImpact implements §4.4's five-step algorithm against a tabulated
// grid emitter.
func gridImpact(obj GridAstrobj, m metric.Metric, ph *photon.Photon, segmentIndex int, outProps *core.Properties) (bool, error) {
	s2, err := ph.GetCoordAt(segmentIndex)
	if err != nil {
		return false, err
	}
	s1, err := ph.GetCoordAt(segmentIndex + 1)
	if err != nil {
		return false, err
	}
	t1, t2 := s1[0], s2[0]
	rin, rout, zmin, zmax := obj.Bounds()

	// Step 1: cheap reject.
	r1, z1, _ := cylindrical(s1.Pos(), m.CoordKind())
	r2, z2, _ := cylindrical(s2.Pos(), m.CoordKind())
	if r1 > 2*rout && r2 > 2*rout && sameSign(z1, z2) {
		return false, nil
	}

	insideBox := func(pos core.Position4) bool {
		r, z, _ := cylindrical(pos, m.CoordKind())
		if z < 0 && zmin >= 0 {
			z = -z
		}
		return r >= rin && r <= rout && z >= zmin && z <= zmax
	}

	dt := math.Min(0.1, 0.1*(t2-t1))
	if dt <= 0 {
		return false, nil
	}

	// Step 2: entry search, stepping backward from t2 toward t1.
	t := t2
	var entry core.State8
	found := false
	for t >= t1 {
		state, err := ph.GetCoord(t)
		if err != nil {
			break
		}
		if insideBox(state.Pos()) {
			entry = state
			found = true
			break
		}
		t -= dt
	}
	// Step 3.
	if !found {
		return false, nil
	}

	// Step 4: accumulate from the entry point.
	t = entry[0]
	hit := false
	for t >= t1 {
		state, err := ph.GetCoord(t)
		if err != nil {
			break
		}
		pos := state.Pos()
		if !insideBox(pos) {
			break
		}
		hit = true
		if err := processHit(obj, m, state, pos, dt, outProps); err != nil {
			return false, err
		}
		if outProps.Opacity != nil && math.Exp(-*outProps.Opacity) < transmissionFloor {
			break
		}
		t -= dt
	}
	if hit {
		outProps.MarkHit()
	}
	outProps.FirstLegDone = true
	return hit, nil
}

func sameSign(a, b float64) bool {
	return (a >= 0 && b >= 0) || (a <= 0 && b <= 0)
}

// equatorialHeight returns pos's signed height above the equatorial
// plane: z in Cartesian, r*cos(theta) in Spherical.
func equatorialHeight(pos core.Position4, coordKind core.CoordKind) float64 {
	if coordKind == core.Cartesian {
		return pos[3]
	}
	r, theta := pos[1], pos[2]
	return r * math.Cos(theta)
}

// countEqPlaneCrossing increments outProps.NbCrossEqPlane whenever the
// two worldline samples bracketing segmentIndex straddle the
// equatorial plane, regardless of whether either sample turns out to
// be an Astrobj hit: the quantity counts crossings of the whole
// geodesic, not just crossings inside the emitter.
func countEqPlaneCrossing(ph *photon.Photon, segmentIndex int, coordKind core.CoordKind, outProps *core.Properties) error {
	s2, err := ph.GetCoordAt(segmentIndex)
	if err != nil {
		return err
	}
	s1, err := ph.GetCoordAt(segmentIndex + 1)
	if err != nil {
		return err
	}
	if !sameSign(equatorialHeight(s1.Pos(), coordKind), equatorialHeight(s2.Pos(), coordKind)) {
		*outProps.NbCrossEqPlane++
	}
	return nil
}

// spectralNu0 and spectralDeltaNu define the linear frequency axis
// Spectrum/BinSpectrum sample at, channel k at spectralNu0+k*spectralDeltaNu:
// the distilled Scenery XML carries no Screen Spectrometer element, so
// this package falls back to a fixed axis at the same order of
// magnitude as Disk3D's own Nu0/DeltaNu tabulation scale.
const (
	spectralNu0     = 1e14
	spectralDeltaNu = 1e13
)

// spectralCoefficients evaluates obj's local emission/absorption at pos
// and nu, dispatching the same way processHit's single-frequency case
// does.
func spectralCoefficients(obj Astrobj, m metric.Metric, pos core.Position4, nu float64) (jNu, alphaNu float64, err error) {
	switch a := obj.(type) {
	case GridAstrobj:
		iNu, iPhi, iZ, iR, gerr := a.GetIndices(pos, nu, m.CoordKind())
		if gerr != nil {
			return 0, 0, gerr
		}
		return a.EmissionCoefficient(iNu, iPhi, iZ, iR), a.AbsorptionCoefficient(iNu, iPhi, iZ, iR), nil
	case GeometricAstrobj:
		return a.EmissionCoefficient(pos, nu), a.AbsorptionCoefficient(pos, nu), nil
	}
	return 0, 0, nil
}

// foldSpectralChannels implements §4.5's "per-channel Intensity/binned
// integral" combinator for Spectrum and BinSpectrum: Spectrum[k] is the
// same formal-solution fold processHit applies to Intensity, evaluated
// at channel k's frequency; BinSpectrum[k] approximates the physical
// spectrometer's band integral by the same fold with the emission
// density scaled by the channel width, valid as long as I_nu varies
// slowly across one channel.
func foldSpectralChannels(obj Astrobj, m metric.Metric, pos core.Position4, dtAbs float64, outProps *core.Properties) error {
	nChannels := len(outProps.Spectrum)
	if n := len(outProps.BinSpectrum); n > nChannels {
		nChannels = n
	}
	for k := 0; k < nChannels; k++ {
		nu := spectralNu0 + float64(k)*spectralDeltaNu
		jNu, alphaNu, err := spectralCoefficients(obj, m, pos, nu)
		if err != nil {
			return err
		}
		if obj.OpticallyThin() {
			alphaNu = 0
		}
		transmission := 1.0
		if alphaNu != 0 {
			transmission = math.Exp(-alphaNu * dtAbs)
		}
		if k < len(outProps.Spectrum) {
			if alphaNu == 0 {
				outProps.Spectrum[k] += jNu * dtAbs
			} else {
				outProps.Spectrum[k] = outProps.Spectrum[k]*transmission + (jNu/alphaNu)*(1-transmission)
			}
		}
		if k < len(outProps.BinSpectrum) {
			jNuBand := jNu * spectralDeltaNu
			if alphaNu == 0 {
				outProps.BinSpectrum[k] += jNuBand * dtAbs
			} else {
				outProps.BinSpectrum[k] = outProps.BinSpectrum[k]*transmission + (jNuBand/alphaNu)*(1-transmission)
			}
		}
	}
	return nil
}

// processHit is the framework-supplied processHitQuantities helper of
// §4.5: it looks up local radiative properties and the emitting
// matter's velocity at pos, folds the formal radiative-transfer
// solution into Intensity/Opacity, and updates the other requested
// scalar quantities.
func processHit(obj Astrobj, m metric.Metric, photonState core.State8, pos core.Position4, dt float64, outProps *core.Properties) error {
	var jNu, alphaNu, nu float64
	var vel [3]float64
	var err error

	switch a := obj.(type) {
	case GridAstrobj:
		iNu, iPhi, iZ, iR, gerr := a.GetIndices(pos, nu, m.CoordKind())
		if gerr != nil {
			return gerr
		}
		jNu = a.EmissionCoefficient(iNu, iPhi, iZ, iR)
		alphaNu = a.AbsorptionCoefficient(iNu, iPhi, iZ, iR)
		cyl := a.CellVelocity(iPhi, iZ, iR) // (phi', z', r')
		vel = cylindricalToChartVelocity(pos, m.CoordKind(), cyl[0], cyl[1], cyl[2])
	case GeometricAstrobj:
		jNu = a.EmissionCoefficient(pos, nu)
		alphaNu = a.AbsorptionCoefficient(pos, nu)
		vel, err = a.Velocity(m, pos)
		if err != nil {
			return err
		}
	}
	if obj.OpticallyThin() {
		alphaNu = 0
	}

	vt, err := m.SysPrimeToTdot(pos, vel, -1)
	if err != nil {
		return err
	}
	u := core.Velocity4{vt, vel[0], vel[1], vel[2]}

	dtAbs := math.Abs(dt)
	transmission := 1.0
	if alphaNu != 0 {
		transmission = math.Exp(-alphaNu * dtAbs)
	}

	if outProps.Intensity != nil {
		if alphaNu == 0 {
			*outProps.Intensity += jNu * dtAbs
		} else {
			*outProps.Intensity = *outProps.Intensity*transmission + (jNu/alphaNu)*(1-transmission)
		}
	}
	if outProps.Opacity != nil {
		*outProps.Opacity += alphaNu * dtAbs
	}
	if outProps.EmissionTime != nil && *outProps.EmissionTime == 0 {
		*outProps.EmissionTime = photonState[0]
	}
	if outProps.Redshift != nil {
		*outProps.Redshift = redshiftFactor(photonState, u)
	}
	if outProps.ImpactCoords != nil {
		var coords [16]float64
		copy(coords[:8], photonState[:])
		coords[8], coords[9], coords[10], coords[11] = pos[0], pos[1], pos[2], pos[3]
		coords[12], coords[13], coords[14], coords[15] = u[0], u[1], u[2], u[3]
		*outProps.ImpactCoords = coords
	}
	if len(outProps.Spectrum) > 0 || len(outProps.BinSpectrum) > 0 {
		if err := foldSpectralChannels(obj, m, pos, dtAbs, outProps); err != nil {
			return err
		}
	}
	return nil
}
