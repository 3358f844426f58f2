package metric

import (
	"fmt"
	"math"

	"github.com/arlowen/grtrace/pkg/core"
)

// Minkowski is flat space-time, expressed in either spherical or
// cartesian coordinates. It has no sink and every circular "orbit" is
// degenerate (flat space has no gravity to orbit), which is why
// CircularVelocity on Minkowski returns a static observer rather than
// an error: a FixedStar-like emitter embedded in flat space is simply
// at rest.
type Minkowski struct {
	coordKind core.CoordKind
}

// NewMinkowski creates a flat-space metric in the requested chart.
func NewMinkowski(coordKind core.CoordKind) *Minkowski {
	return &Minkowski{coordKind: coordKind}
}

func (m *Minkowski) Kind() string             { return "Minkowski" }
func (m *Minkowski) CoordKind() core.CoordKind { return m.coordKind }
func (m *Minkowski) ThreadSafe() bool          { return true }
func (m *Minkowski) Clone() Metric             { return m }
func (m *Minkowski) Sink(core.Position4) bool  { return false }

func (m *Minkowski) RHS(s core.State8) (core.State8, error) {
	switch m.coordKind {
	case core.Cartesian:
		return m.rhsCartesian(s), nil
	case core.Spherical:
		return m.rhsSpherical(s)
	default:
		return core.State8{}, core.NewError(core.CoordinateKindUnsupported, "Minkowski.RHS", fmt.Errorf("coord kind %v", m.coordKind))
	}
}

// rhsCartesian: g = diag(-1,1,1,1), constant, so dx^mu/dlambda =
// g^{mu mu} p_mu and every momentum component is conserved.
func (m *Minkowski) rhsCartesian(s core.State8) core.State8 {
	pt, px, py, pz := s[4], s[5], s[6], s[7]
	return core.State8{-pt, px, py, pz, 0, 0, 0, 0}
}

// rhsSpherical: g_tt=-1, g_rr=1, g_thth=r^2, g_phiphi=r^2 sin^2(theta).
func (m *Minkowski) rhsSpherical(s core.State8) (core.State8, error) {
	r, th := s[1], s[2]
	pt, pr, pth, pphi := s[4], s[5], s[6], s[7]
	sinTh := math.Sin(th)
	if r == 0 || sinTh == 0 {
		return core.State8{}, core.NewError(core.Invariant, "Minkowski.RHS", fmt.Errorf("coordinate singularity at r=%g theta=%g", r, th))
	}
	r2 := r * r
	sin2 := sinTh * sinTh

	dxdt := -pt
	dxdr := pr
	dxdth := pth / r2
	dxdphi := pphi / (r2 * sin2)

	dpr := pth*pth/(r2*r) + pphi*pphi/(r2*r*sin2)
	dpth := math.Cos(th) * pphi * pphi / (r2 * sin2 * sinTh)

	return core.State8{dxdt, dxdr, dxdth, dxdphi, 0, dpr, dpth, 0}, nil
}

func (m *Minkowski) Norm(s core.State8) float64 {
	pt, pr, pth, pphi := s[4], s[5], s[6], s[7]
	if m.coordKind == core.Cartesian {
		px, py, pz := s[5], s[6], s[7]
		return -pt*pt + px*px + py*py + pz*pz
	}
	r, th := s[1], s[2]
	sinTh := math.Sin(th)
	return -pt*pt + pr*pr + pth*pth/(r*r) + pphi*pphi/(r*r*sinTh*sinTh)
}

func (m *Minkowski) CircularVelocity(pos core.Position4) (core.Velocity4, error) {
	return core.Velocity4{1, 0, 0, 0}, nil
}

// SysPrimeToTdot solves g(u,u) = targetNorm for u^t given u's spatial
// part: targetNorm=-1 for a timelike 4-velocity, 0 for a null photon
// momentum.
func (m *Minkowski) SysPrimeToTdot(pos core.Position4, sPrime [3]float64, targetNorm float64) (float64, error) {
	switch m.coordKind {
	case core.Cartesian:
		vx, vy, vz := sPrime[0], sPrime[1], sPrime[2]
		return math.Sqrt(-targetNorm + vx*vx + vy*vy + vz*vz), nil
	case core.Spherical:
		r, th := pos[1], pos[2]
		vr, vth, vphi := sPrime[0], sPrime[1], sPrime[2]
		sinTh := math.Sin(th)
		spatial := vr*vr + r*r*vth*vth + r*r*sinTh*sinTh*vphi*vphi
		return math.Sqrt(-targetNorm + spatial), nil
	default:
		return 0, core.NewError(core.CoordinateKindUnsupported, "Minkowski.SysPrimeToTdot", nil)
	}
}
