package metric

import (
	"fmt"
	"math"

	"github.com/arlowen/grtrace/pkg/core"
)

// Kerr is the Boyer-Lindquist form of the Kerr metric: an axisymmetric,
// stationary vacuum solution parameterized by mass Mass and specific
// spin Spin (a = J/M, geometrized units with G=c=1). Spin must satisfy
// |Spin| <= Mass for a horizon to exist; the zero-spin case reduces to
// Schwarzschild.
type Kerr struct {
	Mass float64
	Spin float64
}

// NewKerr constructs a Kerr metric of the given mass and spin.
func NewKerr(mass, spin float64) *Kerr {
	return &Kerr{Mass: mass, Spin: spin}
}

func (k *Kerr) Kind() string             { return "KerrBL" }
func (k *Kerr) CoordKind() core.CoordKind { return core.Spherical }
func (k *Kerr) ThreadSafe() bool          { return true }
func (k *Kerr) Clone() Metric             { return k }

// rHorizon is the outer event horizon radius, r+ = M + sqrt(M^2-a^2).
func (k *Kerr) rHorizon() float64 {
	disc := k.Mass*k.Mass - k.Spin*k.Spin
	if disc < 0 {
		disc = 0
	}
	return k.Mass + math.Sqrt(disc)
}

// Sink reports whether pos has crossed the outer horizon, with a small
// safety margin so the integrator halts before the coordinate
// singularity at r=r+ rather than stepping across it.
func (k *Kerr) Sink(pos core.Position4) bool {
	return pos[1] <= k.rHorizon()*1.0001
}

// blScalars holds the Boyer-Lindquist scalars shared by several computations
// below: Sigma = r^2+a^2cos^2(theta), Delta = r^2-2Mr+a^2.
type blScalars struct {
	r, th          float64
	sin2, cos2     float64
	sigma, delta   float64
	a, a2, m       float64
}

func (k *Kerr) scalars(r, th float64) blScalars {
	sinTh := math.Sin(th)
	cosTh := math.Cos(th)
	sin2 := sinTh * sinTh
	cos2 := cosTh * cosTh
	a := k.Spin
	a2 := a * a
	return blScalars{
		r: r, th: th,
		sin2: sin2, cos2: cos2,
		sigma: r*r + a2*cos2,
		delta: r*r - 2*k.Mass*r + a2,
		a:     a, a2: a2, m: k.Mass,
	}
}

// metricComponents returns the nonzero covariant Boyer-Lindquist metric
// components g_tt, g_tphi, g_rr, g_thth, g_phiphi.
func (s blScalars) metricComponents() (gtt, gtphi, grr, gthth, gphiphi float64) {
	gtt = -(1 - 2*s.m*s.r/s.sigma)
	gtphi = -2 * s.m * s.r * s.a * s.sin2 / s.sigma
	grr = s.sigma / s.delta
	gthth = s.sigma
	gphiphi = (s.r*s.r + s.a2 + 2*s.m*s.r*s.a2*s.sin2/s.sigma) * s.sin2
	return
}

// RHS evaluates the Kerr geodesic right-hand side via the Hamiltonian
// form dx^mu/dlambda = dH/dp_mu, dp_mu/dlambda = -dH/dx^mu with
// H = (1/2) g^{mu nu} p_mu p_nu, using a centered finite difference on
// the position derivatives of H (the BL metric's closed-form Christoffels
// are long enough that a numerical Hamiltonian gradient is the more
// maintainable route, at the cost of a small finite-difference error in
// the momentum derivatives).
func (k *Kerr) RHS(s core.State8) (core.State8, error) {
	r, th := s[1], s[2]
	if r <= k.rHorizon() {
		return core.State8{}, core.NewError(core.HorizonReached, "Kerr.RHS", fmt.Errorf("r=%g at or inside horizon", r))
	}
	if math.Sin(th) == 0 {
		return core.State8{}, core.NewError(core.Invariant, "Kerr.RHS", fmt.Errorf("coordinate singularity at theta=%g", th))
	}

	p := [4]float64{s[4], s[5], s[6], s[7]}

	dHdp := func(pos [4]float64, mom [4]float64) [4]float64 {
		gInv := k.inverseAt(pos[1], pos[2])
		var out [4]float64
		for mu := 0; mu < 4; mu++ {
			for nu := 0; nu < 4; nu++ {
				out[mu] += gInv[mu][nu] * mom[nu]
			}
		}
		return out
	}

	hamiltonian := func(pos [4]float64, mom [4]float64) float64 {
		gInv := k.inverseAt(pos[1], pos[2])
		var h float64
		for mu := 0; mu < 4; mu++ {
			for nu := 0; nu < 4; nu++ {
				h += gInv[mu][nu] * mom[mu] * mom[nu]
			}
		}
		return 0.5 * h
	}

	dxdlambda := dHdp([4]float64{s[0], r, th, s[3]}, p)

	const eps = 1e-6
	pos := [4]float64{s[0], r, th, s[3]}
	var dpdlambda [4]float64
	for mu := 1; mu < 3; mu++ { // only r and theta: metric is t- and phi-independent
		posPlus := pos
		posMinus := pos
		posPlus[mu] += eps
		posMinus[mu] -= eps
		hPlus := hamiltonian(posPlus, p)
		hMinus := hamiltonian(posMinus, p)
		dpdlambda[mu] = -(hPlus - hMinus) / (2 * eps)
	}

	return core.State8{
		dxdlambda[0], dxdlambda[1], dxdlambda[2], dxdlambda[3],
		0, dpdlambda[1], dpdlambda[2], 0,
	}, nil
}

// inverseAt returns the inverse metric g^{mu nu} at (r,theta) as a dense
// 4x4 array indexed [t,r,theta,phi]x[t,r,theta,phi]. Boyer-Lindquist is
// block-diagonal in (t,phi) and (r,theta), so this inverts the 2x2
// (t,phi) block in closed form rather than a general matrix inverse.
func (k *Kerr) inverseAt(r, th float64) [4][4]float64 {
	s := k.scalars(r, th)
	gtt, gtphi, grr, gthth, gphiphi := s.metricComponents()

	det := gtt*gphiphi - gtphi*gtphi
	var out [4][4]float64
	out[0][0] = gphiphi / det
	out[0][3] = -gtphi / det
	out[3][0] = out[0][3]
	out[3][3] = gtt / det
	out[1][1] = 1 / grr
	out[2][2] = 1 / gthth
	return out
}

func (k *Kerr) Norm(s core.State8) float64 {
	sc := k.scalars(s[1], s[2])
	gtt, gtphi, grr, gthth, gphiphi := sc.metricComponents()
	gInv := [4][4]float64{}
	det := gtt*gphiphi - gtphi*gtphi
	gInv[0][0] = gphiphi / det
	gInv[0][3] = -gtphi / det
	gInv[3][0] = gInv[0][3]
	gInv[3][3] = gtt / det
	gInv[1][1] = 1 / grr
	gInv[2][2] = 1 / gthth

	p := [4]float64{s[4], s[5], s[6], s[7]}
	var norm float64
	for mu := 0; mu < 4; mu++ {
		for nu := 0; nu < 4; nu++ {
			norm += gInv[mu][nu] * p[mu] * p[nu]
		}
	}
	return norm
}

// CircularVelocity returns the prograde equatorial Keplerian 4-velocity
// at pos, Omega = sqrt(M) / (r^{3/2} + a sqrt(M)). This is only a
// geodesic circular orbit in the equatorial plane (theta=pi/2); callers
// at other polar angles (e.g. a geometrically thick emitter) get the
// same coordinate angular velocity projected onto their theta, which is
// the conventional approximation Gyoto's disk emitters use off the
// midplane.
func (k *Kerr) CircularVelocity(pos core.Position4) (core.Velocity4, error) {
	r := pos[1]
	th := pos[2]
	sqrtM := math.Sqrt(k.Mass)
	omega := sqrtM / (math.Pow(r, 1.5) + k.Spin*sqrtM)

	sc := k.scalars(r, th)
	gtt, gtphi, _, _, gphiphi := sc.metricComponents()

	// g(u,u) = -1 with u^r=u^th=0, u^phi = omega*u^t:
	// u^t^2 (gtt + 2*gtphi*omega + gphiphi*omega^2) = -1
	denom := gtt + 2*gtphi*omega + gphiphi*omega*omega
	if denom >= 0 {
		return core.Velocity4{}, core.NewError(core.Invariant, "Kerr.CircularVelocity", fmt.Errorf("no timelike circular orbit at r=%g", r))
	}
	ut := math.Sqrt(-1 / denom)
	return core.Velocity4{ut, 0, 0, omega * ut}, nil
}

// SysPrimeToTdot solves g(u,u) = targetNorm for u^t given the spatial
// components of u. The screen calls this with targetNorm=0 to seed a
// null photon momentum; emitters call it with targetNorm=-1 to promote
// a tabulated spatial velocity to a timelike 4-velocity (§4.4). The
// quadratic A*(u^t)^2 + B*u^t + C = 0 is solved and the root with
// u^t > 0 is kept.
func (k *Kerr) SysPrimeToTdot(pos core.Position4, sPrime [3]float64, targetNorm float64) (float64, error) {
	r, th := pos[1], pos[2]
	sc := k.scalars(r, th)
	gtt, gtphi, grr, gthth, gphiphi := sc.metricComponents()

	vr, vth, vphi := sPrime[0], sPrime[1], sPrime[2]

	a := gtt
	b := 2 * gtphi * vphi
	c := grr*vr*vr + gthth*vth*vth + gphiphi*vphi*vphi - targetNorm

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, core.NewError(core.Invariant, "Kerr.SysPrimeToTdot", fmt.Errorf("no real timelike root at r=%g", r))
	}
	sqrtDisc := math.Sqrt(disc)
	root1 := (-b + sqrtDisc) / (2 * a)
	root2 := (-b - sqrtDisc) / (2 * a)

	if root1 > 0 && root2 > 0 {
		return math.Min(root1, root2), nil
	}
	if root1 > 0 {
		return root1, nil
	}
	if root2 > 0 {
		return root2, nil
	}
	return 0, core.NewError(core.Invariant, "Kerr.SysPrimeToTdot", fmt.Errorf("no positive timelike root at r=%g", r))
}
