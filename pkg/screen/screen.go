// Package screen implements the virtual camera of §4.1: a pixel grid
// that maps (i,j) indices to an initial photon 4-position and null
// 4-momentum. It is grounded on the teacher's renderer.Camera, which
// precomputes a viewport from a constructor's parameters and exposes a
// single GetRay(s,t)-shaped accessor — here PixelRay(i,j) — rather than
// recomputing the viewport geometry on every call.
package screen

import (
	"fmt"
	"math"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
)

// Screen is the observer's virtual camera, per §4.1: field of view,
// orientation (inclination, position angle of the line of nodes,
// azimuthal argument), distance from the coordinate origin, and pixel
// resolution.
type Screen struct {
	m metric.Metric

	FOV           float64 // total angular field of view, radians
	Inclination   float64 // radians, 0 = face-on from +z
	PositionAngle float64 // radians, rotation of the line of nodes
	Argument      float64 // radians, azimuthal rotation of the observer
	Distance      float64 // observer's radial coordinate
	Time          float64 // observation coordinate time, t0
	ResolutionX   int
	ResolutionY   int
}

// New constructs a Screen bound to metric m, which must be able to seed
// a null 4-momentum via SysPrimeToTdot(targetNorm=0).
func New(m metric.Metric, fov, inclination, positionAngle, argument, distance, time float64, resX, resY int) *Screen {
	return &Screen{
		m:             m,
		FOV:           fov,
		Inclination:   inclination,
		PositionAngle: positionAngle,
		Argument:      argument,
		Distance:      distance,
		Time:          time,
		ResolutionX:   resX,
		ResolutionY:   resY,
	}
}

// PixelOutOfRange is returned by PixelRay when i or j exceeds the
// configured resolution, per §4.1.
type PixelOutOfRange struct {
	I, J       int
	ResX, ResY int
}

func (e *PixelOutOfRange) Error() string {
	return fmt.Sprintf("pixel (%d,%d) out of range [0,%d)x[0,%d)", e.I, e.J, e.ResX, e.ResY)
}

// PixelRay returns the initial photon 4-position and null 4-momentum
// for pixel (i,j), per §4.1's pixelRay(i,j) -> (pos0, k0) contract. The
// observer sits at coordinate radius Distance, inclination
// Inclination, azimuth Argument; the camera's local sky plane is
// spanned by two angular offsets (alpha along the position-angle
// direction, beta perpendicular to it) ranging over [-FOV/2, FOV/2].
// The resulting spatial direction is promoted to a null 4-momentum via
// the metric's SysPrimeToTdot(targetNorm=0), which is the metric
// capability §4.1 requires ("k0 must satisfy g(k0,k0)=0 under the
// current metric").
func (s *Screen) PixelRay(i, j int) (pos0 core.Position4, k0 core.Position4, err error) {
	if i < 0 || i >= s.ResolutionX || j < 0 || j >= s.ResolutionY {
		return core.Position4{}, core.Position4{}, &PixelOutOfRange{I: i, J: j, ResX: s.ResolutionX, ResY: s.ResolutionY}
	}

	half := s.FOV / 2
	// Pixel-center offsets in [-half, half], one sample per pixel.
	alpha := half * (2*(float64(i)+0.5)/float64(s.ResolutionX) - 1)
	beta := half * (2*(float64(j)+0.5)/float64(s.ResolutionY) - 1)

	cosPA, sinPA := math.Cos(s.PositionAngle), math.Sin(s.PositionAngle)
	dAlpha := alpha*cosPA - beta*sinPA
	dBeta := alpha*sinPA + beta*cosPA

	pos0 = core.Position4{s.Time, s.Distance, s.Inclination, s.Argument}

	// A distant observer's local sky offsets (dAlpha, dBeta) perturb
	// the inward radial direction by small rotations in theta and phi;
	// the radial component stays dominant and negative (inward,
	// backward tracing starts by moving toward decreasing r).
	vr := -1.0
	vth := dBeta
	vphi := dAlpha
	if s.Distance > 0 {
		vphi /= math.Max(math.Sin(s.Inclination), 1e-12) * s.Distance
		vth /= s.Distance
	}

	vt, err := s.m.SysPrimeToTdot(pos0, [3]float64{vr, vth, vphi}, 0)
	if err != nil {
		return core.Position4{}, core.Position4{}, err
	}

	// Backward tracing: the photon's momentum points from observer to
	// source, i.e. the time component of k0 is positive, so that
	// dt/dlambda < 0 and coordinate time decreases along the traced path.
	k0 = core.Position4{vt, vr, vth, vphi}
	return pos0, k0, nil
}
