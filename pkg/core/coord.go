package core

import "math"

// CoordKind selects the chart used to interpret the spatial part of a
// 4-position: Spherical (t, r, theta, phi) or Cartesian (t, x, y, z).
type CoordKind int

const (
	Spherical CoordKind = iota
	Cartesian
)

func (c CoordKind) String() string {
	if c == Cartesian {
		return "Cartesian"
	}
	return "Spherical"
}

// Position4 is a 4-position (t, x1, x2, x3).
type Position4 [4]float64

// State8 is a full photon state: position and conjugate momentum,
// (t, x1, x2, x3, p_t, p1, p2, p3). Every geodesic integration step
// consumes and produces a State8.
type State8 [8]float64

// Pos returns the position half of the state.
func (s State8) Pos() Position4 {
	return Position4{s[0], s[1], s[2], s[3]}
}

// Mom returns the momentum half of the state.
func (s State8) Mom() Position4 {
	return Position4{s[4], s[5], s[6], s[7]}
}

// T is the coordinate-time component.
func (s State8) T() float64 { return s[0] }

// Velocity4 is a contravariant 4-velocity (dx^mu/dtau), used for both
// photon-independent emitter matter velocities and circular-orbit
// velocities returned by a Metric.
type Velocity4 [4]float64

// ToCartesian converts pos's spatial part to Euclidean (x, y, z) given
// the chart it is expressed in, so that code computing a Euclidean
// distance (e.g. a GeometricAstrobj's inside predicate) never treats a
// Spherical (r, theta, phi) tuple as if it were already Cartesian.
func ToCartesian(pos Position4, kind CoordKind) (x, y, z float64) {
	if kind == Cartesian {
		return pos[1], pos[2], pos[3]
	}
	r, theta, phi := pos[1], pos[2], pos[3]
	sinTheta := math.Sin(theta)
	return r * sinTheta * math.Cos(phi), r * sinTheta * math.Sin(phi), r * math.Cos(theta)
}
