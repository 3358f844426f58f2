package astrobj

import (
	"fmt"
	"math"

	"github.com/arlowen/grtrace/pkg/core"
)

// DiskGrid is the tabulated 4-D (nu, phi, z, r) emission/absorption
// grid plus its (phi', z', r') velocity field, per §3 and §6's FITS
// layout. Grounded on Disk3D.C's getIndices/getVelocity semantics.
type DiskGrid struct {
	RepeatPhi int
	Rin, Rout float64
	Zmin, Zmax float64

	// Nu0 and DeltaNu are the axis-1 linear scaling already rebased to
	// CRPIX1=1 (see §6: "when CRPIX1≠1, nu0 is rebased as
	// nu0 - DeltaNu*(CRPIX1-1)"); callers constructing a DiskGrid by
	// hand (rather than via pkg/fitsio) must perform that rebase
	// themselves.
	Nu0, DeltaNu float64

	// EmissQuant is indexed [iNu][iPhi][iZ][iR]; Velocity is indexed
	// [iPhi][iZ][iR] and holds (phi', z', r').
	EmissQuant [][][][]float64
	Opacity    [][][][]float64
	Velocity   [][][][3]float64
}

func (g *DiskGrid) nNu() int { return len(g.EmissQuant) }
func (g *DiskGrid) nPhi() int {
	if g.nNu() == 0 {
		return 0
	}
	return len(g.EmissQuant[0])
}
func (g *DiskGrid) nZ() int {
	if g.nPhi() == 0 {
		return 0
	}
	return len(g.EmissQuant[0][0])
}
func (g *DiskGrid) nR() int {
	if g.nZ() == 0 {
		return 0
	}
	return len(g.EmissQuant[0][0][0])
}

func (g *DiskGrid) deltaR() float64   { return (g.Rout - g.Rin) / float64(g.nR()) }
func (g *DiskGrid) deltaZ() float64   { return (g.Zmax - g.Zmin) / float64(g.nZ()) }
func (g *DiskGrid) deltaPhi() float64 { return 2 * math.Pi / (float64(g.nPhi()) * float64(g.RepeatPhi)) }

// Disk3D is the GridAstrobj wrapping one DiskGrid, per §3/§4.4.
type Disk3D struct {
	Grid *DiskGrid
	Thin bool
}

func (d *Disk3D) Kind() string        { return "Disk3D" }
func (d *Disk3D) OpticallyThin() bool { return d.Thin }
func (d *Disk3D) RMax() float64       { return d.Grid.Rout }

func (d *Disk3D) Bounds() (rin, rout, zmin, zmax float64) {
	return d.Grid.Rin, d.Grid.Rout, d.Grid.Zmin, d.Grid.Zmax
}

// GetIndices implements §4.4's bit-exact indexing contract.
func (d *Disk3D) GetIndices(pos core.Position4, nu float64, coordKind core.CoordKind) (iNu, iPhi, iZ, iR int, err error) {
	g := d.Grid

	if nu <= g.Nu0 {
		iNu = 0
	} else {
		iNu = int(math.Floor((nu - g.Nu0) / g.DeltaNu))
		if iNu > g.nNu()-1 {
			iNu = g.nNu() - 1
		}
	}

	rCyl, z, phi := cylindrical(pos, coordKind)

	for phi < 0 {
		phi += 2 * math.Pi
	}
	deltaPhi := g.deltaPhi()
	iPhi = int(math.Floor(phi/deltaPhi)) % g.nPhi()

	if z < 0 && g.Zmin >= 0 {
		z = -z
	}

	deltaZ := g.deltaZ()
	zIdx := math.Floor((z - g.Zmin) / deltaZ)
	if zIdx > float64(g.nZ()) {
		return 0, 0, 0, 0, core.NewError(core.GridIndexOutOfRange, "Disk3D.GetIndices",
			fmt.Errorf("z index %g exceeds n_z=%d", zIdx, g.nZ()))
	}
	iZ = int(zIdx)
	if iZ == g.nZ() {
		iZ = g.nZ() - 1
	}

	deltaR := g.deltaR()
	rIdx := math.Floor((rCyl - g.Rin) / deltaR)
	if rIdx > float64(g.nR()) {
		return 0, 0, 0, 0, core.NewError(core.GridIndexOutOfRange, "Disk3D.GetIndices",
			fmt.Errorf("r index %g exceeds n_r=%d", rIdx, g.nR()))
	}
	iR = int(rIdx)
	if iR == g.nR() {
		iR = g.nR() - 1
	}

	return iNu, iPhi, iZ, iR, nil
}

func (d *Disk3D) EmissionCoefficient(iNu, iPhi, iZ, iR int) float64 {
	return d.Grid.EmissQuant[iNu][iPhi][iZ][iR]
}

func (d *Disk3D) AbsorptionCoefficient(iNu, iPhi, iZ, iR int) float64 {
	if d.Thin || d.Grid.Opacity == nil {
		return 0
	}
	return d.Grid.Opacity[iNu][iPhi][iZ][iR]
}

func (d *Disk3D) CellVelocity(iPhi, iZ, iR int) [3]float64 {
	return d.Grid.Velocity[iPhi][iZ][iR]
}

// cylindricalToChartVelocity reconstructs the spatial components of a
// 4-velocity in the active coordinate kind from the tabulated
// cylindrical velocity (phiDot, zDot, rDot), per Disk3D::getVelocity's
// cylindrical-to-spherical chain rule (here generalized to also cover
// the cartesian chart).
func cylindricalToChartVelocity(pos core.Position4, coordKind core.CoordKind, phiDot, zDot, rDot float64) [3]float64 {
	rCyl, z, phi := cylindrical(pos, coordKind)
	switch coordKind {
	case core.Cartesian:
		cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)
		dx := rDot*cosPhi - rCyl*sinPhi*phiDot
		dy := rDot*sinPhi + rCyl*cosPhi*phiDot
		dz := zDot
		return [3]float64{dx, dy, dz}
	default: // core.Spherical
		r := math.Hypot(rCyl, z)
		if r == 0 {
			return [3]float64{0, 0, phiDot}
		}
		dr := (rCyl*rDot + z*zDot) / r
		dtheta := (z*rDot - rCyl*zDot) / (r * r)
		return [3]float64{dr, dtheta, phiDot}
	}
}
