package astrobj

import (
	"math"
	"testing"

	"github.com/arlowen/grtrace/pkg/core"
)

func newTestGrid() *DiskGrid {
	nNu, nPhi, nZ, nR := 2, 4, 3, 5
	emiss := make([][][][]float64, nNu)
	for i := range emiss {
		emiss[i] = make([][][]float64, nPhi)
		for j := range emiss[i] {
			emiss[i][j] = make([][]float64, nZ)
			for k := range emiss[i][j] {
				emiss[i][j][k] = make([]float64, nR)
			}
		}
	}
	vel := make([][][][3]float64, nPhi)
	for j := range vel {
		vel[j] = make([][][3]float64, nZ)
		for k := range vel[j] {
			vel[j][k] = make([][3]float64, nR)
		}
	}
	return &DiskGrid{
		RepeatPhi:  1,
		Rin:        2,
		Rout:       12,
		Zmin:       0,
		Zmax:       3,
		Nu0:        1,
		DeltaNu:    1,
		EmissQuant: emiss,
		Velocity:   vel,
	}
}

func TestDisk3DGetIndicesNuClamp(t *testing.T) {
	d := &Disk3D{Grid: newTestGrid()}
	pos := core.Position4{0, 5, math.Pi / 2, 0}
	iNu, _, _, _, err := d.GetIndices(pos, 0.5, core.Spherical)
	if err != nil {
		t.Fatalf("GetIndices: %v", err)
	}
	if iNu != 0 {
		t.Errorf("iNu = %d, want 0 for nu <= nu0", iNu)
	}
}

func TestDisk3DGetIndicesZSymmetry(t *testing.T) {
	d := &Disk3D{Grid: newTestGrid()}
	// theta slightly above pi/2 puts z < 0; Zmin=0 triggers mirroring.
	posAbove := core.Position4{0, 5, math.Pi/2 - 0.3, 0}
	posBelow := core.Position4{0, 5, math.Pi/2 + 0.3, 0}
	_, _, iz1, _, err := d.GetIndices(posAbove, 0.5, core.Spherical)
	if err != nil {
		t.Fatalf("GetIndices: %v", err)
	}
	_, _, iz2, _, err := d.GetIndices(posBelow, 0.5, core.Spherical)
	if err != nil {
		t.Fatalf("GetIndices: %v", err)
	}
	if iz1 != iz2 {
		t.Errorf("mirrored z indices differ: %d vs %d", iz1, iz2)
	}
}

func TestDisk3DGetIndicesOutOfRangeIsFatal(t *testing.T) {
	d := &Disk3D{Grid: newTestGrid()}
	pos := core.Position4{0, 5, math.Pi/2 - 2, 0} // huge |z|, way above Zmax
	_, _, _, _, err := d.GetIndices(pos, 0.5, core.Spherical)
	if err == nil {
		t.Errorf("expected GridIndexOutOfRange for z far outside [Zmin,Zmax]")
	}
}

func TestCylindricalToChartVelocitySpherical(t *testing.T) {
	pos := core.Position4{0, 5, math.Pi / 2, 0} // equatorial: r_cyl=5, z=0
	v := cylindricalToChartVelocity(pos, core.Spherical, 0.2, 0, 0.1)
	if math.Abs(v[0]-0.1) > 1e-12 {
		t.Errorf("dr/dtau = %g, want 0.1 (purely radial at equator)", v[0])
	}
	if math.Abs(v[2]-0.2) > 1e-12 {
		t.Errorf("dphi/dtau = %g, want 0.2 (passthrough)", v[2])
	}
}
