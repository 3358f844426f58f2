package fitsio

import (
	"bytes"
	"testing"

	"github.com/arlowen/grtrace/pkg/astrobj"
)

func smallGrid() *astrobj.DiskGrid {
	g := &astrobj.DiskGrid{
		RepeatPhi: 4, Rin: 2, Rout: 20, Zmin: 0, Zmax: 5,
		Nu0: 1e14, DeltaNu: 1e12,
	}
	nNu, nPhi, nZ, nR := 2, 3, 2, 4
	g.EmissQuant = make([][][][]float64, nNu)
	g.Velocity = make([][][][3]float64, nPhi)
	for iPhi := 0; iPhi < nPhi; iPhi++ {
		g.Velocity[iPhi] = make([][][3]float64, nZ)
		for iZ := 0; iZ < nZ; iZ++ {
			g.Velocity[iPhi][iZ] = make([][3]float64, nR)
			for iR := 0; iR < nR; iR++ {
				g.Velocity[iPhi][iZ][iR] = [3]float64{0.1, 0, float64(iR) * 0.01}
			}
		}
	}
	for iNu := 0; iNu < nNu; iNu++ {
		g.EmissQuant[iNu] = make([][][]float64, nPhi)
		for iPhi := 0; iPhi < nPhi; iPhi++ {
			g.EmissQuant[iNu][iPhi] = make([][]float64, nZ)
			for iZ := 0; iZ < nZ; iZ++ {
				g.EmissQuant[iNu][iPhi][iZ] = make([]float64, nR)
				for iR := 0; iR < nR; iR++ {
					g.EmissQuant[iNu][iPhi][iZ][iR] = float64(iNu*1000 + iPhi*100 + iZ*10 + iR)
				}
			}
		}
	}
	return g
}

func TestWriteThenReadDiskGridRoundTrips(t *testing.T) {
	grid := smallGrid()
	var buf bytes.Buffer
	if err := WriteDiskGrid(&buf, grid); err != nil {
		t.Fatalf("WriteDiskGrid: %v", err)
	}

	got, err := ReadDiskGrid(&buf)
	if err != nil {
		t.Fatalf("ReadDiskGrid: %v", err)
	}

	if got.RepeatPhi != grid.RepeatPhi || got.Rin != grid.Rin || got.Rout != grid.Rout ||
		got.Zmin != grid.Zmin || got.Zmax != grid.Zmax {
		t.Errorf("scalar metadata mismatch: got %+v, want RepeatPhi=%d Rin=%g Rout=%g Zmin=%g Zmax=%g",
			got, grid.RepeatPhi, grid.Rin, grid.Rout, grid.Zmin, grid.Zmax)
	}
	if got.Nu0 != grid.Nu0 || got.DeltaNu != grid.DeltaNu {
		t.Errorf("axis-1 scaling mismatch: got Nu0=%g DeltaNu=%g, want Nu0=%g DeltaNu=%g",
			got.Nu0, got.DeltaNu, grid.Nu0, grid.DeltaNu)
	}

	nNu, nPhi, nZ, nR := diskGridDims(grid)
	for iNu := 0; iNu < nNu; iNu++ {
		for iPhi := 0; iPhi < nPhi; iPhi++ {
			for iZ := 0; iZ < nZ; iZ++ {
				for iR := 0; iR < nR; iR++ {
					if got.EmissQuant[iNu][iPhi][iZ][iR] != grid.EmissQuant[iNu][iPhi][iZ][iR] {
						t.Fatalf("EmissQuant[%d][%d][%d][%d] = %v, want %v",
							iNu, iPhi, iZ, iR, got.EmissQuant[iNu][iPhi][iZ][iR], grid.EmissQuant[iNu][iPhi][iZ][iR])
					}
				}
			}
		}
	}
	for iPhi := 0; iPhi < nPhi; iPhi++ {
		for iZ := 0; iZ < nZ; iZ++ {
			for iR := 0; iR < nR; iR++ {
				if got.Velocity[iPhi][iZ][iR] != grid.Velocity[iPhi][iZ][iR] {
					t.Fatalf("Velocity[%d][%d][%d] = %v, want %v",
						iPhi, iZ, iR, got.Velocity[iPhi][iZ][iR], grid.Velocity[iPhi][iZ][iR])
				}
			}
		}
	}
}
