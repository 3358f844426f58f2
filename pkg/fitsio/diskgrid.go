// Package fitsio reads and writes the tabulated-emitter FITS file of
// §6: scalar metadata (RepeatPhi, Rin, Rout, Zmin, Zmax) in the
// primary HDU, a 4-D `emissquant` image extension with axis-1 linear
// scaling headers, and a 4-D `velocity` image extension.
//
// No example in the retrieval pack uses github.com/astrogo/fits
// directly; this package is grounded on §6's byte-level contract and
// on the astrogo/fits package's own published API (File/HDU/Header/
// Card), following the same low-level multi-extension-image shape
// Gyoto's own `Disk3D::fitsRead`/`fitsWrite` implement.
package fitsio

import (
	"fmt"
	"io"

	"github.com/astrogo/fits"

	"github.com/arlowen/grtrace/pkg/astrobj"
	"github.com/arlowen/grtrace/pkg/core"
)

const (
	extEmissQuant = "emissquant"
	extVelocity   = "velocity"
)

// ReadDiskGrid parses a §6 tabulated-emitter FITS file from r into a
// DiskGrid ready for astrobj.Disk3D.
func ReadDiskGrid(r io.Reader) (*astrobj.DiskGrid, error) {
	f, err := fits.Open(r)
	if err != nil {
		return nil, core.NewError(core.DataIO, "fitsio.ReadDiskGrid", err)
	}
	defer f.Close()

	hdus := f.HDUs()
	if len(hdus) == 0 {
		return nil, core.NewError(core.DataIO, "fitsio.ReadDiskGrid", fmt.Errorf("empty FITS file"))
	}
	primary := hdus[0].Header()

	grid := &astrobj.DiskGrid{}
	if err := requireInt(primary, "REPEATPH", &grid.RepeatPhi); err != nil {
		return nil, core.NewError(core.DataIO, "fitsio.ReadDiskGrid", err)
	}
	for _, field := range []struct {
		key string
		dst *float64
	}{
		{"RIN", &grid.Rin}, {"ROUT", &grid.Rout},
		{"ZMIN", &grid.Zmin}, {"ZMAX", &grid.Zmax},
	} {
		if err := requireFloat(primary, field.key, field.dst); err != nil {
			return nil, core.NewError(core.DataIO, "fitsio.ReadDiskGrid", err)
		}
	}

	emissHDU, err := findExtension(hdus, extEmissQuant)
	if err != nil {
		return nil, core.NewError(core.DataIO, "fitsio.ReadDiskGrid", err)
	}
	quant, opacity, nu0, deltaNu, dims, err := readEmissQuant(emissHDU)
	if err != nil {
		return nil, core.NewError(core.DataIO, "fitsio.ReadDiskGrid", err)
	}
	grid.EmissQuant = quant
	grid.Opacity = opacity
	grid.Nu0 = nu0
	grid.DeltaNu = deltaNu

	velHDU, err := findExtension(hdus, extVelocity)
	if err != nil {
		return nil, core.NewError(core.DataIO, "fitsio.ReadDiskGrid", err)
	}
	vel, err := readVelocity(velHDU, dims)
	if err != nil {
		return nil, core.NewError(core.DataIO, "fitsio.ReadDiskGrid", err)
	}
	grid.Velocity = vel

	return grid, nil
}

func findExtension(hdus []fits.HDU, name string) (fits.HDU, error) {
	for _, h := range hdus {
		if card := h.Header().Get("EXTNAME"); card != nil {
			if s, ok := card.Value.(string); ok && s == name {
				return h, nil
			}
		}
	}
	return nil, fmt.Errorf("no %q extension found", name)
}

func requireInt(h fits.Header, key string, dst *int) error {
	card := h.Get(key)
	if card == nil {
		return fmt.Errorf("missing mandatory keyword %q", key)
	}
	switch v := card.Value.(type) {
	case int64:
		*dst = int(v)
	case int:
		*dst = v
	case float64:
		*dst = int(v)
	default:
		return fmt.Errorf("keyword %q has unexpected type %T", key, v)
	}
	return nil
}

func requireFloat(h fits.Header, key string, dst *float64) error {
	card := h.Get(key)
	if card == nil {
		return fmt.Errorf("missing mandatory keyword %q", key)
	}
	switch v := card.Value.(type) {
	case float64:
		*dst = v
	case float32:
		*dst = float64(v)
	case int64:
		*dst = float64(v)
	default:
		return fmt.Errorf("keyword %q has unexpected type %T", key, v)
	}
	return nil
}

// readEmissQuant decodes the mandatory `emissquant` extension: a 4-D
// image with axis order (n_r, n_z, n_phi, n_nu) in FITS's
// fastest-varying-first convention, reshaped here to the
// [iNu][iPhi][iZ][iR] Go-native order DiskGrid expects. This format's
// `emissquant` extension is emission-only per §6, and no opacity is
// read from the file: the returned opacity is always nil, so
// Disk3D.AbsorptionCoefficient returns 0 (equivalent to treating the
// disk as optically thin).
func readEmissQuant(h fits.HDU) (quant, opacity [][][][]float64, nu0, deltaNu float64, dims [3]int, err error) {
	header := h.Header()
	if err = requireFloat(header, "CRVAL1", &nu0); err != nil {
		return nil, nil, 0, 0, dims, err
	}
	if err = requireFloat(header, "CDELT1", &deltaNu); err != nil {
		return nil, nil, 0, 0, dims, err
	}
	crpix1 := 1.0
	if card := header.Get("CRPIX1"); card != nil {
		if v, ok := card.Value.(float64); ok {
			crpix1 = v
		}
	}
	if crpix1 != 1 {
		nu0 -= deltaNu * (crpix1 - 1) // §6: rebase so the stored Nu0 is always at pixel 1
	}

	axes := header.Axes()
	if len(axes) != 4 {
		return nil, nil, 0, 0, dims, fmt.Errorf("emissquant: expected 4 axes, got %d", len(axes))
	}
	nR, nZ, nPhi, nNu := axes[0], axes[1], axes[2], axes[3]
	dims = [3]int{nPhi, nZ, nR}

	raw, ok := h.Data().([]float64)
	if !ok {
		return nil, nil, 0, 0, dims, fmt.Errorf("emissquant: unexpected data type %T", h.Data())
	}
	quant = reshape4D(raw, nNu, nPhi, nZ, nR)
	return quant, nil, nu0, deltaNu, dims, nil
}

// readVelocity decodes the mandatory `velocity` extension: a 4-D
// image (3, n_phi, n_z, n_r) storing (phi', z', r'), whose trailing
// three axes must match emissquant's (§6).
func readVelocity(h fits.HDU, dims [3]int) ([][][][3]float64, error) {
	header := h.Header()
	axes := header.Axes()
	if len(axes) != 4 {
		return nil, fmt.Errorf("velocity: expected 4 axes, got %d", len(axes))
	}
	nR, nZ, nPhi, three := axes[0], axes[1], axes[2], axes[3]
	if three != 3 {
		return nil, fmt.Errorf("velocity: axis 4 must have length 3 (phi',z',r'), got %d", three)
	}
	if [3]int{nPhi, nZ, nR} != dims {
		return nil, fmt.Errorf("velocity: trailing dims %v do not match emissquant's %v", [3]int{nPhi, nZ, nR}, dims)
	}

	raw, ok := h.Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("velocity: unexpected data type %T", h.Data())
	}

	vel := make([][][][3]float64, nPhi)
	idx := 0
	for iPhi := 0; iPhi < nPhi; iPhi++ {
		vel[iPhi] = make([][][3]float64, nZ)
		for iZ := 0; iZ < nZ; iZ++ {
			vel[iPhi][iZ] = make([][3]float64, nR)
			for iR := 0; iR < nR; iR++ {
				for c := 0; c < 3; c++ {
					vel[iPhi][iZ][iR][c] = raw[idx]
					idx++
				}
			}
		}
	}
	return vel, nil
}

func reshape4D(raw []float64, nNu, nPhi, nZ, nR int) [][][][]float64 {
	out := make([][][][]float64, nNu)
	idx := 0
	for iNu := 0; iNu < nNu; iNu++ {
		out[iNu] = make([][][]float64, nPhi)
		for iPhi := 0; iPhi < nPhi; iPhi++ {
			out[iNu][iPhi] = make([][]float64, nZ)
			for iZ := 0; iZ < nZ; iZ++ {
				out[iNu][iPhi][iZ] = make([]float64, nR)
				for iR := 0; iR < nR; iR++ {
					out[iNu][iPhi][iZ][iR] = raw[idx]
					idx++
				}
			}
		}
	}
	return out
}

// WriteDiskGrid serializes grid to w in the §6 layout: a primary HDU
// carrying RepeatPhi/Rin/Rout/Zmin/Zmax, followed by the emissquant
// and velocity image extensions.
func WriteDiskGrid(w io.Writer, grid *astrobj.DiskGrid) error {
	f, err := fits.Create(w)
	if err != nil {
		return core.NewError(core.DataIO, "fitsio.WriteDiskGrid", err)
	}
	defer f.Close()

	primaryHeader := fits.NewHeader([]fits.Card{
		{Name: "REPEATPH", Value: grid.RepeatPhi, Comment: "repeat count in phi"},
		{Name: "RIN", Value: grid.Rin, Comment: "inner radius"},
		{Name: "ROUT", Value: grid.Rout, Comment: "outer radius"},
		{Name: "ZMIN", Value: grid.Zmin, Comment: "lower z bound"},
		{Name: "ZMAX", Value: grid.Zmax, Comment: "upper z bound"},
	}, 8, []int{0})
	primary, err := fits.NewImage(primaryHeader, nil)
	if err != nil {
		return core.NewError(core.DataIO, "fitsio.WriteDiskGrid", err)
	}
	if err := f.Write(primary); err != nil {
		return core.NewError(core.DataIO, "fitsio.WriteDiskGrid", err)
	}

	nNu, nPhi, nZ, nR := diskGridDims(grid)
	emissHeader := fits.NewHeader([]fits.Card{
		{Name: "EXTNAME", Value: extEmissQuant},
		{Name: "CRVAL1", Value: grid.Nu0, Comment: "reference frequency"},
		{Name: "CDELT1", Value: grid.DeltaNu, Comment: "frequency step"},
		{Name: "CRPIX1", Value: 1.0, Comment: "reference pixel (already rebased)"},
	}, -64, []int{nR, nZ, nPhi, nNu})
	emissImg, err := fits.NewImage(emissHeader, flatten4D(grid.EmissQuant, nNu, nPhi, nZ, nR))
	if err != nil {
		return core.NewError(core.DataIO, "fitsio.WriteDiskGrid", err)
	}
	if err := f.Write(emissImg); err != nil {
		return core.NewError(core.DataIO, "fitsio.WriteDiskGrid", err)
	}

	velHeader := fits.NewHeader([]fits.Card{
		{Name: "EXTNAME", Value: extVelocity},
	}, -64, []int{nR, nZ, nPhi, 3})
	velImg, err := fits.NewImage(velHeader, flattenVelocity(grid.Velocity, nPhi, nZ, nR))
	if err != nil {
		return core.NewError(core.DataIO, "fitsio.WriteDiskGrid", err)
	}
	if err := f.Write(velImg); err != nil {
		return core.NewError(core.DataIO, "fitsio.WriteDiskGrid", err)
	}

	return nil
}

// diskGridDims derives the grid's four axis lengths from the shape of
// EmissQuant, since DiskGrid keeps no redundant size fields.
func diskGridDims(grid *astrobj.DiskGrid) (nNu, nPhi, nZ, nR int) {
	nNu = len(grid.EmissQuant)
	if nNu == 0 {
		return
	}
	nPhi = len(grid.EmissQuant[0])
	if nPhi == 0 {
		return
	}
	nZ = len(grid.EmissQuant[0][0])
	if nZ == 0 {
		return
	}
	nR = len(grid.EmissQuant[0][0][0])
	return
}

func flatten4D(data [][][][]float64, nNu, nPhi, nZ, nR int) []float64 {
	out := make([]float64, 0, nNu*nPhi*nZ*nR)
	for iNu := 0; iNu < nNu; iNu++ {
		for iPhi := 0; iPhi < nPhi; iPhi++ {
			for iZ := 0; iZ < nZ; iZ++ {
				out = append(out, data[iNu][iPhi][iZ]...)
			}
		}
	}
	return out
}

func flattenVelocity(data [][][][3]float64, nPhi, nZ, nR int) []float64 {
	out := make([]float64, 0, nPhi*nZ*nR*3)
	for iPhi := 0; iPhi < nPhi; iPhi++ {
		for iZ := 0; iZ < nZ; iZ++ {
			for iR := 0; iR < nR; iR++ {
				out = append(out, data[iPhi][iZ][iR][0], data[iPhi][iZ][iR][1], data[iPhi][iZ][iR][2])
			}
		}
	}
	return out
}
