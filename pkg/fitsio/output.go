package fitsio

import (
	"fmt"
	"io"

	"github.com/astrogo/fits"

	"github.com/arlowen/grtrace/pkg/core"
)

// scalarQuantities lists, in a fixed order, the §3 Quantities bits that
// occupy exactly one output slot per pixel, paired with the FITS
// extension name and the Properties field to read.
var scalarQuantities = []struct {
	q    core.Quantity
	name string
	get  func(*core.Properties) *float64
}{
	{core.QuantityIntensity, "INTENSITY", func(p *core.Properties) *float64 { return p.Intensity }},
	{core.QuantityEmissionTime, "EMISSIONTIME", func(p *core.Properties) *float64 { return p.EmissionTime }},
	{core.QuantityMinDistance, "MINDISTANCE", func(p *core.Properties) *float64 { return p.MinDistance }},
	{core.QuantityFirstDistMin, "FIRSTDISTMIN", func(p *core.Properties) *float64 { return p.FirstDistMin }},
	{core.QuantityRedshift, "REDSHIFT", func(p *core.Properties) *float64 { return p.Redshift }},
	{core.QuantityOpacity, "OPACITY", func(p *core.Properties) *float64 { return p.Opacity }},
	{core.QuantityNbCrossEqPlane, "NBCROSSEQPLANE", func(p *core.Properties) *float64 { return p.NbCrossEqPlane }},
}

// WriteProperties serializes a §4.6 output grid to w as one FITS image
// extension per requested quantity, per §6's "caller-owned... column-
// major in (i,j)" output buffer layout. props is row-major
// (props[j*width+i]), matching pkg/dispatch.Grid's storage order.
func WriteProperties(w io.Writer, width, height int, quantities core.Quantities, nSpectral int, props []*core.Properties) error {
	if len(props) != width*height {
		return core.NewError(core.Invariant, "fitsio.WriteProperties",
			fmt.Errorf("got %d properties, want %d (%dx%d)", len(props), width*height, width, height))
	}

	f, err := fits.Create(w)
	if err != nil {
		return core.NewError(core.DataIO, "fitsio.WriteProperties", err)
	}
	defer f.Close()

	primaryHeader := fits.NewHeader([]fits.Card{
		{Name: "RESOLUTX", Value: width},
		{Name: "RESOLUTY", Value: height},
	}, 8, []int{0})
	primary, err := fits.NewImage(primaryHeader, nil)
	if err != nil {
		return core.NewError(core.DataIO, "fitsio.WriteProperties", err)
	}
	if err := f.Write(primary); err != nil {
		return core.NewError(core.DataIO, "fitsio.WriteProperties", err)
	}

	for _, sq := range scalarQuantities {
		if !quantities.Has(sq.q) {
			continue
		}
		data := make([]float64, width*height)
		for idx, p := range props {
			if v := sq.get(p); v != nil {
				data[idx] = *v
			}
		}
		header := fits.NewHeader([]fits.Card{{Name: "EXTNAME", Value: sq.name}}, -64, []int{width, height})
		img, err := fits.NewImage(header, data)
		if err != nil {
			return core.NewError(core.DataIO, "fitsio.WriteProperties", err)
		}
		if err := f.Write(img); err != nil {
			return core.NewError(core.DataIO, "fitsio.WriteProperties", err)
		}
	}

	if quantities.Has(core.QuantitySpectrum) {
		if err := writeSpectralExtension(f, "SPECTRUM", width, height, nSpectral, props,
			func(p *core.Properties) []float64 { return p.Spectrum }); err != nil {
			return err
		}
	}
	if quantities.Has(core.QuantityBinSpectrum) {
		if err := writeSpectralExtension(f, "BINSPECTRUM", width, height, nSpectral, props,
			func(p *core.Properties) []float64 { return p.BinSpectrum }); err != nil {
			return err
		}
	}
	if quantities.Has(core.QuantityImpactCoords) {
		data := make([]float64, width*height*16)
		for idx, p := range props {
			if p.ImpactCoords != nil {
				copy(data[idx*16:idx*16+16], p.ImpactCoords[:])
			}
		}
		header := fits.NewHeader([]fits.Card{{Name: "EXTNAME", Value: "IMPACTCOORDS"}}, -64, []int{16, width, height})
		img, err := fits.NewImage(header, data)
		if err != nil {
			return core.NewError(core.DataIO, "fitsio.WriteProperties", err)
		}
		if err := f.Write(img); err != nil {
			return core.NewError(core.DataIO, "fitsio.WriteProperties", err)
		}
	}

	return nil
}

func writeSpectralExtension(f *fits.File, name string, width, height, nSpectral int, props []*core.Properties, get func(*core.Properties) []float64) error {
	data := make([]float64, width*height*nSpectral)
	for idx, p := range props {
		ch := get(p)
		copy(data[idx*nSpectral:idx*nSpectral+len(ch)], ch)
	}
	header := fits.NewHeader([]fits.Card{{Name: "EXTNAME", Value: name}}, -64, []int{nSpectral, width, height})
	img, err := fits.NewImage(header, data)
	if err != nil {
		return core.NewError(core.DataIO, "fitsio.WriteProperties", err)
	}
	return f.Write(img)
}

// ReadImpactCoords reads back the IMPACTCOORDS extension written by
// WriteProperties, for use as the impactcoords argument to a
// subsequent re-render run (§4.6, §8's idempotence property).
func ReadImpactCoords(r io.Reader) (width, height int, coords [][16]float64, err error) {
	f, ferr := fits.Open(r)
	if ferr != nil {
		return 0, 0, nil, core.NewError(core.DataIO, "fitsio.ReadImpactCoords", ferr)
	}
	defer f.Close()

	hdu, ferr := findExtension(f.HDUs(), "IMPACTCOORDS")
	if ferr != nil {
		return 0, 0, nil, core.NewError(core.DataIO, "fitsio.ReadImpactCoords", ferr)
	}
	axes := hdu.Header().Axes()
	if len(axes) != 3 || axes[0] != 16 {
		return 0, 0, nil, core.NewError(core.DataIO, "fitsio.ReadImpactCoords",
			fmt.Errorf("IMPACTCOORDS: unexpected axes %v", axes))
	}
	width, height = axes[1], axes[2]
	raw, ok := hdu.Data().([]float64)
	if !ok {
		return 0, 0, nil, core.NewError(core.DataIO, "fitsio.ReadImpactCoords",
			fmt.Errorf("IMPACTCOORDS: unexpected data type %T", hdu.Data()))
	}
	coords = make([][16]float64, width*height)
	for idx := range coords {
		copy(coords[idx][:], raw[idx*16:idx*16+16])
	}
	return width, height, coords, nil
}

