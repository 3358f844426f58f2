// Package xmlscenery deserializes the §6 Scenery XML document into an
// in-memory tree, then lowers that tree into a pkg/scenery.Scenery.
// This is the "external collaborator" boundary §1 explicitly keeps
// out of the core: everything downstream of Build only ever sees
// concrete Go values, never XML.
//
// No example in the retrieval pack parses a domain-specific XML
// config, so the shape here is grounded on the teacher's own
// text-format scene loader (`pkg/loaders/pbrt.go`'s statement-struct
// parse step followed by a separate lowering pass in
// `pkg/scene/scene_discovery.go`) rather than on an XML-specific
// example: a flat Document struct decoded by `encoding/xml`, then a
// `Build` function that walks it into the core types.
package xmlscenery

import (
	"encoding/xml"
	"io"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/units"
)

// Document is the deserialized §6 Scenery XML tree.
type Document struct {
	XMLName    xml.Name      `xml:"Scenery"`
	Metric     MetricElem    `xml:"Metric"`
	Screen     ScreenElem    `xml:"Screen"`
	Astrobj    AstrobjElem   `xml:"Astrobj"`
	Quantities string        `xml:"Quantities"`
	NThreads   int           `xml:"NThreads"`
	NSpectral  int           `xml:"NSpectral"`
	Tuning     TuningElem    `xml:"Tuning"`
}

// MetricElem is the §6 `Metric{kind, ...}` element. Mass is given in
// MassUnit (default "sunmass"); CoordKind selects the chart.
type MetricElem struct {
	Kind      string  `xml:"kind,attr"`
	Mass      float64 `xml:"Mass,attr"`
	MassUnit  string  `xml:"MassUnit,attr"`
	Spin      float64 `xml:"Spin,attr"`
	CoordKind string  `xml:"CoordKind,attr"`
}

// ScreenElem is the §6 `Screen{...}` camera element. FOV, Inclination,
// Distance and Time may carry a sibling `<Field>Unit` attribute; an
// absent unit attribute defaults to "microas" for FOV, "degree" for
// Inclination and "geometrical" for Distance and Time. PositionAngle
// and Argument have no unit attribute and are read as radians.
type ScreenElem struct {
	FOV             float64 `xml:"FOV,attr"`
	FOVUnit         string  `xml:"FOVUnit,attr"`
	Inclination     float64 `xml:"Inclination,attr"`
	InclinationUnit string  `xml:"InclinationUnit,attr"`
	PositionAngle   float64 `xml:"PositionAngle,attr"`
	Argument        float64 `xml:"Argument,attr"`
	Distance        float64 `xml:"Distance,attr"`
	DistanceUnit    string  `xml:"DistanceUnit,attr"`
	Time            float64 `xml:"Time,attr"`
	TimeUnit        string  `xml:"TimeUnit,attr"`
	ResolutionX     int     `xml:"ResolutionX,attr"`
	ResolutionY     int     `xml:"ResolutionY,attr"`
}

// AstrobjElem is the §6 `Astrobj{kind, ...}` emitter element. Only the
// fields relevant to Kind are read; FITS-backed Disk3D uses FITSPath
// and delegates the tabulated grid to pkg/fitsio.
type AstrobjElem struct {
	Kind            string  `xml:"kind,attr"`
	Thin            bool    `xml:"Thin,attr"`
	Radius          float64 `xml:"Radius,attr"`
	LargeRadius     float64 `xml:"LargeRadius,attr"`
	SmallRadius     float64 `xml:"SmallRadius,attr"`
	EmissivityCoeff float64 `xml:"EmissivityCoeff,attr"`
	EmissivityExp   float64 `xml:"EmissivityExp,attr"`
	OpacityCoeff    float64 `xml:"OpacityCoeff,attr"`
	OpacityExp      float64 `xml:"OpacityExp,attr"`
	FITSPath        string  `xml:"FITSPath,attr"`
}

// TuningElem is the §6 integrator tuning element, one attribute per
// pkg/photon.Tuning field.
type TuningElem struct {
	Delta         float64 `xml:"Delta,attr"`
	Adaptive      bool    `xml:"Adaptive,attr"`
	Integrator    string  `xml:"Integrator,attr"`
	AbsTol        float64 `xml:"AbsTol,attr"`
	RelTol        float64 `xml:"RelTol,attr"`
	DeltaMax      float64 `xml:"DeltaMax,attr"`
	DeltaMaxOverR float64 `xml:"DeltaMaxOverR,attr"`
	DeltaMin      float64 `xml:"DeltaMin,attr"`
	Maxiter       int     `xml:"Maxiter,attr"`
	MinimumTime   float64 `xml:"MinimumTime,attr"`
	PrimaryOnly   bool    `xml:"PrimaryOnly,attr"`
}

// Parse decodes a §6 Scenery XML document from r.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, core.NewError(core.Configuration, "xmlscenery.Parse", err)
	}
	return &doc, nil
}

// unitOrDefault resolves s, falling back to def when s is empty —
// every §6 XML unit attribute is optional.
func unitOrDefault(s, def string) (units.Kind, error) {
	if s == "" {
		s = def
	}
	return units.Parse(s)
}
