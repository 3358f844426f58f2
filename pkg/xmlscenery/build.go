package xmlscenery

import (
	"fmt"
	"os"

	"github.com/arlowen/grtrace/pkg/astrobj"
	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/fitsio"
	"github.com/arlowen/grtrace/pkg/metric"
	"github.com/arlowen/grtrace/pkg/photon"
	"github.com/arlowen/grtrace/pkg/scenery"
	"github.com/arlowen/grtrace/pkg/screen"
	"github.com/arlowen/grtrace/pkg/units"
)

// Build lowers a parsed Document into a ready-to-run scenery.Scenery,
// resolving every unit-bearing attribute through pkg/units along the
// way (§6: "conversion is delegated to the units collaborator").
func Build(doc *Document) (*scenery.Scenery, error) {
	m, err := buildMetric(doc.Metric)
	if err != nil {
		return nil, err
	}

	scr, err := buildScreen(doc.Screen, m, metricMassSunmass(m))
	if err != nil {
		return nil, err
	}

	obj, err := buildAstrobj(doc.Astrobj)
	if err != nil {
		return nil, err
	}

	tune := buildTuning(doc.Tuning)

	quantities, err := core.ParseQuantities(doc.Quantities)
	if err != nil {
		return nil, core.NewError(core.Configuration, "xmlscenery.Build", err)
	}

	nSpectral := doc.NSpectral
	if nSpectral <= 0 {
		nSpectral = 1
	}

	return scenery.New(m, scr, obj, tune,
		scenery.WithQuantities(quantities),
		scenery.WithNSpectral(nSpectral),
		scenery.WithNThreads(doc.NThreads))
}

func buildMetric(e MetricElem) (metric.Metric, error) {
	switch e.Kind {
	case "Minkowski":
		coordKind, err := parseCoordKind(e.CoordKind)
		if err != nil {
			return nil, err
		}
		return metric.NewMinkowski(coordKind), nil
	case "Kerr", "KerrBL":
		massUnit, err := unitOrDefault(e.MassUnit, "sunmass")
		if err != nil {
			return nil, core.NewError(core.Configuration, "xmlscenery.buildMetric", err)
		}
		massSunmass, err := units.ToSunmass(e.Mass, massUnit)
		if err != nil {
			return nil, core.NewError(core.Configuration, "xmlscenery.buildMetric", err)
		}
		return metric.NewKerr(massSunmass, e.Spin), nil
	default:
		return nil, core.NewError(core.Configuration, "xmlscenery.buildMetric",
			fmt.Errorf("unrecognized Metric kind %q", e.Kind))
	}
}

func parseCoordKind(s string) (core.CoordKind, error) {
	switch s {
	case "", "Spherical":
		return core.Spherical, nil
	case "Cartesian":
		return core.Cartesian, nil
	default:
		return 0, core.NewError(core.Configuration, "xmlscenery.parseCoordKind",
			fmt.Errorf("unrecognized CoordKind %q", s))
	}
}

// metricMassSunmass extracts the mass, in solar masses, that the
// units collaborator needs to convert a Screen's kpc/yr attributes
// into geometrical units. Minkowski has no intrinsic mass scale, so
// 1 solar mass is used as a nominal reference (a Kerr metric's own
// Mass is used instead, so only the Minkowski branch's
// geometrical-unit conversions depend on this choice).
func metricMassSunmass(m metric.Metric) float64 {
	if k, ok := m.(*metric.Kerr); ok {
		return k.Mass
	}
	return 1
}

func buildScreen(e ScreenElem, m metric.Metric, massSunmass float64) (*screen.Screen, error) {
	fovUnit, err := unitOrDefault(e.FOVUnit, "microas")
	if err != nil {
		return nil, core.NewError(core.Configuration, "xmlscenery.buildScreen", err)
	}
	fov, err := units.ToRadians(e.FOV, fovUnit)
	if err != nil {
		return nil, core.NewError(core.Configuration, "xmlscenery.buildScreen", err)
	}

	inclUnit, err := unitOrDefault(e.InclinationUnit, "degree")
	if err != nil {
		return nil, core.NewError(core.Configuration, "xmlscenery.buildScreen", err)
	}
	inclination, err := units.ToRadians(e.Inclination, inclUnit)
	if err != nil {
		return nil, core.NewError(core.Configuration, "xmlscenery.buildScreen", err)
	}

	distUnit, err := unitOrDefault(e.DistanceUnit, "geometrical")
	if err != nil {
		return nil, core.NewError(core.Configuration, "xmlscenery.buildScreen", err)
	}
	distance, err := units.ToGeometricalLength(e.Distance, distUnit, massSunmass)
	if err != nil {
		return nil, core.NewError(core.Configuration, "xmlscenery.buildScreen", err)
	}

	timeUnit, err := unitOrDefault(e.TimeUnit, "geometrical")
	if err != nil {
		return nil, core.NewError(core.Configuration, "xmlscenery.buildScreen", err)
	}
	t, err := units.ToGeometricalTime(e.Time, timeUnit, massSunmass)
	if err != nil {
		return nil, core.NewError(core.Configuration, "xmlscenery.buildScreen", err)
	}

	resX, resY := e.ResolutionX, e.ResolutionY
	if resX <= 0 || resY <= 0 {
		return nil, core.NewError(core.Configuration, "xmlscenery.buildScreen",
			fmt.Errorf("ResolutionX/ResolutionY must both be positive, got %d/%d", resX, resY))
	}

	return screen.New(m, fov, inclination, e.PositionAngle, e.Argument, distance, t, resX, resY), nil
}

func buildAstrobj(e AstrobjElem) (astrobj.Astrobj, error) {
	switch e.Kind {
	case "FixedStar":
		return &astrobj.FixedStar{
			Radius: e.Radius, Thin: e.Thin,
			EmissivityCoeff: e.EmissivityCoeff, EmissivityExp: e.EmissivityExp,
			OpacityCoeff: e.OpacityCoeff, OpacityExp: e.OpacityExp,
		}, nil
	case "Torus":
		return &astrobj.Torus{
			LargeRadius: e.LargeRadius, SmallRadius: e.SmallRadius, Thin: e.Thin,
			EmissivityCoeff: e.EmissivityCoeff, EmissivityExp: e.EmissivityExp,
			OpacityCoeff: e.OpacityCoeff, OpacityExp: e.OpacityExp,
		}, nil
	case "Disk3D":
		if e.FITSPath == "" {
			return nil, core.NewError(core.Configuration, "xmlscenery.buildAstrobj",
				fmt.Errorf("Astrobj kind=Disk3D requires a FITSPath attribute"))
		}
		f, err := os.Open(e.FITSPath)
		if err != nil {
			return nil, core.NewError(core.DataIO, "xmlscenery.buildAstrobj", err)
		}
		defer f.Close()
		grid, err := fitsio.ReadDiskGrid(f)
		if err != nil {
			return nil, err
		}
		return &astrobj.Disk3D{Grid: grid, Thin: e.Thin}, nil
	default:
		return nil, core.NewError(core.Configuration, "xmlscenery.buildAstrobj",
			fmt.Errorf("unrecognized Astrobj kind %q", e.Kind))
	}
}

func buildTuning(e TuningElem) photon.Tuning {
	opts := []photon.Option{
		photon.WithAdaptive(e.Adaptive),
		photon.WithPrimaryOnly(e.PrimaryOnly),
	}
	if e.Delta != 0 {
		opts = append(opts, photon.WithDelta(e.Delta))
	}
	if e.Integrator != "" {
		opts = append(opts, photon.WithIntegrator(photon.IntegratorKind(e.Integrator)))
	}
	if e.AbsTol != 0 {
		opts = append(opts, photon.WithAbsTol(e.AbsTol))
	}
	if e.RelTol != 0 {
		opts = append(opts, photon.WithRelTol(e.RelTol))
	}
	if e.DeltaMax != 0 {
		opts = append(opts, photon.WithDeltaMax(e.DeltaMax))
	}
	if e.DeltaMaxOverR != 0 {
		opts = append(opts, photon.WithDeltaMaxOverR(e.DeltaMaxOverR))
	}
	if e.DeltaMin != 0 {
		opts = append(opts, photon.WithDeltaMin(e.DeltaMin))
	}
	if e.Maxiter != 0 {
		opts = append(opts, photon.WithMaxiter(e.Maxiter))
	}
	if e.MinimumTime != 0 {
		opts = append(opts, photon.WithMinimumTime(e.MinimumTime))
	}
	return photon.NewTuning(opts...)
}
