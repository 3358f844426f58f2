package xmlscenery

import (
	"strings"
	"testing"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
)

const scenario1XML = `<Scenery>
  <Metric kind="Minkowski" CoordKind="Spherical"/>
  <Screen FOV="150" FOVUnit="microas" Inclination="90" InclinationUnit="degree"
          PositionAngle="0" Argument="0" Distance="8" DistanceUnit="kpc"
          Time="30" TimeUnit="yr" ResolutionX="32" ResolutionY="32"/>
  <Astrobj kind="FixedStar" Radius="12" Thin="true"
           EmissivityCoeff="1e-3" EmissivityExp="0" OpacityCoeff="1e-2" OpacityExp="0"/>
  <Quantities>Intensity</Quantities>
  <NThreads>1</NThreads>
  <Tuning Delta="1" Adaptive="false" Integrator="runge_kutta_cash_karp54" Maxiter="200"/>
</Scenery>`

func TestParseAndBuildScenario1(t *testing.T) {
	doc, err := Parse(strings.NewReader(scenario1XML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Metric.Kind != "Minkowski" {
		t.Errorf("Metric.Kind = %q, want Minkowski", doc.Metric.Kind)
	}
	if doc.Screen.ResolutionX != 32 || doc.Screen.ResolutionY != 32 {
		t.Errorf("Screen resolution = %dx%d, want 32x32", doc.Screen.ResolutionX, doc.Screen.ResolutionY)
	}

	scn, err := Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := scn.Metric.(*metric.Minkowski); !ok {
		t.Errorf("Metric = %T, want *metric.Minkowski", scn.Metric)
	}
	if scn.Screen.ResolutionX != 32 {
		t.Errorf("Screen.ResolutionX = %d, want 32", scn.Screen.ResolutionX)
	}
	if !scn.Quantities.Has(core.QuantityIntensity) {
		t.Errorf("Quantities does not include Intensity")
	}
}

func TestBuildRejectsUnknownMetricKind(t *testing.T) {
	doc := &Document{Metric: MetricElem{Kind: "Alcubierre"}}
	if _, err := Build(doc); err == nil {
		t.Errorf("expected a Configuration error for an unrecognized Metric kind")
	}
}

func TestBuildRejectsZeroResolution(t *testing.T) {
	doc := &Document{
		Metric:  MetricElem{Kind: "Minkowski"},
		Screen:  ScreenElem{FOV: 1, ResolutionX: 0, ResolutionY: 10},
		Astrobj: AstrobjElem{Kind: "FixedStar", Radius: 1},
	}
	if _, err := Build(doc); err == nil {
		t.Errorf("expected a Configuration error for ResolutionX=0")
	}
}
