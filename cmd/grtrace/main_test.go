package main

import (
	"os"
	"path/filepath"
	"testing"
)

const smokeSceneryXML = `<Scenery>
  <Metric kind="Minkowski" CoordKind="Spherical"/>
  <Screen FOV="150" FOVUnit="microas" Inclination="90" InclinationUnit="degree"
          PositionAngle="0" Argument="0" Distance="8" DistanceUnit="kpc"
          Time="30" TimeUnit="yr" ResolutionX="3" ResolutionY="3"/>
  <Astrobj kind="FixedStar" Radius="12" Thin="true"
           EmissivityCoeff="1e-3" EmissivityExp="0" OpacityCoeff="1e-2" OpacityExp="0"/>
  <Quantities>Intensity</Quantities>
  <NThreads>1</NThreads>
  <Tuning Delta="1" Adaptive="false" Integrator="runge_kutta_cash_karp54" Maxiter="200"/>
</Scenery>`

func TestRunMissingSceneryFlagExitsNonZero(t *testing.T) {
	if code := run([]string{}); code == 0 {
		t.Error("expected a non-zero exit code without -scenery")
	}
}

func TestRunHelpExitsZero(t *testing.T) {
	if code := run([]string{"-help"}); code != 0 {
		t.Errorf("run([-help]) = %d, want 0", code)
	}
}

func TestRunTracesAndWritesFITSOutput(t *testing.T) {
	dir := t.TempDir()
	scenPath := filepath.Join(dir, "scene.xml")
	if err := os.WriteFile(scenPath, []byte(smokeSceneryXML), 0o644); err != nil {
		t.Fatalf("write scenery file: %v", err)
	}
	outPath := filepath.Join(dir, "out.fits")

	code := run([]string{"-scenery", scenPath, "-output", outPath})
	if code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output file is empty")
	}
}

func TestRunRejectsUnknownScenery(t *testing.T) {
	code := run([]string{"-scenery", "/nonexistent/scene.xml"})
	if code == 0 {
		t.Error("expected a non-zero exit code for a missing scenery file")
	}
}
