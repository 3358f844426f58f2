// Command grtrace is the §6/§10.4 CLI surface: a single command taking
// a scenery XML file and an output descriptor, deliberately kept
// external to the traced core per §1's "CLI surface (not core)" note.
//
// Flag parsing and the startup/completion messages follow the
// teacher's main.go shape (flag.String/flag.Bool, a -help usage dump,
// os.MkdirAll for the output directory, a timestamped default output
// filename) rather than any third-party CLI framework — no example in
// the retrieval pack reaches for one.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/dispatch"
	"github.com/arlowen/grtrace/pkg/fitsio"
	"github.com/arlowen/grtrace/pkg/scenery"
	"github.com/arlowen/grtrace/pkg/xmlscenery"
	"github.com/arlowen/grtrace/web"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements the full CLI and returns the process exit code,
// keeping main itself trivial and testable-by-inspection.
func run(args []string) int {
	fs := flag.NewFlagSet("grtrace", flag.ContinueOnError)
	scenPath := fs.String("scenery", "", "path to a §6 Scenery XML document (required)")
	outPath := fs.String("output", "", "output FITS path (default: output/render_<timestamp>.fits)")
	nthreads := fs.Int("nthreads", 0, "override the scenery's NThreads (0 = use the file's value)")
	dashboardAddr := fs.String("dashboard", "", "serve a live-preview dashboard at this address (e.g. :8080) while rendering")
	rerenderFrom := fs.String("rerender-impactcoords", "", "re-render from a prior run's IMPACTCOORDS extension instead of integrating geodesics")
	coordinatorAddr := fs.String("coordinator", "", "run as a §5 distributed coordinator, listening on this address")
	workerAddr := fs.String("worker", "", "run as a §5 distributed worker, connecting to this coordinator address")
	help := fs.Bool("help", false, "show help information")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		printHelp(fs)
		return 0
	}

	logger := core.NewDefaultLogger()

	if *scenPath == "" {
		logger.Printf("grtrace: -scenery is required\n")
		return 2
	}

	scn, err := loadScenery(*scenPath, *nthreads)
	if err != nil {
		return reportAndExit(logger, err)
	}

	if *workerAddr != "" {
		logger.Printf("grtrace: running as distributed worker, connecting to %s\n", *workerAddr)
		if err := dispatch.RunWorker(*workerAddr, scn); err != nil {
			return reportAndExit(logger, err)
		}
		logger.Printf("grtrace: worker drained, exiting\n")
		return 0
	}

	width, height := scn.Screen.ResolutionX, scn.Screen.ResolutionY
	out := dispatch.NewGrid(width, height, scn.Quantities, scn.NSpectral)

	var dash *web.Dashboard
	if *dashboardAddr != "" {
		dash = web.NewDashboard(width, height, logger)
		lis, err := net.Listen("tcp", *dashboardAddr)
		if err != nil {
			return reportAndExit(logger, core.NewError(core.Configuration, "grtrace.main", err))
		}
		go dash.Serve(lis)
		logger.Printf("grtrace: live preview at http://%s/\n", *dashboardAddr)
	}

	startTime := time.Now()

	if *rerenderFrom != "" {
		logger.Printf("grtrace: re-rendering from %s\n", *rerenderFrom)
		if err := rerenderFromImpact(*rerenderFrom, scn, out, dash); err != nil {
			return reportAndExit(logger, err)
		}
	} else if *coordinatorAddr != "" {
		logger.Printf("grtrace: running as distributed coordinator on %s (%dx%d pixels)\n", *coordinatorAddr, width, height)
		if err := runCoordinator(*coordinatorAddr, *scenPath, out, dash); err != nil {
			return reportAndExit(logger, err)
		}
	} else {
		logger.Printf("grtrace: tracing %dx%d pixels with %d threads\n", width, height, scn.EffectiveThreads())
		if err := traceWithDashboard(scn, out, dash); err != nil {
			return reportAndExit(logger, err)
		}
	}

	renderTime := time.Since(startTime)
	logger.Printf("grtrace: trace completed in %v\n", renderTime)

	finalOut := *outPath
	if finalOut == "" {
		finalOut = defaultOutputPath()
	}
	if err := writeOutput(finalOut, scn, out); err != nil {
		return reportAndExit(logger, err)
	}
	logger.Printf("grtrace: wrote %s\n", finalOut)
	return 0
}

func loadScenery(path string, nthreadsOverride int) (*scenery.Scenery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewError(core.DataIO, "grtrace.loadScenery", err)
	}
	defer f.Close()

	doc, err := xmlscenery.Parse(f)
	if err != nil {
		return nil, err
	}
	if nthreadsOverride > 0 {
		doc.NThreads = nthreadsOverride
	}
	return xmlscenery.Build(doc)
}

// traceWithDashboard runs RayTrace and, when a dashboard was requested
// (§10.5), publishes the finished grid to dash once tracing completes.
func traceWithDashboard(scn *scenery.Scenery, out *dispatch.Grid, dash *web.Dashboard) error {
	if err := dispatch.RayTrace(context.Background(), scn, 0, out.Width, 0, out.Height, out); err != nil {
		return err
	}
	if dash != nil {
		dash.PublishGrid(out)
	}
	return nil
}

func rerenderFromImpact(path string, scn *scenery.Scenery, out *dispatch.Grid, dash *web.Dashboard) error {
	f, err := os.Open(path)
	if err != nil {
		return core.NewError(core.DataIO, "grtrace.rerenderFromImpact", err)
	}
	defer f.Close()

	width, height, coords, err := fitsio.ReadImpactCoords(f)
	if err != nil {
		return err
	}
	if width != out.Width || height != out.Height {
		return core.NewError(core.Configuration, "grtrace.rerenderFromImpact",
			fmt.Errorf("impact coords are %dx%d, scenery screen is %dx%d", width, height, out.Width, out.Height))
	}

	if err := dispatch.RayTraceFromImpact(scn, coords, out); err != nil {
		return err
	}
	if dash != nil {
		dash.PublishGrid(out)
	}
	return nil
}

func runCoordinator(addr, scenPath string, out *dispatch.Grid, dash *web.Dashboard) error {
	width, height := out.Width, out.Height
	tasks := []dispatch.PixelTask{{IMin: 0, IMax: width, JMin: 0, JMax: height, TaskID: 0}}
	coord := dispatch.NewCoordinator(scenPath, tasks, out, nil)

	lis, err := dispatch.Serve(addr, coord)
	if err != nil {
		return err
	}
	defer lis.Close()

	for !coord.Drained() {
		time.Sleep(250 * time.Millisecond)
	}
	if dash != nil {
		dash.PublishGrid(out)
	}
	return nil
}

func writeOutput(path string, scn *scenery.Scenery, out *dispatch.Grid) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return core.NewError(core.DataIO, "grtrace.writeOutput", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return core.NewError(core.DataIO, "grtrace.writeOutput", err)
	}
	defer f.Close()

	props := make([]*core.Properties, out.Width*out.Height)
	for j := 0; j < out.Height; j++ {
		for i := 0; i < out.Width; i++ {
			props[j*out.Width+i] = out.At(i, j)
		}
	}
	return fitsio.WriteProperties(f, out.Width, out.Height, scn.Quantities, scn.NSpectral, props)
}

func defaultOutputPath() string {
	timestamp := time.Now().Format("20060102_150405")
	return filepath.Join("output", fmt.Sprintf("render_%s.fits", timestamp))
}

// reportAndExit writes err's single-line reason to stderr and returns
// the §7 exit code for it: 0 is never returned from here, since this is
// only called on a propagated (always-fatal, by construction) error.
func reportAndExit(logger core.Logger, err error) int {
	logger.Printf("grtrace: %v\n", err)
	return 1
}

func printHelp(fs *flag.FlagSet) {
	fmt.Println("grtrace - general-relativistic ray-tracing engine")
	fmt.Println("Usage: grtrace -scenery <file.xml> [options]")
	fmt.Println()
	fmt.Println("Options:")
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Output is written to -output, or output/render_<timestamp>.fits by default.")
}
