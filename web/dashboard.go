// Package web is the §10.5 live-preview dashboard: a trimmed-down
// rewrite of the teacher's web/server (server.go/console.go), swapping
// its SSE progress-pass stream for a polled snapshot endpoint that
// fits this engine's single-shot (not progressive) dispatch model, but
// keeping the teacher's base64-PNG-over-JSON wire format and
// net/http.FileServer-less handler style.
//
// This is pure visualization tooling around the dispatcher, not part
// of the traced core (§1's "real-time rendering" Non-goal still
// excludes retargeting the system itself to real time).
package web

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"net"
	"net/http"
	"sync"

	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/dispatch"
)

// Dashboard serves the current state of an in-progress or completed
// trace as a grayscale PNG preview, following the teacher's
// "imageToBase64PNG" wire shape (server.go:263) but over a plain
// GET/JSON snapshot endpoint rather than SSE, since a dispatch.Grid has
// no intermediate "pass" concept to stream.
type Dashboard struct {
	width, height int
	logger        core.Logger

	mu        sync.RWMutex
	imageData string // base64 PNG, updated by PublishGrid
	complete  bool
}

// NewDashboard allocates a Dashboard for a width x height trace.
func NewDashboard(width, height int, logger core.Logger) *Dashboard {
	if logger == nil {
		logger = core.DiscardLogger{}
	}
	return &Dashboard{width: width, height: height, logger: logger}
}

// snapshotResponse is the JSON body served at /api/snapshot, mirroring
// the teacher's ProgressUpdate shape minus the pass-counting fields
// that don't apply to a non-progressive dispatcher.
type snapshotResponse struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ImageData string `json:"imageData"`
	Complete  bool   `json:"complete"`
}

// Serve accepts connections on lis, serving the dashboard's single
// HTML page and its snapshot/health JSON endpoints until lis is
// closed. Run it in its own goroutine; it blocks like http.Serve.
func (d *Dashboard) Serve(lis net.Listener) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", d.handleIndex)
	mux.HandleFunc("/api/snapshot", d.handleSnapshot)
	mux.HandleFunc("/api/health", d.handleHealth)
	d.logger.Printf("web: dashboard serving on %s\n", lis.Addr())
	return http.Serve(lis, mux)
}

func (d *Dashboard) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (d *Dashboard) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	d.mu.RLock()
	resp := snapshotResponse{Width: d.width, Height: d.height, ImageData: d.imageData, Complete: d.complete}
	d.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(resp)
}

func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(dashboardHTML))
}

// PublishGrid renders grid's intensity channel (falling back to
// Redshift, EmissionTime or Opacity, in that order) to a grayscale PNG and
// republishes it as the dashboard's current snapshot.
func (d *Dashboard) PublishGrid(grid *dispatch.Grid) {
	img := renderGridPreview(grid)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		d.logger.Printf("web: failed to encode preview: %v\n", err)
		return
	}

	d.mu.Lock()
	d.imageData = base64.StdEncoding.EncodeToString(buf.Bytes())
	d.complete = true
	d.mu.Unlock()
}

// renderGridPreview maps every pixel's first available scalar
// quantity among those previewValue checks onto [0,255] by its observed min/max, since Intensity is
// in arbitrary astrophysical units with no fixed display range.
func renderGridPreview(grid *dispatch.Grid) image.Image {
	img := image.NewGray(image.Rect(0, 0, grid.Width, grid.Height))

	values := make([]float64, grid.Width*grid.Height)
	lo, hi := math.Inf(1), math.Inf(-1)
	for j := 0; j < grid.Height; j++ {
		for i := 0; i < grid.Width; i++ {
			v := previewValue(grid.At(i, j))
			values[j*grid.Width+i] = v
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	span := hi - lo
	for j := 0; j < grid.Height; j++ {
		for i := 0; i < grid.Width; i++ {
			v := values[j*grid.Width+i]
			g := uint8(0)
			if span > 0 {
				g = uint8(255 * (v - lo) / span)
			}
			img.SetGray(i, j, color.Gray{Y: g})
		}
	}
	return img
}

func previewValue(p *core.Properties) float64 {
	switch {
	case p.Intensity != nil:
		return *p.Intensity
	case p.Redshift != nil:
		return *p.Redshift
	case p.EmissionTime != nil:
		return *p.EmissionTime
	case p.Opacity != nil:
		return *p.Opacity
	default:
		return 0
	}
}

const dashboardHTML = `<!DOCTYPE html>
<html>
<head><title>grtrace live preview</title></head>
<body style="background:#111;color:#ccc;font-family:sans-serif;text-align:center">
<h1>grtrace live preview</h1>
<img id="preview" style="image-rendering:pixelated;max-width:90vw"/>
<p id="status">waiting for first snapshot...</p>
<script>
async function poll() {
  try {
    const r = await fetch('/api/snapshot');
    const s = await r.json();
    if (s.imageData) {
      document.getElementById('preview').src = 'data:image/png;base64,' + s.imageData;
      document.getElementById('status').textContent = s.complete ? 'complete' : 'rendering...';
    }
  } catch (e) {}
  setTimeout(poll, 1000);
}
poll();
</script>
</body>
</html>`
