// Package scenery implements the aggregate root of §2/§3: a Scenery
// ties together a metric, a screen, an emitter, tuning parameters, and
// the requested output quantities, and owns the photon template every
// pixel worker clones from.
package scenery

import (
	"fmt"

	"github.com/arlowen/grtrace/pkg/astrobj"
	"github.com/arlowen/grtrace/pkg/core"
	"github.com/arlowen/grtrace/pkg/metric"
	"github.com/arlowen/grtrace/pkg/photon"
	"github.com/arlowen/grtrace/pkg/screen"
)

// Scenery is built once from external input (typically a deserialized
// XML tree, see pkg/xmlscenery), then read-only during ray-tracing
// (§3's lifecycle rule).
type Scenery struct {
	Metric  metric.Metric
	Screen  *screen.Screen
	Astrobj astrobj.Astrobj
	Tuning  photon.Tuning

	Quantities core.Quantities
	NSpectral  int
	NThreads   int

	template *photon.Photon
}

// Option mutates a Scenery under construction, following the
// functional-options idiom used across this codebase's constructors.
type Option func(*Scenery)

func WithQuantities(q core.Quantities) Option { return func(s *Scenery) { s.Quantities = q } }
func WithNSpectral(n int) Option              { return func(s *Scenery) { s.NSpectral = n } }
func WithNThreads(n int) Option               { return func(s *Scenery) { s.NThreads = n } }

// New builds a Scenery from its three collaborators and tuning, and
// constructs the photon template eagerly so a Configuration error
// (e.g. Integrator=Legacy against a metric without LegacyStepper) is
// raised here, at construction time, rather than at first ray (§7's
// propagation policy for Configuration errors).
func New(m metric.Metric, scr *screen.Screen, obj astrobj.Astrobj, tune photon.Tuning, opts ...Option) (*Scenery, error) {
	if m == nil || scr == nil || obj == nil {
		return nil, core.NewError(core.Configuration, "scenery.New", fmt.Errorf("metric, screen and astrobj are all required"))
	}

	s := &Scenery{
		Metric:    m,
		Screen:    scr,
		Astrobj:   obj,
		Tuning:    tune,
		NThreads:  1,
		NSpectral: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.NThreads <= 0 {
		s.NThreads = 1 // "NThreads N ... 0 = 1" per §6.
	}

	template, err := photon.New(m, tune)
	if err != nil {
		return nil, err
	}
	s.template = template

	return s, nil
}

// ClonePhoton returns an independent photon suitable for a pixel
// worker to integrate exclusively, per §3's ownership rule.
func (s *Scenery) ClonePhoton() (*photon.Photon, error) {
	return s.template.Clone()
}

// EffectiveThreads returns the thread count actually usable: a
// thread-unsafe metric forces single-threaded execution regardless of
// NThreads, per §5's fallback rule.
func (s *Scenery) EffectiveThreads() int {
	if !s.Metric.ThreadSafe() {
		return 1
	}
	return s.NThreads
}
