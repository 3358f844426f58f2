package photon

import (
	"fmt"

	"github.com/arlowen/grtrace/pkg/core"
)

// WorldLine is the ordered sequence of accepted states produced by
// integrating one photon, per §3: monotonic in coordinate time,
// strictly decreasing for backward tracing. It owns its samples
// exclusively, per the ownership note in §3 ("Worldline state is
// exclusively owned by its photon").
type WorldLine struct {
	samples []core.State8
}

// Append records an accepted integration step. Callers (photon.go)
// are responsible for only appending states that passed step
// acceptance.
func (w *WorldLine) Append(s core.State8) {
	w.samples = append(w.samples, s)
}

// Len returns the number of recorded samples.
func (w *WorldLine) Len() int { return len(w.samples) }

// At returns the k-th recorded state, the §4.3 getCoord(index, out)
// accessor.
func (w *WorldLine) At(index int) (core.State8, error) {
	if index < 0 || index >= len(w.samples) {
		return core.State8{}, fmt.Errorf("worldline index %d out of range [0,%d)", index, len(w.samples))
	}
	return w.samples[index], nil
}

// GetCoord returns the full 8-state interpolated at coordinate time t,
// the §4.3 getCoord(t, out) accessor. Linear interpolation is used
// between the two bracketing samples (§4.3: "the integrator's
// dense-output polynomial when available or linear interpolation
// otherwise" — this package's tableaus carry no dense-output
// polynomial, so every integrator here falls back to linear
// interpolation).
func (w *WorldLine) GetCoord(t float64) (core.State8, error) {
	n := len(w.samples)
	if n == 0 {
		return core.State8{}, fmt.Errorf("worldline has no recorded samples")
	}
	if n == 1 {
		return w.samples[0], nil
	}

	// Backward tracing: t0 > t1 > t2 > ... Find the bracketing pair.
	for i := 0; i < n-1; i++ {
		t0, t1 := w.samples[i][0], w.samples[i+1][0]
		if (t <= t0 && t >= t1) || (t >= t0 && t <= t1) {
			if t0 == t1 {
				return w.samples[i], nil
			}
			frac := (t - t0) / (t1 - t0)
			return lerp(w.samples[i], w.samples[i+1], frac), nil
		}
	}
	return core.State8{}, fmt.Errorf("coordinate time %g outside traced span [%g,%g]", t, w.samples[0][0], w.samples[n-1][0])
}

func lerp(a, b core.State8, frac float64) core.State8 {
	var out core.State8
	for i := 0; i < 8; i++ {
		out[i] = a[i] + frac*(b[i]-a[i])
	}
	return out
}

// Clone returns an independent copy, used when a photon carrying a
// partially-integrated worldline is cloned (e.g. a template photon
// that has never been stepped, where this is just an empty copy).
func (w *WorldLine) Clone() *WorldLine {
	cloned := make([]core.State8, len(w.samples))
	copy(cloned, w.samples)
	return &WorldLine{samples: cloned}
}
