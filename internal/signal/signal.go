// Package signal extracts and analyses the pulse-echo trace recorded at the
// source pixels of a dump.
package signal

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/guptarohit/asciigraph"
	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/wavescope/internal/dump"
)

var ErrEmpty = errors.New("signal: empty trace")

// PulseEcho sums, for every time step, the pressure at each source pixel
// (yloc[i], xloc[i]).
func PulseEcho(f *dump.Field, xloc, yloc []int) ([]float64, error) {
	if len(xloc) != len(yloc) {
		return nil, fmt.Errorf("signal: %d x locations, %d y locations", len(xloc), len(yloc))
	}
	for i := range xloc {
		if xloc[i] < 0 || xloc[i] >= f.NX || yloc[i] < 0 || yloc[i] >= f.NY {
			return nil, fmt.Errorf("signal: source %d at (%d, %d) outside %dx%d grid", i, xloc[i], yloc[i], f.NX, f.NY)
		}
	}

	trace := make([]float64, f.NT)
	for t := range trace {
		for i := range xloc {
			trace[t] += f.At(t, yloc[i], xloc[i])
		}
	}
	return trace, nil
}

// Spectrum is the one-sided magnitude spectrum of a trace.
type Spectrum struct {
	Freqs []float64
	Mag   []float64
}

// NewSpectrum zero pads the trace to a power of two and keeps the bins up to
// Nyquist. dt is the sample spacing in seconds.
func NewSpectrum(trace []float64, dt float64) (*Spectrum, error) {
	if len(trace) == 0 {
		return nil, ErrEmpty
	}
	if dt <= 0 {
		return nil, fmt.Errorf("signal: non-positive sample spacing %g", dt)
	}

	n := 1
	for n < len(trace) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, trace)

	bins := fft.FFTReal(padded)
	half := n/2 + 1
	s := &Spectrum{Freqs: make([]float64, half), Mag: make([]float64, half)}
	for k := 0; k < half; k++ {
		s.Freqs[k] = float64(k) / (float64(n) * dt)
		s.Mag[k] = cmplx.Abs(bins[k])
	}
	return s, nil
}

// Dominant returns the frequency of the strongest non-DC bin.
func (s *Spectrum) Dominant() float64 {
	best, idx := 0.0, 0
	for k := 1; k < len(s.Mag); k++ {
		if s.Mag[k] > best {
			best, idx = s.Mag[k], k
		}
	}
	return s.Freqs[idx]
}

// Peak returns the index and value of the sample with the largest magnitude.
func Peak(trace []float64) (int, float64) {
	idx, best := -1, 0.0
	for i, v := range trace {
		if idx < 0 || math.Abs(v) > math.Abs(best) {
			idx, best = i, v
		}
	}
	return idx, best
}

// FirstArrival returns the index of the first sample whose magnitude reaches
// frac of the peak magnitude, or -1 for a silent trace.
func FirstArrival(trace []float64, frac float64) int {
	_, peak := Peak(trace)
	level := frac * math.Abs(peak)
	if level == 0 {
		return -1
	}
	for i, v := range trace {
		if math.Abs(v) >= level {
			return i
		}
	}
	return -1
}

// Micros converts a time axis in seconds to microseconds.
func Micros(t []float64) []float64 {
	out := make([]float64, len(t))
	for i, v := range t {
		out[i] = v / 1.e-6
	}
	return out
}

// Plot renders a trace as a terminal line chart.
func Plot(trace []float64, caption string, width, height int) string {
	if len(trace) == 0 {
		return ""
	}
	return asciigraph.Plot(trace,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
