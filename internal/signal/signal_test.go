package signal

import (
	"math"
	"testing"

	"github.com/san-kum/wavescope/internal/dump"
	"github.com/san-kum/wavescope/internal/dump/dumptest"
)

func TestPulseEcho(t *testing.T) {
	f := dump.NewField(3, 2, 2)
	f.Set(1, 0, 1, 2)
	f.Set(1, 1, 0, 3)
	f.Set(2, 1, 1, 7)

	trace, err := PulseEcho(f, []int{1, 0}, []int{0, 1})
	if err != nil {
		t.Fatalf("pulse echo: %v", err)
	}
	want := []float64{0, 5, 0}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("step %d: expected %f, got %f", i, want[i], trace[i])
		}
	}
}

func TestPulseEchoOutsideGrid(t *testing.T) {
	f := dump.NewField(1, 2, 2)
	if _, err := PulseEcho(f, []int{2}, []int{0}); err == nil {
		t.Error("expected error for source outside grid")
	}
	if _, err := PulseEcho(f, []int{0, 1}, []int{0}); err == nil {
		t.Error("expected error for unpaired sources")
	}
}

func TestPulseEchoFromDump(t *testing.T) {
	d := dumptest.New(dumptest.DefaultOptions())
	p, err := d.Params()
	if err != nil {
		t.Fatal(err)
	}
	trace, err := PulseEcho(d.Pressure, p.XLoc, p.YLoc)
	if err != nil {
		t.Fatal(err)
	}
	if len(trace) != d.Pressure.NT {
		t.Fatalf("expected %d samples, got %d", d.Pressure.NT, len(trace))
	}
	if _, v := Peak(trace); v <= 0 {
		t.Errorf("expected a positive pulse peak, got %f", v)
	}
}

func TestSpectrumDominant(t *testing.T) {
	dt := 1e-3
	trace := make([]float64, 256)
	for i := range trace {
		trace[i] = math.Sin(2 * math.Pi * 125 * float64(i) * dt)
	}
	s, err := NewSpectrum(trace, dt)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Freqs) != 129 {
		t.Errorf("expected 129 bins, got %d", len(s.Freqs))
	}
	if got := s.Dominant(); math.Abs(got-125) > 1e-9 {
		t.Errorf("expected dominant 125 Hz, got %f", got)
	}
}

func TestSpectrumErrors(t *testing.T) {
	if _, err := NewSpectrum(nil, 1); err != ErrEmpty {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
	if _, err := NewSpectrum([]float64{1}, 0); err == nil {
		t.Error("expected error for zero dt")
	}
}

func TestFirstArrival(t *testing.T) {
	trace := []float64{0, 0.01, -0.2, 0.5, -1, 0.3}
	if got := FirstArrival(trace, 0.5); got != 3 {
		t.Errorf("expected arrival at 3, got %d", got)
	}
	if got := FirstArrival(make([]float64, 4), 0.5); got != -1 {
		t.Errorf("expected -1 for silence, got %d", got)
	}
	idx, v := Peak(trace)
	if idx != 4 || v != -1 {
		t.Errorf("expected peak -1 at 4, got %f at %d", v, idx)
	}
}

func TestPlot(t *testing.T) {
	if Plot(nil, "x", 10, 5) != "" {
		t.Error("expected empty plot for empty trace")
	}
	if out := Plot([]float64{0, 1, 0}, "pulse", 20, 4); out == "" {
		t.Error("expected a plot")
	}
}
