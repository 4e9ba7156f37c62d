// Package dumptest builds small synthetic dumps for tests.
package dumptest

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/wavescope/internal/dump"
)

// Options describes the synthetic run.
type Options struct {
	NT, NY, NX  int
	Dt          float64
	Sources     [][2]int // (x, y) pixel positions
	FocalLength float64  // zero means no focal_length attribute
}

func DefaultOptions() Options {
	return Options{
		NT:      12,
		NY:      32,
		NX:      40,
		Dt:      2.e-8,
		Sources: [][2]int{{18, 4}, {20, 4}, {22, 4}},
	}
}

// New builds a dump with three horizontal media bands (water, oil, steel)
// and a ring-shaped pulse spreading from the sources.
func New(o Options) *dump.Dump {
	d := dump.New(o.NT, o.NY, o.NX)

	for y := 0; y < o.NY; y++ {
		label := 0
		switch {
		case y >= 2*o.NY/3:
			label = 2
		case y >= o.NY/3:
			label = 1
		}
		for x := 0; x < o.NX; x++ {
			d.Image[y][x] = label
		}
	}

	xs := make([]float64, o.NX)
	for i := range xs {
		xs[i] = -0.5*float64(o.NX-1)*0.1 + float64(i)*0.1
	}
	ys := make([]float64, o.NY)
	for i := range ys {
		ys[i] = float64(i) * 0.1
	}
	ts := make([]float64, o.NT)
	for i := range ts {
		ts[i] = float64(i) * o.Dt
	}

	xloc := make([]int, len(o.Sources))
	yloc := make([]int, len(o.Sources))
	for i, s := range o.Sources {
		xloc[i], yloc[i] = s[0], s[1]
	}

	for t := 0; t < o.NT; t++ {
		radius := 1.5 * float64(t)
		for y := 0; y < o.NY; y++ {
			for x := 0; x < o.NX; x++ {
				v := 0.0
				for _, s := range o.Sources {
					r := math.Hypot(float64(x-s[0]), float64(y-s[1]))
					v += math.Exp(-(r-radius)*(r-radius)/2) * math.Cos(r-radius)
				}
				d.Pressure.Set(t, y, x, v)
			}
		}
	}

	must(d.Attrs.Set("x", xs))
	must(d.Attrs.Set("y", ys))
	must(d.Attrs.Set("t", ts))
	must(d.Attrs.Set("dt", o.Dt))
	must(d.Attrs.Set("xloc", xloc))
	must(d.Attrs.Set("yloc", yloc))
	must(d.Attrs.Set("pmin", -2.0))
	must(d.Attrs.Set("pmax", 2.0))
	must(d.Attrs.Set("csf", 2.0))
	must(d.Attrs.Set("medium_water", 0))
	must(d.Attrs.Set("medium_oil", 1))
	must(d.Attrs.Set("medium_steel", 2))
	if o.FocalLength != 0 {
		must(d.Attrs.Set("focal_length", o.FocalLength))
	}
	return d
}

// Write stores New(o) under a temporary directory and returns its path.
func Write(t testing.TB, o Options) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.wdump")
	if err := dump.Create(path, New(o)); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	return path
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
