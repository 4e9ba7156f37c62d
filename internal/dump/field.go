package dump

import "math"

// Field is a pressure volume indexed as [t][y][x].
type Field struct {
	NT, NY, NX int
	data       []float32
}

func NewField(nt, ny, nx int) *Field {
	return &Field{NT: nt, NY: ny, NX: nx, data: make([]float32, nt*ny*nx)}
}

func (f *Field) index(t, y, x int) int {
	return (t*f.NY+y)*f.NX + x
}

func (f *Field) At(t, y, x int) float64 {
	return float64(f.data[f.index(t, y, x)])
}

func (f *Field) Set(t, y, x int, v float64) {
	f.data[f.index(t, y, x)] = float32(v)
}

// Frame returns the row-major slice of time step t. The slice aliases the
// field storage.
func (f *Field) Frame(t int) []float32 {
	n := f.NY * f.NX
	return f.data[t*n : (t+1)*n]
}

func (f *Field) FrameSize() int { return f.NY * f.NX }

// Range returns the minimum and maximum over every time step.
func (f *Field) Range() (float64, float64) {
	if len(f.data) == 0 {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range f.data {
		fv := float64(v)
		if fv < lo {
			lo = fv
		}
		if fv > hi {
			hi = fv
		}
	}
	return lo, hi
}
