package colormap

import (
	"fmt"
	"image/color"
	"math"
)

type stop struct {
	at float64
	c  color.RGBA
}

// Continuous maps values in [Lo, Hi] through piecewise linear colour stops.
type Continuous struct {
	stops  []stop
	Lo, Hi float64
}

var continuous = map[string][]stop{
	// dark blue -> blue -> white -> red -> dark red
	"seismic": {
		{0.00, color.RGBA{0, 0, 76, 255}},
		{0.25, color.RGBA{0, 0, 255, 255}},
		{0.50, color.RGBA{255, 255, 255, 255}},
		{0.75, color.RGBA{255, 0, 0, 255}},
		{1.00, color.RGBA{128, 0, 0, 255}},
	},
	"cividis": {
		{0.00, color.RGBA{0, 34, 78, 255}},
		{0.25, color.RGBA{64, 77, 107, 255}},
		{0.50, color.RGBA{124, 123, 120, 255}},
		{0.75, color.RGBA{188, 175, 111, 255}},
		{1.00, color.RGBA{254, 232, 56, 255}},
	},
	"viridis": {
		{0.00, color.RGBA{68, 1, 84, 255}},
		{0.25, color.RGBA{59, 82, 139, 255}},
		{0.50, color.RGBA{33, 145, 140, 255}},
		{0.75, color.RGBA{94, 201, 98, 255}},
		{1.00, color.RGBA{253, 231, 37, 255}},
	},
}

func New(name string) (*Continuous, error) {
	stops, ok := continuous[name]
	if !ok {
		return nil, fmt.Errorf("colormap: unknown colormap %q", name)
	}
	return &Continuous{stops: stops, Lo: 0, Hi: 1}, nil
}

// Seismic is the diverging map used for pressure fields.
func Seismic() *Continuous {
	c, _ := New("seismic")
	return c
}

// Clim sets the colour limits.
func (c *Continuous) Clim(lo, hi float64) *Continuous {
	c.Lo, c.Hi = lo, hi
	return c
}

// Normalize maps v into [0, 1], clamping values outside the limits. A
// degenerate range maps everything to the midpoint.
func (c *Continuous) Normalize(v float64) float64 {
	if c.Hi == c.Lo || math.IsNaN(v) {
		return 0.5
	}
	f := (v - c.Lo) / (c.Hi - c.Lo)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func (c *Continuous) Color(v float64) color.RGBA {
	return c.At(c.Normalize(v))
}

// At samples the map at f in [0, 1].
func (c *Continuous) At(f float64) color.RGBA {
	s := c.stops
	if f <= s[0].at {
		return s[0].c
	}
	for i := 1; i < len(s); i++ {
		if f <= s[i].at {
			w := (f - s[i-1].at) / (s[i].at - s[i-1].at)
			return lerp(s[i-1].c, s[i].c, w)
		}
	}
	return s[len(s)-1].c
}

// Samples returns n evenly spaced colours from the full map.
func (c *Continuous) Samples(n int) []color.RGBA {
	if n < 1 {
		return nil
	}
	out := make([]color.RGBA, n)
	for i := range out {
		f := 0.0
		if n > 1 {
			f = float64(i) / float64(n-1)
		}
		out[i] = c.At(f)
	}
	return out
}

// Graduated returns n colours for a family of line plots ordered by a scalar.
func Graduated(name string, n int) ([]color.RGBA, error) {
	c, err := New(name)
	if err != nil {
		return nil, err
	}
	return c.Samples(n), nil
}

func lerp(a, b color.RGBA, w float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + w*(float64(y)-float64(x))))
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}

// Blend composites src over dst with the given opacity of src.
func Blend(dst, src color.RGBA, alpha float64) color.RGBA {
	if alpha <= 0 {
		return dst
	}
	if alpha >= 1 {
		return src
	}
	return lerp(dst, src, alpha)
}
