package colormap

import (
	"fmt"
	"image/color"
)

var categorical = map[string][]color.RGBA{
	"tab10": hexes(
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	),
	"tab20": hexes(
		"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
		"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
		"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
		"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
	),
	"tab20b": hexes(
		"#393b79", "#5254a3", "#6b6ecf", "#9c9ede", "#637939",
		"#8ca252", "#b5cf6b", "#cedb9c", "#8c6d31", "#bd9e39",
		"#e7ba52", "#e7cb94", "#843c39", "#ad494a", "#d6616b",
		"#e7969c", "#7b4173", "#a55194", "#ce6dbd", "#de9ed6",
	),
	"tab20c": hexes(
		"#3182bd", "#6baed6", "#9ecae1", "#c6dbef", "#e6550d",
		"#fd8d3c", "#fdae6b", "#fdd0a2", "#31a354", "#74c476",
		"#a1d99b", "#c7e9c0", "#756bb1", "#9e9ac8", "#bcbddc",
		"#dadaeb", "#636363", "#969696", "#bdbdbd", "#d9d9d9",
	),
}

// CategoricalNames lists the palettes accepted by Categorical.
func CategoricalNames() []string {
	return []string{"tab10", "tab20", "tab20b", "tab20c"}
}

// Labels colours integer labels 0..n-1. Label k takes colour k of the
// palette, so the bin edges sit at k-0.5.
type Labels struct {
	colors []color.RGBA
}

// Categorical returns n colours from a qualitative palette. When n exceeds
// the palette size colours repeat.
func Categorical(name string, n int) (*Labels, error) {
	pal, ok := categorical[name]
	if !ok {
		return nil, fmt.Errorf("colormap: incompatible palette %q, allowed values are %v", name, CategoricalNames())
	}
	if n < 1 {
		n = 1
	}
	colors := make([]color.RGBA, n)
	for i := range colors {
		colors[i] = pal[i%len(pal)]
	}
	return &Labels{colors: colors}, nil
}

func (l *Labels) Len() int { return len(l.colors) }

// Color returns the colour of label k; labels outside [0, n) clamp.
func (l *Labels) Color(k int) color.RGBA {
	if k < 0 {
		k = 0
	}
	if k >= len(l.colors) {
		k = len(l.colors) - 1
	}
	return l.colors[k]
}

func hexes(hs ...string) []color.RGBA {
	out := make([]color.RGBA, len(hs))
	for i, h := range hs {
		out[i] = MustHex(h)
	}
	return out
}

// MustHex parses #rrggbb and panics on malformed input.
func MustHex(h string) color.RGBA {
	c, err := ParseHex(h)
	if err != nil {
		panic(err)
	}
	return c
}

func ParseHex(h string) (color.RGBA, error) {
	var r, g, b uint8
	if len(h) != 7 || h[0] != '#' {
		return color.RGBA{}, fmt.Errorf("colormap: bad colour %q", h)
	}
	if _, err := fmt.Sscanf(h, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("colormap: bad colour %q: %w", h, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
