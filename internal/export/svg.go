package export

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/san-kum/wavescope/internal/colormap"
	"github.com/san-kum/wavescope/internal/viz"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG converts a Braille canvas to SVG dots.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.Width*2, canvas.Height*4
	var sb strings.Builder
	header(&sb, float64(w)*scale, float64(h)*scale)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", fill)

	r := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b *bounds) add(x, y float64) {
	if x < b.minX {
		b.minX = x
	}
	if x > b.maxX {
		b.maxX = x
	}
	if y < b.minY {
		b.minY = y
	}
	if y > b.maxY {
		b.maxY = y
	}
}

// pad widens the box by 10% on every side.
func (b *bounds) pad() {
	rx, ry := b.maxX-b.minX, b.maxY-b.minY
	if rx == 0 {
		rx = 1
	}
	if ry == 0 {
		ry = 1
	}
	b.minX -= rx * 0.1
	b.maxX += rx * 0.1
	b.minY -= ry * 0.1
	b.maxY += ry * 0.1
}

func (b *bounds) project(x, y float64, width, height int) (float64, float64) {
	px := (x - b.minX) / (b.maxX - b.minX) * float64(width)
	py := float64(height) - (y-b.minY)/(b.maxY-b.minY)*float64(height)
	return px, py
}

func path(sb *strings.Builder, b *bounds, times, trace []float64, width, height int, stroke string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i, v := range trace {
		x, y := b.project(times[i], v, width, height)
		if i == 0 {
			fmt.Fprintf(sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// SignalToSVG plots trace against times as a single polyline.
func SignalToSVG(times, trace []float64, width, height int, stroke string) (string, error) {
	if len(trace) < 2 {
		return "", fmt.Errorf("export: need at least 2 samples, got %d", len(trace))
	}
	if len(times) != len(trace) {
		return "", fmt.Errorf("export: %d times for %d samples", len(times), len(trace))
	}

	b := bounds{times[0], times[0], trace[0], trace[0]}
	for i := range trace {
		b.add(times[i], trace[i])
	}
	b.pad()

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	path(&sb, &b, times, trace, width, height, stroke)
	sb.WriteString("</svg>")
	return sb.String(), nil
}

// GraduatedToSVG plots several traces sharing one time axis, coloured from
// evenly spaced samples of a continuous colormap.
func GraduatedToSVG(times []float64, traces [][]float64, width, height int, cmap string) (string, error) {
	if len(traces) == 0 {
		return "", fmt.Errorf("export: no traces")
	}
	if len(times) < 2 {
		return "", fmt.Errorf("export: need at least 2 samples, got %d", len(times))
	}
	colors, err := colormap.Graduated(cmap, len(traces))
	if err != nil {
		return "", err
	}

	for k, tr := range traces {
		if len(tr) != len(times) {
			return "", fmt.Errorf("export: trace %d has %d samples, want %d", k, len(tr), len(times))
		}
	}

	b := bounds{times[0], times[0], traces[0][0], traces[0][0]}
	for _, tr := range traces {
		for i := range tr {
			b.add(times[i], tr[i])
		}
	}
	b.pad()

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	for k, tr := range traces {
		path(&sb, &b, times, tr, width, height, hex(colors[k]))
	}
	sb.WriteString("</svg>")
	return sb.String(), nil
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
