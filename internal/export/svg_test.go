package export

import (
	"strings"
	"testing"

	"github.com/san-kum/wavescope/internal/viz"
)

func TestSignalToSVG(t *testing.T) {
	svg, err := SignalToSVG([]float64{0, 1, 2}, []float64{0, 1, 0}, 100, 50, "#ff0000")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not an svg document")
	}
	if !strings.Contains(svg, `stroke="#ff0000"`) {
		t.Error("missing stroke colour")
	}
	// x spans 0..2 padded by 0.2 on each side, y spans 0..1 padded by 0.1
	if !strings.Contains(svg, "M8.3,45.8 L50.0,4.2 L91.7,45.8") {
		t.Errorf("unexpected path in %s", svg)
	}
}

func TestSignalToSVGErrors(t *testing.T) {
	if _, err := SignalToSVG([]float64{0}, []float64{1}, 10, 10, "#fff"); err == nil {
		t.Error("expected error for single sample")
	}
	if _, err := SignalToSVG([]float64{0, 1}, []float64{1, 2, 3}, 10, 10, "#fff"); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

func TestGraduatedToSVG(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	traces := [][]float64{{0, 1, 0, -1}, {0, 2, 0, -2}, {0, 3, 0, -3}}
	svg, err := GraduatedToSVG(times, traces, 200, 100, "viridis")
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(svg, "<path"); n != 3 {
		t.Errorf("expected 3 paths, got %d", n)
	}
	first := svg[strings.Index(svg, "stroke=\""):]
	last := svg[strings.LastIndex(svg, "stroke=\""):]
	if first[:16] == last[:16] {
		t.Error("expected graduated stroke colours")
	}

	if _, err := GraduatedToSVG(times, traces, 200, 100, "nope"); err == nil {
		t.Error("expected error for unknown colormap")
	}
	if _, err := GraduatedToSVG(times, [][]float64{{1, 2}}, 200, 100, "viridis"); err == nil {
		t.Error("expected error for short trace")
	}
	if _, err := GraduatedToSVG(times, [][]float64{{}, {0, 1, 0, -1}}, 200, 100, "viridis"); err == nil {
		t.Error("expected error for an empty first trace")
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 10, "#00ff00")
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `cx="35.0" cy="35.0"`) {
		t.Errorf("missing dot at (3, 3): %s", svg)
	}
	if CanvasToSVG(nil, 1, "#fff") != "" {
		t.Error("expected empty output for nil canvas")
	}
}
