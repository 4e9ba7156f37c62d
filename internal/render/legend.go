package render

import (
	"image"
	"math"
)

const (
	legendPad   = 5
	legendRow   = 16
	legendGlyph = 20
	legendInset = 6
)

type legendEntry struct {
	label  string
	marker bool
}

func (s *Scene) legendSize() (int, int) {
	w := 0
	for _, e := range s.legend {
		if tw := textWidth(e.label); tw > w {
			w = tw
		}
	}
	return 2*legendPad + legendGlyph + 4 + w, 2*legendPad + len(s.legend)*legendRow
}

// legendRect places a legend of the given size inside the wave panel.
func (s *Scene) legendRect(loc LegendLoc, w, h int) image.Rectangle {
	p := s.layout.Wave.Inset(legendInset)
	left := p.Min.X
	right := p.Max.X - w
	cx := p.Min.X + (p.Dx()-w)/2
	top := p.Min.Y
	bottom := p.Max.Y - h
	cy := p.Min.Y + (p.Dy()-h)/2

	var x, y int
	switch loc {
	case LocUpperRight:
		x, y = right, top
	case LocUpperLeft:
		x, y = left, top
	case LocLowerLeft:
		x, y = left, bottom
	case LocLowerRight:
		x, y = right, bottom
	case LocRight, LocCenterRight:
		x, y = right, cy
	case LocCenterLeft:
		x, y = left, cy
	case LocLowerCenter:
		x, y = cx, bottom
	case LocUpperCenter:
		x, y = cx, top
	default:
		x, y = cx, cy
	}
	return image.Rect(x, y, x+w, y+h)
}

// overlayPoints samples the pixels covered by markers and the focus line.
func (s *Scene) overlayPoints() []image.Point {
	var pts []image.Point
	p := s.params
	for i := range p.XLoc {
		x, y := s.toPixel(float64(p.XLoc[i]), float64(p.YLoc[i]))
		pts = append(pts, image.Pt(x, y))
	}
	if s.focus != nil {
		seg := func(a, b [2]float64) {
			ax, ay := s.toPixel(a[0], a[1])
			bx, by := s.toPixel(b[0], b[1])
			n := int(math.Max(math.Abs(float64(bx-ax)), math.Abs(float64(by-ay))))
			for k := 0; k <= n; k++ {
				f := 0.0
				if n > 0 {
					f = float64(k) / float64(n)
				}
				pts = append(pts, image.Pt(ax+int(math.Round(f*float64(bx-ax))), ay+int(math.Round(f*float64(by-ay)))))
			}
		}
		seg(s.focus.Edge1, s.focus.Mid)
		seg(s.focus.Mid, s.focus.Edge2)
	}
	return pts
}

// placeLegend resolves the configured location. "best" takes the first
// location, in loc code order, that covers the fewest overlay pixels.
func (s *Scene) placeLegend() image.Rectangle {
	loc, _ := ParseLegendLoc(s.opts.LegendLoc)
	w, h := s.legendSize()
	if loc != LocBest {
		return s.legendRect(loc, w, h)
	}

	pts := s.overlayPoints()
	best, bestHits := image.Rectangle{}, -1
	for l := LocUpperRight; l <= LocCenter; l++ {
		r := s.legendRect(l, w, h)
		hits := 0
		for _, pt := range pts {
			if pt.In(r) {
				hits++
			}
		}
		if bestHits < 0 || hits < bestHits {
			best, bestHits = r, hits
		}
		if hits == 0 {
			break
		}
	}
	return best
}

func (s *Scene) drawLegend(img *image.RGBA) {
	r := s.layout.Legend
	fillRect(img, r, white)
	strokeRect(img, r, light)
	for i, e := range s.legend {
		y := r.Min.Y + legendPad + i*legendRow + legendRow/2
		gx := r.Min.X + legendPad
		if e.marker {
			triangle(img, gx+legendGlyph/2, y, markerSize, black)
		} else {
			line(img, gx, y, gx+legendGlyph, y, grey, 2)
		}
		text(img, gx+legendGlyph+4, y-textHeight/2, e.label, black)
	}
}
