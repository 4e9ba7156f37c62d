package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/san-kum/wavescope/internal/colormap"
	"github.com/san-kum/wavescope/internal/dump"
	"github.com/san-kum/wavescope/internal/signal"
)

const (
	marginLeft   = 64
	marginTop    = 28
	marginBottom = 44
	marginRight  = 16
	gap          = 14
	colorbarW    = 14
	tickEvery    = 100
	markerSize   = 5
	minSignalH   = 140
	minSignalW   = 260
)

// Layout holds the pixel geometry of a frame.
type Layout struct {
	Width, Height int
	Wave          image.Rectangle
	Colorbar      image.Rectangle
	Signal        image.Rectangle
	Legend        image.Rectangle
}

// FocusLine is the focus regime in grid coordinates: two aperture edges on
// the source row and the focal point between them.
type FocusLine struct {
	Edge1, Mid, Edge2 [2]float64
}

// Scene renders the frames of one dump.
type Scene struct {
	d      *dump.Dump
	params *dump.Params
	opts   Options

	materials []dump.Material
	labelIdx  map[int]int
	labels    *colormap.Labels
	field     *colormap.Continuous

	focus  *FocusLine
	trace  []float64
	traceT []float64
	legend []legendEntry

	layout Layout
	base   *image.RGBA
	pool   *FramePool
}

// NewScene validates the dump against the options and precomputes the
// static parts of every frame.
func NewScene(d *dump.Dump, opts Options) (*Scene, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if d.Pressure == nil || d.Pressure.NT == 0 {
		return nil, fmt.Errorf("render: dump has no pressure frames")
	}
	p, err := d.Params()
	if err != nil {
		return nil, err
	}

	s := &Scene{d: d, params: p, opts: opts}

	s.materials = d.Materials(opts.Renames)
	if len(s.materials) == 0 {
		s.materials = labelsFromImage(d.Image)
	}
	s.labelIdx = make(map[int]int, len(s.materials))
	for i, m := range s.materials {
		s.labelIdx[m.Label] = i
	}
	if s.labels, err = colormap.Categorical(opts.Palette, len(s.materials)); err != nil {
		return nil, err
	}
	if s.field, err = colormap.New(opts.Colormap); err != nil {
		return nil, err
	}
	s.field.Clim(p.Clim())

	s.legend = []legendEntry{{label: "Source", marker: true}}
	if opts.FocusRegime && p.HasFocalLength {
		s.focus = Focus(p)
		s.legend = append(s.legend, legendEntry{label: "Focus regime"})
	}

	if opts.Signal {
		if s.trace, err = signal.PulseEcho(d.Pressure, p.XLoc, p.YLoc); err != nil {
			return nil, err
		}
		s.traceT = signal.Micros(p.T)
	}

	s.layout = s.computeLayout()
	s.base = s.drawBase()
	s.layout.Legend = s.placeLegend()
	s.pool = NewFramePool(s.layout.Width, s.layout.Height)
	return s, nil
}

func (s *Scene) Layout() Layout             { return s.layout }
func (s *Scene) Params() *dump.Params       { return s.params }
func (s *Scene) Materials() []dump.Material { return s.materials }
func (s *Scene) Trace() []float64           { return s.trace }
func (s *Scene) Focus() *FocusLine          { return s.focus }

// FrameCount is the number of animation frames, one every SkipFrame steps.
func (s *Scene) FrameCount() int {
	nt := s.d.Pressure.NT
	return (nt + s.opts.SkipFrame - 1) / s.opts.SkipFrame
}

// Step maps animation frame n to its time step.
func (s *Scene) Step(n int) int { return n * s.opts.SkipFrame }

// Title is the caption of animation frame n.
func (s *Scene) Title(n int) string {
	return fmt.Sprintf("Pressure wave at time %.3f us", s.params.TimeMicros(s.Step(n)))
}

// Focus computes the focus regime of the source aperture. The focal row is
// the grid row closest to focal_length past the first source row.
func Focus(p *dump.Params) *FocusLine {
	edge1, edge2 := p.XLoc[0], p.XLoc[0]
	for _, x := range p.XLoc {
		if x < edge1 {
			edge1 = x
		}
		if x > edge2 {
			edge2 = x
		}
	}
	mid := 0.5 * float64(edge1+edge2)

	row := p.YLoc[0]
	foc, best := 0, math.Inf(1)
	for i, y := range p.Y {
		if d := math.Abs(y - p.Y[row] - p.FocalLength); d < best {
			foc, best = i, d
		}
	}
	return &FocusLine{
		Edge1: [2]float64{float64(edge1), float64(row)},
		Mid:   [2]float64{mid, float64(foc)},
		Edge2: [2]float64{float64(edge2), float64(row)},
	}
}

func labelsFromImage(img [][]int) []dump.Material {
	seen := make(map[int]bool)
	for _, row := range img {
		for _, v := range row {
			seen[v] = true
		}
	}
	out := make([]dump.Material, 0, len(seen))
	for v := range seen {
		out = append(out, dump.Material{Label: v, Name: fmt.Sprintf("label %d", v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func (s *Scene) computeLayout() Layout {
	f := s.d.Pressure
	sc := s.opts.Scale
	var l Layout

	l.Wave = image.Rect(marginLeft, marginTop, marginLeft+f.NX*sc, marginTop+f.NY*sc)
	l.Colorbar = image.Rect(l.Wave.Max.X+gap, l.Wave.Min.Y, l.Wave.Max.X+gap+colorbarW, l.Wave.Max.Y)

	labelW := 0
	for _, m := range s.materials {
		if w := textWidth(m.Name); w > labelW {
			labelW = w
		}
	}
	right := l.Colorbar.Max.X + 6 + labelW
	bottom := l.Wave.Max.Y

	if s.opts.Signal {
		h := l.Wave.Dy()
		if h < minSignalH {
			h = minSignalH
		}
		w := h * 6 / 5
		if w < minSignalW {
			w = minSignalW
		}
		x0 := right + marginLeft
		l.Signal = image.Rect(x0, marginTop, x0+w, marginTop+h)
		right = l.Signal.Max.X
		if l.Signal.Max.Y > bottom {
			bottom = l.Signal.Max.Y
		}
	}

	// the title must fit above the wave panel
	if tw := marginLeft + textWidth(s.Title(s.FrameCount()-1)) + 4; tw > right {
		right = tw
	}
	l.Width = right + marginRight
	l.Height = bottom + marginBottom
	return l
}

// toPixel maps grid coordinates to the centre of the cell in the image,
// with row 0 at the bottom of the wave panel.
func (s *Scene) toPixel(gx, gy float64) (int, int) {
	sc := float64(s.opts.Scale)
	w := s.layout.Wave
	px := w.Min.X + int(math.Floor(gx*sc+sc/2))
	py := w.Max.Y - 1 - int(math.Floor(gy*sc+sc/2))
	return px, py
}

func (s *Scene) drawBase() *image.RGBA {
	l := s.layout
	img := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))
	fillRect(img, img.Bounds(), white)

	s.drawWaveAxes(img)
	s.drawColorbar(img)
	if s.opts.Signal {
		s.drawSignalPanel(img)
	}
	return img
}

func (s *Scene) drawWaveAxes(img *image.RGBA) {
	w := s.layout.Wave
	p := s.params
	sc := s.opts.Scale

	strokeRect(img, w.Inset(-1), black)

	for i := 0; i < len(p.X); i += tickEvery {
		px := w.Min.X + i*sc
		vline(img, px, w.Max.Y, w.Max.Y+3, black)
		textCentered(img, px, w.Max.Y+5, fmt.Sprintf("%.2f", p.X[i]), black)
	}
	for i := 0; i < len(p.Y); i += tickEvery {
		py := w.Max.Y - 1 - i*sc
		hline(img, w.Min.X-4, w.Min.X-1, py, black)
		textRight(img, w.Min.X-6, py-textHeight/2, fmt.Sprintf("%.2f", p.Y[i]), black)
	}
	textCentered(img, w.Min.X+w.Dx()/2, w.Max.Y+5+textHeight+2, "x (mm)", black)
	text(img, 4, w.Min.Y+w.Dy()/2-textHeight/2, "y (mm)", black)
}

func (s *Scene) drawColorbar(img *image.RGBA) {
	cb := s.layout.Colorbar
	n := len(s.materials)
	for i := range s.materials {
		// label 0 sits at the bottom
		y1 := cb.Max.Y - i*cb.Dy()/n
		y0 := cb.Max.Y - (i+1)*cb.Dy()/n
		c := colormap.Blend(white, s.labels.Color(i), s.opts.Alpha)
		fillRect(img, image.Rect(cb.Min.X, y0, cb.Max.X, y1), c)
		tick := (y0 + y1) / 2
		hline(img, cb.Max.X, cb.Max.X+2, tick, black)
		text(img, cb.Max.X+6, tick-textHeight/2, s.materials[i].Name, black)
	}
	strokeRect(img, cb.Inset(-1), black)
}

func (s *Scene) signalBounds() (t0, t1, lo, hi float64) {
	t0, t1 = 0, 1
	if len(s.traceT) > 0 {
		t0, t1 = s.traceT[0], s.traceT[len(s.traceT)-1]
	}
	if t1 == t0 {
		t1 = t0 + 1
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range s.trace {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 0) || hi == lo {
		lo, hi = lo-1, hi+1
		if math.IsInf(lo, 0) {
			lo, hi = -1, 1
		}
	}
	pad := 0.05 * (hi - lo)
	return t0, t1, lo - pad, hi + pad
}

func (s *Scene) signalPixel(t, v float64) (int, int) {
	r := s.layout.Signal
	t0, t1, lo, hi := s.signalBounds()
	px := r.Min.X + int(math.Round((t-t0)/(t1-t0)*float64(r.Dx()-1)))
	py := r.Max.Y - 1 - int(math.Round((v-lo)/(hi-lo)*float64(r.Dy()-1)))
	return px, py
}

func (s *Scene) drawSignalPanel(img *image.RGBA) {
	r := s.layout.Signal
	t0, t1, lo, hi := s.signalBounds()

	for k := 1; k < 5; k++ {
		vline(img, r.Min.X+k*r.Dx()/5, r.Min.Y, r.Max.Y-1, light)
		hline(img, r.Min.X, r.Max.X-1, r.Min.Y+k*r.Dy()/5, light)
	}
	strokeRect(img, r.Inset(-1), black)

	n := len(s.trace)
	if n > len(s.traceT) {
		n = len(s.traceT)
	}
	for i := 1; i < n; i++ {
		x0, y0 := s.signalPixel(s.traceT[i-1], s.trace[i-1])
		x1, y1 := s.signalPixel(s.traceT[i], s.trace[i])
		line(img, x0, y0, x1, y1, blue, 0)
	}

	text(img, r.Min.X, r.Max.Y+5, fmt.Sprintf("%.2f", t0), black)
	textRight(img, r.Max.X, r.Max.Y+5, fmt.Sprintf("%.2f", t1), black)
	textCentered(img, r.Min.X+r.Dx()/2, r.Max.Y+5+textHeight+2, "t (us)", black)
	textRight(img, r.Min.X-4, r.Min.Y, fmt.Sprintf("%.2g", hi), black)
	textRight(img, r.Min.X-4, r.Max.Y-textHeight, fmt.Sprintf("%.2g", lo), black)

	title := "Pulse echo signal"
	boldText(img, r.Min.X+(r.Dx()-textWidth(title))/2, r.Min.Y-textHeight-6, title, black)
}

// Frame renders animation frame n.
func (s *Scene) Frame(n int) (*image.RGBA, error) {
	img := s.pool.Get()
	if err := s.FrameInto(img, n); err != nil {
		s.pool.Put(img)
		return nil, err
	}
	return img, nil
}

// FrameInto renders animation frame n into img, which must have the scene
// dimensions.
func (s *Scene) FrameInto(img *image.RGBA, n int) error {
	if n < 0 || n >= s.FrameCount() {
		return fmt.Errorf("render: frame %d out of range [0, %d)", n, s.FrameCount())
	}
	if img.Bounds() != s.base.Bounds() {
		return fmt.Errorf("render: frame buffer is %v, scene is %v", img.Bounds(), s.base.Bounds())
	}
	copy(img.Pix, s.base.Pix)

	step := s.Step(n)
	s.drawField(img, step)
	s.drawOverlays(img)
	s.drawLegend(img)

	w := s.layout.Wave
	boldText(img, w.Min.X, w.Min.Y-textHeight-8, s.Title(n), black)

	if s.opts.Signal && step < len(s.traceT) {
		x, _ := s.signalPixel(s.traceT[step], 0)
		vline(img, x, s.layout.Signal.Min.Y, s.layout.Signal.Max.Y-1, red)
	}
	return nil
}

func (s *Scene) drawField(img *image.RGBA, step int) {
	f := s.d.Pressure
	frame := f.Frame(step)
	sc := s.opts.Scale
	w := s.layout.Wave

	for y := 0; y < f.NY; y++ {
		py0 := w.Max.Y - (y+1)*sc
		for x := 0; x < f.NX; x++ {
			c := s.field.Color(float64(frame[y*f.NX+x]))
			if s.opts.Alpha > 0 {
				c = colormap.Blend(c, s.labelColor(s.d.Image[y][x]), s.opts.Alpha)
			}
			px0 := w.Min.X + x*sc
			for dy := 0; dy < sc; dy++ {
				off := img.PixOffset(px0, py0+dy)
				for dx := 0; dx < sc; dx++ {
					i := off + 4*dx
					img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
				}
			}
		}
	}
}

func (s *Scene) labelColor(label int) color.RGBA {
	if i, ok := s.labelIdx[label]; ok {
		return s.labels.Color(i)
	}
	return s.labels.Color(label)
}

func (s *Scene) drawOverlays(img *image.RGBA) {
	if s.focus != nil {
		ax, ay := s.toPixel(s.focus.Edge1[0], s.focus.Edge1[1])
		bx, by := s.toPixel(s.focus.Mid[0], s.focus.Mid[1])
		cx, cy := s.toPixel(s.focus.Edge2[0], s.focus.Edge2[1])
		line(img, ax, ay, bx, by, grey, 2)
		line(img, bx, by, cx, cy, grey, 2)
	}
	p := s.params
	for i := range p.XLoc {
		x, y := s.toPixel(float64(p.XLoc[i]), float64(p.YLoc[i]))
		triangle(img, x, y, markerSize, black)
	}
}
