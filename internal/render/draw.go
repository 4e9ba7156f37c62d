package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	grey  = color.RGBA{128, 128, 128, 255}
	light = color.RGBA{222, 222, 222, 255}
	red   = color.RGBA{214, 39, 40, 255}
	blue  = color.RGBA{31, 119, 180, 255}
)

var face = basicfont.Face7x13

const (
	textAscent = 11
	textHeight = 13
)

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func strokeRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	hline(img, r.Min.X, r.Max.X-1, r.Min.Y, c)
	hline(img, r.Min.X, r.Max.X-1, r.Max.Y-1, c)
	vline(img, r.Min.X, r.Min.Y, r.Max.Y-1, c)
	vline(img, r.Max.X-1, r.Min.Y, r.Max.Y-1, c)
}

func hline(img *image.RGBA, x0, x1, y int, c color.RGBA) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		setPixel(img, x, y, c)
	}
}

func vline(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		setPixel(img, x, y, c)
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{x, y}).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// line draws with Bresenham's algorithm. A non-zero dash draws dash pixels,
// skips dash pixels, and so on.
func line(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA, dash int) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for i := 0; ; i++ {
		if dash == 0 || (i/dash)%2 == 0 {
			setPixel(img, x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// triangle draws a filled up-pointing triangle centred on (cx, cy).
func triangle(img *image.RGBA, cx, cy, size int, c color.RGBA) {
	for row := 0; row < size; row++ {
		half := row / 2
		y := cy - size/2 + row
		hline(img, cx-half, cx+half, y, c)
	}
}

func textWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}

// text draws s with its top-left corner at (x, y).
func text(img *image.RGBA, x, y int, s string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+textAscent),
	}
	d.DrawString(s)
}

func textCentered(img *image.RGBA, cx, y int, s string, c color.RGBA) {
	text(img, cx-textWidth(s)/2, y, s, c)
}

func textRight(img *image.RGBA, x, y int, s string, c color.RGBA) {
	text(img, x-textWidth(s), y, s, c)
}

// boldText fakes a bold weight by drawing twice with a one pixel offset.
func boldText(img *image.RGBA, x, y int, s string, c color.RGBA) {
	text(img, x, y, s, c)
	text(img, x+1, y, s, c)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
