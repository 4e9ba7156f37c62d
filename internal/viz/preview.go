package viz

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const halfBlock = "▀"

// Preview renders img as cols terminal cells per row. Each cell shows two
// pixel rows: the upper one as foreground and the lower one as background.
func Preview(img image.Image, cols int) string {
	b := img.Bounds()
	if b.Empty() {
		return ""
	}
	if cols <= 0 || cols > b.Dx() {
		cols = b.Dx()
	}
	scale := float64(b.Dx()) / float64(cols)
	rows := (int(float64(b.Dy())/scale) + 1) / 2
	if rows == 0 {
		rows = 1
	}

	sample := func(c, r int) (int, int, bool) {
		x := b.Min.X + int((float64(c)+0.5)*scale)
		y := b.Min.Y + int((float64(r)+0.5)*scale)
		return x, y, y < b.Max.Y
	}

	var sb strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, top, ok := sample(c, 2*r)
			if !ok {
				top = b.Max.Y - 1
			}
			style := lipgloss.NewStyle().Foreground(colorHex(img.At(x, top)))
			if _, bot, ok := sample(c, 2*r+1); ok {
				style = style.Background(colorHex(img.At(x, bot)))
			}
			sb.WriteString(style.Render(halfBlock))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func colorHex(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
