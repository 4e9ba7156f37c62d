package sampling

import "fmt"

// Grid2D is a row-major 2-D speed map indexed as [y][x], matching the
// layout of the material backdrop.
type Grid2D struct {
	ny, nx int
	v      []float64
}

func NewGrid2D(ny, nx int) *Grid2D {
	return &Grid2D{ny: ny, nx: nx, v: make([]float64, ny*nx)}
}

func (g *Grid2D) Dims() []int { return []int{g.ny, g.nx} }

func (g *Grid2D) At(idx []int) float64 { return g.v[idx[0]*g.nx+idx[1]] }

func (g *Grid2D) Set(y, x int, v float64) { g.v[y*g.nx+x] = v }

// SpeedMap converts a label image into a speed map using speeds[label].
// Every label present in the image must have a speed.
func SpeedMap(image [][]int, speeds map[int]float64) (*Grid2D, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("sampling: empty image")
	}
	g := NewGrid2D(len(image), len(image[0]))
	for y, row := range image {
		if len(row) != g.nx {
			return nil, fmt.Errorf("sampling: ragged image at row %d", y)
		}
		for x, label := range row {
			s, ok := speeds[label]
			if !ok {
				return nil, fmt.Errorf("sampling: no speed for label %d", label)
			}
			g.Set(y, x, s)
		}
	}
	return g, nil
}
