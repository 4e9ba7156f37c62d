// Package sampling traces straight rays through pixel maps, for 2-D and 3-D
// grids alike.
package sampling

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrDimension = errors.New("sampling: point dimension mismatch")
	ErrSpeed     = errors.New("sampling: non-positive speed")
	ErrOutOfMap  = errors.New("sampling: ray leaves the map")
	ErrDirection = errors.New("sampling: zero direction")
)

// Point is a position in pixel units, one coordinate per map axis.
type Point []float64

// SampleAlongLine returns num points origin + k*step*û for k = 0..num-1, where
// û is direction normalized to unit length. direction is not modified.
func SampleAlongLine(origin, direction Point, step float64, num int) ([]Point, error) {
	if len(origin) != len(direction) {
		return nil, ErrDimension
	}
	n := norm(direction)
	if n == 0 {
		return nil, ErrDirection
	}

	out := make([]Point, num)
	for k := range out {
		p := make(Point, len(origin))
		for i := range p {
			p[i] = origin[i] + float64(k)*step*direction[i]/n
		}
		out[k] = p
	}
	return out, nil
}

// IsInMapRegion reports whether every coordinate of point lies within the
// inclusive [lo, hi] bounds of its axis.
func IsInMapRegion(point Point, lims [][2]float64) bool {
	if len(point) != len(lims) {
		return false
	}
	for i, v := range point {
		if v < lims[i][0] || v > lims[i][1] {
			return false
		}
	}
	return true
}

// Map is a dense n-dimensional grid of propagation speeds in pixels per unit
// time.
type Map interface {
	Dims() []int
	At(idx []int) float64
}

// DefaultStepsPerPixel is the sampling density used by TimeOfFlight.
const DefaultStepsPerPixel = 8

// Flight is the result of a time-of-flight query.
type Flight struct {
	Time    float64
	Speeds  []float64
	Samples [][]int
}

// TimeOfFlight integrates dx/speed along the straight line from origin to
// query. Both points are in pixel units with one coordinate per map axis.
// The line is cut into round(distance*stepsPerPixel) evenly spaced samples,
// each snapped to the nearest pixel.
func TimeOfFlight(query, origin Point, m Map, stepsPerPixel int) (*Flight, error) {
	dims := m.Dims()
	if len(query) != len(origin) || len(query) != len(dims) {
		return nil, fmt.Errorf("%w: query %d, origin %d, map %d", ErrDimension, len(query), len(origin), len(dims))
	}
	if stepsPerPixel <= 0 {
		stepsPerPixel = DefaultStepsPerPixel
	}

	disp := make(Point, len(query))
	for i := range disp {
		disp[i] = query[i] - origin[i]
	}
	distance := norm(disp)
	if distance == 0 {
		return &Flight{}, nil
	}

	n := int(math.Round(distance * float64(stepsPerPixel)))
	if n < 2 {
		n = 2
	}
	// mean spacing of a linspace over [0, distance]
	dx := distance / float64(n-1)

	f := &Flight{
		Speeds:  make([]float64, n),
		Samples: make([][]int, n),
	}
	for k := 0; k < n; k++ {
		s := float64(k) * dx
		idx := make([]int, len(origin))
		for i := range idx {
			idx[i] = int(math.Round(origin[i] + s*disp[i]/distance))
			if idx[i] < 0 || idx[i] >= dims[i] {
				return nil, fmt.Errorf("%w: sample %d at %v", ErrOutOfMap, k, idx)
			}
		}
		speed := m.At(idx)
		if speed <= 0 || math.IsNaN(speed) {
			return nil, fmt.Errorf("%w: %g at %v", ErrSpeed, speed, idx)
		}
		f.Samples[k] = idx
		f.Speeds[k] = speed
		f.Time += dx / speed
	}
	return f, nil
}

func norm(p Point) float64 {
	s := 0.0
	for _, v := range p {
		s += v * v
	}
	return math.Sqrt(s)
}
