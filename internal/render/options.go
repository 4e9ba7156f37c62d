package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/wavescope/internal/dump"
)

// Options control how a scene is drawn.
type Options struct {
	SkipFrame   int
	Signal      bool
	FocusRegime bool
	LegendLoc   string
	Scale       int
	Alpha       float64
	Palette     string
	Colormap    string
	// Renames maps medium names to legend names.
	Renames map[string]string
}

func DefaultOptions() Options {
	return Options{
		SkipFrame: 1,
		LegendLoc: "best",
		Scale:     1,
		Alpha:     0.5,
		Palette:   "tab10",
		Colormap:  "seismic",
		Renames:   dump.DefaultRenames(),
	}
}

func (o Options) validate() error {
	if o.SkipFrame < 1 {
		return fmt.Errorf("render: skip frame must be at least 1, got %d", o.SkipFrame)
	}
	if o.Scale < 1 {
		return fmt.Errorf("render: scale must be at least 1, got %d", o.Scale)
	}
	if o.Alpha < 0 || o.Alpha > 1 {
		return fmt.Errorf("render: alpha %g outside [0, 1]", o.Alpha)
	}
	_, err := ParseLegendLoc(o.LegendLoc)
	return err
}

// LegendLoc is a legend placement, numbered like matplotlib's loc codes.
type LegendLoc int

const (
	LocBest LegendLoc = iota
	LocUpperRight
	LocUpperLeft
	LocLowerLeft
	LocLowerRight
	LocRight
	LocCenterLeft
	LocCenterRight
	LocLowerCenter
	LocUpperCenter
	LocCenter
)

var locNames = []string{
	"best",
	"upper right",
	"upper left",
	"lower left",
	"lower right",
	"right",
	"center left",
	"center right",
	"lower center",
	"upper center",
	"center",
}

func (l LegendLoc) String() string {
	if l < 0 || int(l) >= len(locNames) {
		return fmt.Sprintf("LegendLoc(%d)", int(l))
	}
	return locNames[l]
}

// ParseLegendLoc accepts a location name or its numeric code.
func ParseLegendLoc(s string) (LegendLoc, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return LocBest, nil
	}
	for i, n := range locNames {
		if n == name {
			return LegendLoc(i), nil
		}
	}
	if code, err := strconv.Atoi(name); err == nil && code >= 0 && code < len(locNames) {
		return LegendLoc(code), nil
	}
	return 0, fmt.Errorf("render: unknown legend location %q, valid locations are %s", s, strings.Join(locNames, ", "))
}
