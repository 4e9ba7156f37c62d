package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/wavescope/internal/dump"
	"github.com/san-kum/wavescope/internal/render"
)

const (
	DefaultDump      = "BaselineWavesAzim.wdump"
	DefaultSkipFrame = 1
	DefaultFPS       = 60
	DefaultLegendLoc = "best"
	DefaultScale     = 1
	DefaultAlpha     = 0.5
	DefaultPalette   = "tab10"
	DefaultColormap  = "seismic"
	DefaultDataDir   = ".wavescope"
	DefaultTheme     = "sonar"
)

type Config struct {
	Dump           string             `yaml:"dump"`
	DataDir        string             `yaml:"data_dir"`
	Render         RenderConfig       `yaml:"render"`
	Movie          MovieConfig        `yaml:"movie"`
	Theme          string             `yaml:"theme"`
	MaterialSpeeds map[string]float64 `yaml:"material_speeds"`
	LegendRenames  map[string]string  `yaml:"legend_renames"`
}

type RenderConfig struct {
	SkipFrame   int     `yaml:"skip_frame"`
	Signal      bool    `yaml:"signal"`
	FocusRegime bool    `yaml:"focus_regime"`
	LegendLoc   string  `yaml:"legend_loc"`
	Scale       int     `yaml:"scale"`
	Alpha       float64 `yaml:"alpha"`
	Palette     string  `yaml:"palette"`
	Colormap    string  `yaml:"colormap"`
}

type MovieConfig struct {
	FPS     int `yaml:"fps"`
	Workers int `yaml:"workers"`
}

// DefaultSpeeds are longitudinal sound speeds in m/s keyed by medium name.
var DefaultSpeeds = map[string]float64{
	"water":     1480,
	"oil":       1450,
	"steel":     5900,
	"aluminium": 6320,
	"tissue":    1540,
	"bone":      3500,
	"air":       343,
}

func DefaultConfig() *Config {
	speeds := make(map[string]float64, len(DefaultSpeeds))
	for k, v := range DefaultSpeeds {
		speeds[k] = v
	}
	return &Config{
		Dump:    DefaultDump,
		DataDir: DefaultDataDir,
		Render: RenderConfig{
			SkipFrame: DefaultSkipFrame,
			LegendLoc: DefaultLegendLoc,
			Scale:     DefaultScale,
			Alpha:     DefaultAlpha,
			Palette:   DefaultPalette,
			Colormap:  DefaultColormap,
		},
		Movie:          MovieConfig{FPS: DefaultFPS},
		Theme:          DefaultTheme,
		MaterialSpeeds: speeds,
		LegendRenames:  map[string]string{},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RenderOptions converts the render section into scene options.
func (c *Config) RenderOptions() render.Options {
	opts := render.DefaultOptions()
	r := c.Render
	opts.SkipFrame = r.SkipFrame
	opts.Signal = r.Signal
	opts.FocusRegime = r.FocusRegime
	opts.LegendLoc = r.LegendLoc
	opts.Scale = r.Scale
	opts.Alpha = r.Alpha
	if r.Palette != "" {
		opts.Palette = r.Palette
	}
	if r.Colormap != "" {
		opts.Colormap = r.Colormap
	}
	opts.Renames = c.Renames()
	return opts
}

// SpeedsByLabel resolves the speed table against the media of a dump.
func (c *Config) SpeedsByLabel(mats []dump.Material) (map[int]float64, error) {
	out := make(map[int]float64, len(mats))
	for _, m := range mats {
		v, ok := c.MaterialSpeeds[m.Name]
		if !ok {
			return nil, fmt.Errorf("config: no sound speed for medium %q", m.Name)
		}
		if v <= 0 {
			return nil, fmt.Errorf("config: sound speed for medium %q must be positive, got %g", m.Name, v)
		}
		out[m.Label] = v
	}
	return out, nil
}

// Renames returns the built-in legend renames overlaid with the configured ones.
func (c *Config) Renames() map[string]string {
	out := dump.DefaultRenames()
	for from, to := range c.LegendRenames {
		out[from] = to
	}
	return out
}
