package config

import (
	"path/filepath"
	"testing"

	"github.com/san-kum/wavescope/internal/dump"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dump != DefaultDump {
		t.Errorf("expected dump %s, got %s", DefaultDump, cfg.Dump)
	}
	if cfg.Render.SkipFrame != 1 {
		t.Errorf("expected skip frame 1, got %d", cfg.Render.SkipFrame)
	}
	if cfg.Movie.FPS != 60 {
		t.Errorf("expected 60 fps, got %d", cfg.Movie.FPS)
	}
	if cfg.Render.LegendLoc != "best" {
		t.Errorf("expected legend loc best, got %s", cfg.Render.LegendLoc)
	}

	cfg.MaterialSpeeds["water"] = 1
	if DefaultSpeeds["water"] != 1480 {
		t.Error("default speed table should not be shared")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wavescope.yaml")
	cfg := DefaultConfig()
	cfg.Render.SkipFrame = 5
	cfg.Render.Signal = true
	cfg.MaterialSpeeds["glass"] = 5640

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Render.SkipFrame != 5 || !got.Render.Signal {
		t.Errorf("render section not restored: %+v", got.Render)
	}
	if got.MaterialSpeeds["glass"] != 5640 {
		t.Errorf("expected glass speed 5640, got %g", got.MaterialSpeeds["glass"])
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := writeFile(path, "render:\n  skip_frame: 3\n"); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.SkipFrame != 3 {
		t.Errorf("expected skip frame 3, got %d", cfg.Render.SkipFrame)
	}
	if cfg.Movie.FPS != DefaultFPS {
		t.Errorf("expected default fps, got %d", cfg.Movie.FPS)
	}
	if cfg.Dump != DefaultDump {
		t.Errorf("expected default dump, got %s", cfg.Dump)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRenderOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.FocusRegime = true
	cfg.Render.LegendLoc = "upper left"
	opts := cfg.RenderOptions()
	if !opts.FocusRegime || opts.LegendLoc != "upper left" {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.Palette != "tab10" || opts.Colormap != "seismic" {
		t.Errorf("unexpected palette %s / colormap %s", opts.Palette, opts.Colormap)
	}
}

func TestSpeedsByLabel(t *testing.T) {
	cfg := DefaultConfig()
	mats := []dump.Material{{Label: 0, Name: "water"}, {Label: 2, Name: "steel"}}
	speeds, err := cfg.SpeedsByLabel(mats)
	if err != nil {
		t.Fatal(err)
	}
	if speeds[0] != 1480 || speeds[2] != 5900 {
		t.Errorf("unexpected speeds %v", speeds)
	}

	if _, err := cfg.SpeedsByLabel([]dump.Material{{Label: 4, Name: "unobtainium"}}); err == nil {
		t.Error("expected error for unknown medium")
	}
}

func TestRenames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LegendRenames["steel"] = "specimen"
	cfg.LegendRenames["oil"] = "gel"

	got := cfg.Renames()
	if got["steel"] != "specimen" || got["oil"] != "gel" {
		t.Errorf("configured renames not applied: %v", got)
	}
	if got["water"] != "electrolyte" {
		t.Error("built-in renames should be kept")
	}
	if cfg.RenderOptions().Renames["steel"] != "specimen" {
		t.Error("render options should carry the renames")
	}

	if other := DefaultConfig().Renames(); other["steel"] != "" || other["oil"] != "couplant" {
		t.Errorf("renames leaked between configs: %v", other)
	}
	if dump.DefaultRenames()["steel"] != "" {
		t.Error("built-in table must not change")
	}
}
