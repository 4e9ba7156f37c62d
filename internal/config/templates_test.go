package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(path, s string) error {
	return os.WriteFile(path, []byte(s), 0644)
}

func TestGetTemplate(t *testing.T) {
	tpl := GetTemplate("focused-immersion")
	if tpl == nil {
		t.Fatal("expected template, got nil")
	}
	if tpl.Transducer.FocalLength != 0.025 {
		t.Errorf("expected focal length 0.025, got %g", tpl.Transducer.FocalLength)
	}
	if len(tpl.Media) != 2 || tpl.Media[1].Name != "steel" {
		t.Errorf("unexpected media %+v", tpl.Media)
	}

	tpl.Mode = "cpu"
	tpl.Transducer.Elements = 1
	if Templates["focused-immersion"].Mode != "gpu" || Templates["focused-immersion"].Transducer.Elements != 32 {
		t.Error("template should be a copy")
	}
}

func TestGetTemplate_NotFound(t *testing.T) {
	if GetTemplate("nonexistent") != nil {
		t.Error("expected nil for nonexistent template")
	}
}

func TestListTemplates(t *testing.T) {
	names := ListTemplates()
	if len(names) != len(Templates) {
		t.Fatalf("expected %d templates, got %d", len(Templates), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("templates not sorted: %v", names)
		}
	}
}

func TestTemplatesValid(t *testing.T) {
	for _, name := range ListTemplates() {
		tpl := GetTemplate(name)
		if err := tpl.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
		if ppw := tpl.PointsPerWavelength(); ppw < 8 {
			t.Errorf("%s: only %.1f points per wavelength", name, ppw)
		}
	}
}

func TestTemplateValidate(t *testing.T) {
	tpl := GetTemplate("soft-tissue")
	tpl.Mode = "tpu"
	if err := tpl.Validate(); err == nil {
		t.Error("expected error for bad mode")
	}

	tpl = GetTemplate("soft-tissue")
	tpl.Media = []Medium{{Name: "water", Label: 0}, {Name: "steel", Label: 0}}
	if err := tpl.Validate(); err == nil {
		t.Error("expected error for shared label")
	}
}

func TestTemplateSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tpl.yaml")
	if err := SaveTemplate(path, GetTemplate("contact-couplant")); err != nil {
		t.Fatal(err)
	}
	got, err := LoadTemplate(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "contact-couplant" || got.Frequency != 2.25e6 || len(got.Media) != 2 {
		t.Errorf("unexpected template %+v", got)
	}
}
