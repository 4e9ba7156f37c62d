package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

// Template is a parameter set for the external wave simulator. The
// simulator reads it and writes the dump this tool renders.
type Template struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Mode        string     `yaml:"mode"`
	Frequency   float64    `yaml:"frequency"`
	Cycles      int        `yaml:"cycles"`
	Spacing     float64    `yaml:"spacing"`
	NX          int        `yaml:"nx"`
	NY          int        `yaml:"ny"`
	Duration    float64    `yaml:"duration"`
	CFL         float64    `yaml:"cfl"`
	DumpEvery   int        `yaml:"dump_every"`
	Output      string     `yaml:"output"`
	Transducer  Transducer `yaml:"transducer"`
	Media       []Medium   `yaml:"media"`
}

type Transducer struct {
	Elements    int     `yaml:"elements"`
	Pitch       float64 `yaml:"pitch"`
	Depth       float64 `yaml:"depth"`
	FocalLength float64 `yaml:"focal_length,omitempty"`
}

// Medium is one material region; Label is its value in the dump image.
type Medium struct {
	Name    string  `yaml:"name"`
	Label   int     `yaml:"label"`
	Speed   float64 `yaml:"speed"`
	Density float64 `yaml:"density"`
	Top     float64 `yaml:"top"`
}

var (
	immersion = []Medium{
		{Name: "water", Label: 0, Speed: 1480, Density: 1000, Top: 0},
		{Name: "steel", Label: 1, Speed: 5900, Density: 7850, Top: 0.02},
	}
	contact = []Medium{
		{Name: "oil", Label: 0, Speed: 1450, Density: 870, Top: 0},
		{Name: "aluminium", Label: 1, Speed: 6320, Density: 2700, Top: 0.001},
	}
	tissue = []Medium{
		{Name: "water", Label: 0, Speed: 1480, Density: 1000, Top: 0},
		{Name: "tissue", Label: 1, Speed: 1540, Density: 1060, Top: 0.01},
		{Name: "bone", Label: 2, Speed: 3500, Density: 1900, Top: 0.03},
	}
)

var Templates = map[string]*Template{
	"baseline-waves-azim": {
		Name: "baseline-waves-azim", Description: "unfocused array in water over a steel plate",
		Mode: "gpu", Frequency: 5e6, Cycles: 3, Spacing: 3e-5, NX: 1200, NY: 1600,
		Duration: 4e-5, CFL: 0.3, DumpEvery: 20, Output: DefaultDump,
		Transducer: Transducer{Elements: 16, Pitch: 6e-4, Depth: 2e-3},
		Media:      immersion,
	},
	"focused-immersion": {
		Name: "focused-immersion", Description: "array focused below the water-steel interface",
		Mode: "gpu", Frequency: 5e6, Cycles: 3, Spacing: 3e-5, NX: 1200, NY: 1600,
		Duration: 4e-5, CFL: 0.3, DumpEvery: 20, Output: "FocusedImmersion.wdump",
		Transducer: Transducer{Elements: 32, Pitch: 3e-4, Depth: 2e-3, FocalLength: 0.025},
		Media:      immersion,
	},
	"contact-couplant": {
		Name: "contact-couplant", Description: "contact probe on aluminium through a thin couplant layer",
		Mode: "cpu", Frequency: 2.25e6, Cycles: 2, Spacing: 5e-5, NX: 800, NY: 800,
		Duration: 2e-5, CFL: 0.3, DumpEvery: 10, Output: "ContactCouplant.wdump",
		Transducer: Transducer{Elements: 1, Pitch: 1e-2, Depth: 5e-4},
		Media:      contact,
	},
	"soft-tissue": {
		Name: "soft-tissue", Description: "pulse-echo through tissue onto bone",
		Mode: "cpu", Frequency: 1e6, Cycles: 4, Spacing: 1e-4, NX: 600, NY: 600,
		Duration: 6e-5, CFL: 0.3, DumpEvery: 25, Output: "SoftTissue.wdump",
		Transducer: Transducer{Elements: 8, Pitch: 1.5e-3, Depth: 3e-3, FocalLength: 0.035},
		Media:      tissue,
	},
}

// GetTemplate returns a deep copy of the named template, or nil.
func GetTemplate(name string) *Template {
	src, ok := Templates[name]
	if !ok {
		return nil
	}
	var out Template
	if err := copier.CopyWithOption(&out, src, copier.Option{DeepCopy: true}); err != nil {
		return nil
	}
	return &out
}

func ListTemplates() []string {
	names := make([]string, 0, len(Templates))
	for name := range Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the parameters the simulator would reject.
func (t *Template) Validate() error {
	if t.Mode != "cpu" && t.Mode != "gpu" {
		return fmt.Errorf("config: template %s: mode must be cpu or gpu, got %q", t.Name, t.Mode)
	}
	if t.Frequency <= 0 || t.Spacing <= 0 || t.Duration <= 0 {
		return fmt.Errorf("config: template %s: frequency, spacing and duration must be positive", t.Name)
	}
	if t.NX <= 0 || t.NY <= 0 {
		return fmt.Errorf("config: template %s: grid is %dx%d", t.Name, t.NX, t.NY)
	}
	if len(t.Media) == 0 {
		return fmt.Errorf("config: template %s: no media", t.Name)
	}
	seen := make(map[int]string, len(t.Media))
	for _, m := range t.Media {
		if other, ok := seen[m.Label]; ok {
			return fmt.Errorf("config: template %s: media %s and %s share label %d", t.Name, other, m.Name, m.Label)
		}
		seen[m.Label] = m.Name
	}
	return nil
}

// PointsPerWavelength is the grid resolution of the slowest medium.
func (t *Template) PointsPerWavelength() float64 {
	slowest := 0.0
	for _, m := range t.Media {
		if slowest == 0 || m.Speed < slowest {
			slowest = m.Speed
		}
	}
	return slowest / t.Frequency / t.Spacing
}

func SaveTemplate(path string, t *Template) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &t, nil
}
