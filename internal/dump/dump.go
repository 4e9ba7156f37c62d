package dump

import (
	"math"

	"github.com/pkg/errors"
	"github.com/tidwall/btree"
)

// Dump is one simulation run: material backdrop, pressure volume and the
// attributes of the pressure dataset.
type Dump struct {
	Image    [][]int
	Pressure *Field
	Attrs    Attrs
}

// New allocates an empty dump with a zero backdrop.
func New(nt, ny, nx int) *Dump {
	img := make([][]int, ny)
	for y := range img {
		img[y] = make([]int, nx)
	}
	return &Dump{Image: img, Pressure: NewField(nt, ny, nx), Attrs: NewAttrs()}
}

// Params is the typed view of the attributes the renderer relies on.
type Params struct {
	X, Y, T    []float64
	Dt         float64
	XLoc, YLoc []int
	PMin, PMax float64
	CSF        float64

	FocalLength    float64
	HasFocalLength bool
}

// Clim returns the colour limits of the pressure field.
func (p *Params) Clim() (float64, float64) {
	return p.PMin / p.CSF, p.PMax / p.CSF
}

// TimeMicros is the time of step n in microseconds.
func (p *Params) TimeMicros(n int) float64 {
	return float64(n) * p.Dt / 1.e-6
}

func (d *Dump) Params() (*Params, error) {
	var (
		p   Params
		err error
	)
	if p.X, err = d.Attrs.Floats("x"); err != nil {
		return nil, err
	}
	if p.Y, err = d.Attrs.Floats("y"); err != nil {
		return nil, err
	}
	if p.Dt, err = d.Attrs.Float("dt"); err != nil {
		return nil, err
	}
	if p.XLoc, err = d.Attrs.Ints("xloc"); err != nil {
		return nil, err
	}
	if p.YLoc, err = d.Attrs.Ints("yloc"); err != nil {
		return nil, err
	}
	if p.PMin, err = d.Attrs.Float("pmin"); err != nil {
		return nil, err
	}
	if p.PMax, err = d.Attrs.Float("pmax"); err != nil {
		return nil, err
	}
	if p.CSF, err = d.Attrs.Float("csf"); err != nil {
		return nil, err
	}
	if p.CSF == 0 {
		return nil, errors.New("dump: colour scale factor csf is zero")
	}
	if len(p.XLoc) != len(p.YLoc) {
		return nil, errors.Wrapf(ErrShape, "xloc has %d entries, yloc has %d", len(p.XLoc), len(p.YLoc))
	}
	if len(p.XLoc) == 0 {
		return nil, errors.Wrap(ErrMissingAttr, "no sources in xloc/yloc")
	}

	if d.Attrs.Has("t") {
		if p.T, err = d.Attrs.Floats("t"); err != nil {
			return nil, err
		}
	} else if d.Pressure != nil {
		p.T = make([]float64, d.Pressure.NT)
		for i := range p.T {
			p.T[i] = float64(i) * p.Dt
		}
	}

	if d.Attrs.Has("focal_length") {
		if p.FocalLength, err = d.Attrs.Float("focal_length"); err != nil {
			return nil, err
		}
		p.HasFocalLength = true
	}
	return &p, nil
}

// Validate checks that datasets and attributes describe the same grid.
func (d *Dump) Validate() error {
	if d.Pressure == nil {
		return errors.Wrap(ErrShape, "no pressure dataset")
	}
	ny, nx := d.Pressure.NY, d.Pressure.NX
	if len(d.Image) != ny {
		return errors.Wrapf(ErrShape, "image has %d rows, pressure has %d", len(d.Image), ny)
	}
	for y, row := range d.Image {
		if len(row) != nx {
			return errors.Wrapf(ErrShape, "image row %d has %d columns, pressure has %d", y, len(row), nx)
		}
	}
	p, err := d.Params()
	if err != nil {
		return err
	}
	if len(p.X) != nx {
		return errors.Wrapf(ErrShape, "x has %d entries, grid is %d wide", len(p.X), nx)
	}
	if len(p.Y) != ny {
		return errors.Wrapf(ErrShape, "y has %d entries, grid is %d tall", len(p.Y), ny)
	}
	if len(p.T) != d.Pressure.NT {
		return errors.Wrapf(ErrShape, "t has %d entries, pressure has %d steps", len(p.T), d.Pressure.NT)
	}
	for i := range p.XLoc {
		if p.XLoc[i] < 0 || p.XLoc[i] >= nx || p.YLoc[i] < 0 || p.YLoc[i] >= ny {
			return errors.Wrapf(ErrShape, "source %d at (%d, %d) lies outside the grid", i, p.XLoc[i], p.YLoc[i])
		}
	}
	if math.IsNaN(p.PMin) || math.IsNaN(p.PMax) {
		return errors.New("dump: colour limits are NaN")
	}
	return nil
}

// Material is a medium of the backdrop and its integer label.
type Material struct {
	Label int
	Name  string
}

// DefaultRenames maps simulation medium names to the names shown in legends.
// Each call returns a fresh map.
func DefaultRenames() map[string]string {
	return map[string]string{
		"water": "electrolyte",
		"oil":   "couplant",
	}
}

const mediumPrefix = "medium_"

// RawMaterials returns the media declared by medium_<name> attributes,
// ordered by label.
func (d *Dump) RawMaterials() []Material {
	tr := btree.NewNonConcurrent(byLabel)
	for name, v := range d.Attrs.WithPrefix(mediumPrefix) {
		if v.IsArray() {
			arr := v.Array()
			if len(arr) == 0 {
				continue
			}
			v = arr[0]
		}
		tr.Set(Material{Label: int(v.Int()), Name: name})
	}

	out := make([]Material, 0, tr.Len())
	tr.Ascend(nil, func(i interface{}) bool {
		out = append(out, i.(Material))
		return true
	})
	return out
}

// Materials is RawMaterials with the given legend renames applied.
func (d *Dump) Materials(renames map[string]string) []Material {
	ms := d.RawMaterials()
	for i := range ms {
		if alias, ok := renames[ms[i].Name]; ok {
			ms[i].Name = alias
		}
	}
	return ms
}

func byLabel(a, b interface{}) bool {
	ma, mb := a.(Material), b.(Material)
	if ma.Label != mb.Label {
		return ma.Label < mb.Label
	}
	return ma.Name < mb.Name
}
