package dump

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Attrs is the attribute set attached to the pressure dataset, stored as a
// JSON object.
type Attrs struct {
	raw []byte
}

func NewAttrs() Attrs {
	return Attrs{raw: []byte("{}")}
}

// ParseAttrs wraps a JSON object. Anything else is rejected.
func ParseAttrs(raw []byte) (Attrs, error) {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return Attrs{}, errors.New("dump: attributes are not a JSON object")
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return Attrs{raw: cp}, nil
}

func (a Attrs) JSON() []byte {
	if len(a.raw) == 0 {
		return []byte("{}")
	}
	return a.raw
}

func (a Attrs) Get(name string) gjson.Result {
	return gjson.GetBytes(a.JSON(), escapePath(name))
}

func (a Attrs) Has(name string) bool {
	return a.Get(name).Exists()
}

// Set stores v under name. Slices and structs are marshalled as JSON.
func (a *Attrs) Set(name string, v interface{}) error {
	raw, err := sjson.SetBytes(a.JSON(), escapePath(name), v)
	if err != nil {
		return errors.Wrapf(err, "could not set attribute %s", name)
	}
	a.raw = raw
	return nil
}

func (a *Attrs) Delete(name string) error {
	raw, err := sjson.DeleteBytes(a.JSON(), escapePath(name))
	if err != nil {
		return errors.Wrapf(err, "could not delete attribute %s", name)
	}
	a.raw = raw
	return nil
}

// Names returns the attribute names in sorted order.
func (a Attrs) Names() []string {
	var names []string
	gjson.ParseBytes(a.JSON()).ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})
	sort.Strings(names)
	return names
}

// WithPrefix returns every attribute whose name starts with prefix, keyed by
// the remainder of the name.
func (a Attrs) WithPrefix(prefix string) map[string]gjson.Result {
	out := make(map[string]gjson.Result)
	gjson.ParseBytes(a.JSON()).ForEach(func(key, value gjson.Result) bool {
		if k := key.String(); strings.HasPrefix(k, prefix) {
			out[strings.TrimPrefix(k, prefix)] = value
		}
		return true
	})
	return out
}

// Float reads a scalar. Single-element arrays are accepted since array
// writers tend to store scalars that way.
func (a Attrs) Float(name string) (float64, error) {
	r := a.Get(name)
	if !r.Exists() {
		return 0, errors.Wrap(ErrMissingAttr, name)
	}
	if r.IsArray() {
		arr := r.Array()
		if len(arr) == 0 {
			return 0, errors.Wrapf(ErrMissingAttr, "%s is empty", name)
		}
		r = arr[0]
	}
	if r.Type != gjson.Number {
		return 0, errors.Errorf("dump: attribute %s is not a number", name)
	}
	return r.Float(), nil
}

// Floats reads a numeric array. A scalar becomes a one-element slice.
func (a Attrs) Floats(name string) ([]float64, error) {
	r := a.Get(name)
	if !r.Exists() {
		return nil, errors.Wrap(ErrMissingAttr, name)
	}
	if !r.IsArray() {
		if r.Type != gjson.Number {
			return nil, errors.Errorf("dump: attribute %s is not numeric", name)
		}
		return []float64{r.Float()}, nil
	}
	arr := r.Array()
	out := make([]float64, len(arr))
	for i, v := range arr {
		if v.Type != gjson.Number {
			return nil, errors.Errorf("dump: attribute %s[%d] is not a number", name, i)
		}
		out[i] = v.Float()
	}
	return out, nil
}

func (a Attrs) Ints(name string) ([]int, error) {
	fs, err := a.Floats(name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(fs))
	for i, f := range fs {
		out[i] = int(f)
	}
	return out, nil
}

func escapePath(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '.', '*', '?':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
