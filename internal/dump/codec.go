package dump

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

const (
	Magic   = "WDMP"
	Version = 1

	maxHeaderSize = 64 << 20

	// maxDecoded bounds the bytes a header may declare so sizes stay in int.
	maxDecoded = math.MaxInt >> 1
)

// Header is the JSON document following the fixed preamble.
type Header struct {
	NT    int             `json:"nt"`
	NY    int             `json:"ny"`
	NX    int             `json:"nx"`
	Attrs json.RawMessage `json:"attrs"`
}

// DecodedSize is the number of bytes the datasets occupy once loaded.
func (h Header) DecodedSize() uint64 {
	cells := uint64(h.NY) * uint64(h.NX)
	return cells*uint64(h.NT)*4 + cells*8
}

func (h Header) checkBounds() error {
	if h.NY > maxDecoded/h.NX {
		return errors.Wrapf(ErrTooLarge, "header declares a %d x %d grid", h.NY, h.NX)
	}
	cells := h.NY * h.NX
	if cells > maxDecoded/8 || h.NT > (maxDecoded-cells*8)/(cells*4) {
		return errors.Wrapf(ErrTooLarge, "header declares %d frames of %d cells", h.NT, cells)
	}
	return nil
}

func Open(path string) (*Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := Decode(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}
	return d, nil
}

func Create(path string, d *Dump) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriterSize(f, 1<<20)
	if err := Encode(w, d); err != nil {
		f.Close()
		return errors.Wrapf(err, "could not write %s", path)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "could not flush %s", path)
	}
	return f.Close()
}

// ReadHeader reads the preamble and header and leaves r at the image dataset.
func ReadHeader(r io.Reader) (*Header, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, errors.Wrap(ErrBadMagic, err.Error())
	}
	if string(magic) != Magic {
		return nil, ErrBadMagic
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, errors.Wrap(err, "could not read version")
	}
	if version != Version {
		return nil, errors.Wrapf(ErrVersion, "version %d", version)
	}

	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, errors.Wrap(err, "could not read header size")
	}
	if size > maxHeaderSize {
		return nil, errors.Errorf("dump: header of %d bytes exceeds limit", size)
	}

	raw := make([]byte, size)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, errors.Wrap(err, "could not read header")
	}

	var h Header
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal header")
	}
	if h.NT < 0 || h.NY <= 0 || h.NX <= 0 {
		return nil, errors.Wrapf(ErrShape, "header declares nt=%d ny=%d nx=%d", h.NT, h.NY, h.NX)
	}
	if err := h.checkBounds(); err != nil {
		return nil, err
	}
	return &h, nil
}

func Decode(r io.Reader) (*Dump, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	attrs := NewAttrs()
	if len(h.Attrs) > 0 {
		if attrs, err = ParseAttrs(h.Attrs); err != nil {
			return nil, err
		}
	}

	d := &Dump{
		Image:    make([][]int, h.NY),
		Pressure: NewField(h.NT, h.NY, h.NX),
		Attrs:    attrs,
	}

	row := make([]byte, 4*h.NX)
	for y := 0; y < h.NY; y++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return nil, errors.Wrapf(err, "could not read image row %d", y)
		}
		d.Image[y] = make([]int, h.NX)
		for x := 0; x < h.NX; x++ {
			d.Image[y][x] = int(int32(binary.LittleEndian.Uint32(row[4*x:])))
		}
	}

	buf := make([]byte, 4*d.Pressure.FrameSize())
	sum := make([]byte, 8)
	for t := 0; t < h.NT; t++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrapf(err, "could not read frame %d", t)
		}
		if _, err := io.ReadFull(r, sum); err != nil {
			return nil, errors.Wrapf(err, "could not read checksum of frame %d", t)
		}
		if xxhash.Sum64(buf) != binary.LittleEndian.Uint64(sum) {
			return nil, errors.Wrapf(ErrChecksum, "frame %d", t)
		}
		frame := d.Pressure.Frame(t)
		for i := range frame {
			frame[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
		}
	}
	return d, nil
}

func Encode(w io.Writer, d *Dump) error {
	if d.Pressure == nil {
		return errors.Wrap(ErrShape, "no pressure dataset")
	}
	f := d.Pressure
	if len(d.Image) != f.NY {
		return errors.Wrapf(ErrShape, "image has %d rows, pressure has %d", len(d.Image), f.NY)
	}

	raw, err := json.Marshal(Header{NT: f.NT, NY: f.NY, NX: f.NX, Attrs: d.Attrs.JSON()})
	if err != nil {
		return errors.Wrap(err, "could not marshal header")
	}

	if _, err := io.WriteString(w, Magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(Version)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(raw))); err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}

	row := make([]byte, 4*f.NX)
	for y, labels := range d.Image {
		if len(labels) != f.NX {
			return errors.Wrapf(ErrShape, "image row %d has %d columns, pressure has %d", y, len(labels), f.NX)
		}
		for x, v := range labels {
			binary.LittleEndian.PutUint32(row[4*x:], uint32(int32(v)))
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}

	buf := make([]byte, 4*f.FrameSize())
	sum := make([]byte, 8)
	for t := 0; t < f.NT; t++ {
		for i, v := range f.Frame(t) {
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
		}
		binary.LittleEndian.PutUint64(sum, xxhash.Sum64(buf))
		if _, err := w.Write(buf); err != nil {
			return errors.Wrapf(err, "could not write frame %d", t)
		}
		if _, err := w.Write(sum); err != nil {
			return errors.Wrapf(err, "could not write checksum of frame %d", t)
		}
	}
	return nil
}
