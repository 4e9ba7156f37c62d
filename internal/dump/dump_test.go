package dump_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pbnjay/memory"

	"github.com/san-kum/wavescope/internal/dump"
	"github.com/san-kum/wavescope/internal/dump/dumptest"
)

var _ = Describe("Codec", func() {
	var d *dump.Dump

	BeforeEach(func() {
		d = dumptest.New(dumptest.DefaultOptions())
	})

	It("round-trips datasets and attributes", func() {
		Expect(d.Attrs.Set("operator", "bench 4")).To(Succeed())

		var buf bytes.Buffer
		Expect(dump.Encode(&buf, d)).To(Succeed())

		got, err := dump.Decode(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Pressure.NT).To(Equal(d.Pressure.NT))
		Expect(got.Image).To(Equal(d.Image))
		Expect(got.Pressure.At(5, 4, 20)).To(BeNumerically("~", d.Pressure.At(5, 4, 20), 1e-6))
		Expect(got.Attrs.Get("operator").String()).To(Equal("bench 4"))
	})

	It("writes and opens files", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run.wdump")
		Expect(dump.Create(path, d)).To(Succeed())

		got, err := dump.Open(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Validate()).To(Succeed())
	})

	It("rejects foreign files", func() {
		_, err := dump.Decode(bytes.NewReader([]byte("\x89HDF\r\n\x1a\n")))
		Expect(err).To(MatchError(dump.ErrBadMagic))
	})

	It("rejects unknown versions", func() {
		var buf bytes.Buffer
		buf.WriteString(dump.Magic)
		Expect(binary.Write(&buf, binary.LittleEndian, uint16(9))).To(Succeed())
		_, err := dump.Decode(&buf)
		Expect(err).To(MatchError(dump.ErrVersion))
	})

	It("detects corrupted frames", func() {
		var buf bytes.Buffer
		Expect(dump.Encode(&buf, d)).To(Succeed())
		raw := buf.Bytes()
		raw[len(raw)-12] ^= 0xff // last float of the last frame

		_, err := dump.Decode(bytes.NewReader(raw))
		Expect(err).To(MatchError(dump.ErrChecksum))
		Expect(err.Error()).To(ContainSubstring("frame 11"))
	})

	It("reads the header without the datasets", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run.wdump")
		Expect(dump.Create(path, d)).To(Succeed())

		h, err := dump.CheckMemory(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(h.NX).To(Equal(40))
		Expect(h.DecodedSize()).To(BeNumerically("==", 12*32*40*4+32*40*8))
	})

	It("rejects headers whose size overflows", func() {
		raw := rawHeader(`{"nt":8,"ny":2147483648,"nx":2147483648}`)
		_, err := dump.Decode(bytes.NewReader(raw))
		Expect(err).To(MatchError(dump.ErrTooLarge))

		_, err = dump.ReadHeader(bytes.NewReader(rawHeader(`{"nt":4611686018427387904,"ny":2,"nx":2}`)))
		Expect(err).To(MatchError(dump.ErrTooLarge))
	})

	It("refuses dumps larger than the host memory", func() {
		if memory.TotalMemory() == 0 {
			Skip("host does not report its memory")
		}
		path := filepath.Join(GinkgoT().TempDir(), "huge.wdump")
		Expect(os.WriteFile(path, rawHeader(`{"nt":1048576,"ny":16384,"nx":16384}`), 0644)).To(Succeed())

		_, err := dump.CheckMemory(path)
		Expect(err).To(MatchError(dump.ErrTooLarge))
	})

	It("fails on missing files", func() {
		_, err := dump.Open(filepath.Join(GinkgoT().TempDir(), "nope.wdump"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})
})

func rawHeader(doc string) []byte {
	var buf bytes.Buffer
	buf.WriteString(dump.Magic)
	Expect(binary.Write(&buf, binary.LittleEndian, uint16(dump.Version))).To(Succeed())
	Expect(binary.Write(&buf, binary.LittleEndian, uint32(len(doc)))).To(Succeed())
	buf.WriteString(doc)
	return buf.Bytes()
}

var _ = Describe("Field", func() {
	It("reports the value range", func() {
		f := dump.NewField(2, 2, 2)
		f.Set(0, 1, 0, -3.5)
		f.Set(1, 0, 1, 2.25)
		lo, hi := f.Range()
		Expect(lo).To(BeNumerically("==", -3.5))
		Expect(hi).To(BeNumerically("==", 2.25))
	})

	It("is empty without frames", func() {
		lo, hi := dump.NewField(0, 2, 2).Range()
		Expect([]float64{lo, hi}).To(Equal([]float64{0, 0}))
	})
})

var _ = Describe("Params", func() {
	It("decodes the typed view", func() {
		d := dumptest.New(dumptest.DefaultOptions())
		p, err := d.Params()
		Expect(err).NotTo(HaveOccurred())
		Expect(p.XLoc).To(Equal([]int{18, 20, 22}))
		Expect(p.YLoc).To(Equal([]int{4, 4, 4}))
		Expect(p.HasFocalLength).To(BeFalse())

		lo, hi := p.Clim()
		Expect(lo).To(Equal(-1.0))
		Expect(hi).To(Equal(1.0))
		Expect(p.TimeMicros(3)).To(BeNumerically("~", 0.06, 1e-12))
	})

	It("accepts scalars stored as one-element arrays", func() {
		d := dumptest.New(dumptest.DefaultOptions())
		Expect(d.Attrs.Set("csf", []float64{4})).To(Succeed())
		Expect(d.Attrs.Set("focal_length", []float64{1.2})).To(Succeed())

		p, err := d.Params()
		Expect(err).NotTo(HaveOccurred())
		Expect(p.CSF).To(Equal(4.0))
		Expect(p.FocalLength).To(Equal(1.2))
		Expect(p.HasFocalLength).To(BeTrue())
	})

	It("synthesizes the time axis when t is absent", func() {
		d := dumptest.New(dumptest.DefaultOptions())
		Expect(d.Attrs.Delete("t")).To(Succeed())

		p, err := d.Params()
		Expect(err).NotTo(HaveOccurred())
		Expect(p.T).To(HaveLen(12))
		Expect(p.T[2]).To(BeNumerically("~", 4.e-8, 1e-20))
	})

	It("reports missing attributes", func() {
		d := dumptest.New(dumptest.DefaultOptions())
		Expect(d.Attrs.Delete("pmax")).To(Succeed())
		_, err := d.Params()
		Expect(err).To(MatchError(dump.ErrMissingAttr))
	})

	It("rejects unpaired source coordinates", func() {
		d := dumptest.New(dumptest.DefaultOptions())
		Expect(d.Attrs.Set("yloc", []int{4})).To(Succeed())
		_, err := d.Params()
		Expect(err).To(MatchError(dump.ErrShape))
	})

	It("rejects sources outside the grid", func() {
		d := dumptest.New(dumptest.Options{NT: 2, NY: 8, NX: 8, Dt: 1e-8, Sources: [][2]int{{9, 1}}})
		Expect(d.Validate()).To(MatchError(dump.ErrShape))
	})
})

var _ = Describe("Materials", func() {
	It("orders media by label and renames legend entries", func() {
		d := dumptest.New(dumptest.DefaultOptions())
		Expect(d.Materials(dump.DefaultRenames())).To(Equal([]dump.Material{
			{Label: 0, Name: "electrolyte"},
			{Label: 1, Name: "couplant"},
			{Label: 2, Name: "steel"},
		}))
		Expect(d.RawMaterials()[0].Name).To(Equal("water"))
	})

	It("ignores attributes without the medium prefix", func() {
		d := dump.New(1, 2, 2)
		Expect(d.Attrs.Set("medium_bone", 3)).To(Succeed())
		Expect(d.Attrs.Set("mediums", 9)).To(Succeed())
		Expect(d.Materials(dump.DefaultRenames())).To(Equal([]dump.Material{{Label: 3, Name: "bone"}}))
	})

	It("leaves names alone without renames", func() {
		d := dumptest.New(dumptest.DefaultOptions())
		Expect(d.Materials(nil)).To(Equal(d.RawMaterials()))
	})
})
