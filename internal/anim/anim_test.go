package anim

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/san-kum/wavescope/internal/dump/dumptest"
	"github.com/san-kum/wavescope/internal/render"
)

// shadeSource renders frame n as a solid grey of level n with jittered
// timing so frames finish out of order.
type shadeSource struct {
	n        int
	fail     int
	mu       sync.Mutex
	released int
}

func (s *shadeSource) FrameCount() int { return s.n }

func (s *shadeSource) Frame(n int) (*image.RGBA, error) {
	if n == s.fail {
		return nil, errors.New("boom")
	}
	time.Sleep(time.Duration((s.n-n)%3) * time.Millisecond)
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{uint8(n), 0, 0, 255})
	return img, nil
}

func (s *shadeSource) Release(*image.RGBA) {
	s.mu.Lock()
	s.released++
	s.mu.Unlock()
}

type recorder struct {
	order []int
	fail  int
}

func (r *recorder) WriteFrame(img *image.RGBA) error {
	n := int(img.RGBAAt(0, 0).R)
	if n == r.fail {
		return errors.New("disk full")
	}
	r.order = append(r.order, n)
	return nil
}

func (r *recorder) Close() error { return nil }

func TestRenderKeepsOrder(t *testing.T) {
	src := &shadeSource{n: 40, fail: -1}
	rec := &recorder{fail: -1}
	var progress []int

	err := Render(context.Background(), src, rec, Options{
		Workers:  4,
		Progress: func(done, total int) { progress = append(progress, done) },
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(rec.order) != 40 {
		t.Fatalf("expected 40 frames, got %d", len(rec.order))
	}
	for i, n := range rec.order {
		if n != i {
			t.Fatalf("frame %d written at position %d", n, i)
		}
	}
	if src.released != 40 {
		t.Errorf("expected 40 released frames, got %d", src.released)
	}
	if progress[len(progress)-1] != 40 {
		t.Errorf("expected final progress 40, got %d", progress[len(progress)-1])
	}
}

func TestRenderSourceError(t *testing.T) {
	src := &shadeSource{n: 20, fail: 7}
	err := Render(context.Background(), src, &recorder{fail: -1}, Options{Workers: 3})
	var fe *FrameError
	if !errors.As(err, &fe) || fe.Frame != 7 || fe.Err.Error() != "boom" {
		t.Errorf("expected source error on frame 7, got %v", err)
	}
}

func TestRenderEncoderError(t *testing.T) {
	src := &shadeSource{n: 20, fail: -1}
	err := Render(context.Background(), src, &recorder{fail: 5}, Options{Workers: 3})
	if err == nil || err.Error() != "anim: frame 5: disk full" {
		t.Errorf("expected encoder error on frame 5, got %v", err)
	}
}

func TestRenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Render(ctx, &shadeSource{n: 20, fail: -1}, &recorder{fail: -1}, Options{Workers: 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGIFEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewGIFEncoder(&buf, 60)
	for i := 0; i < 3; i++ {
		if err := enc.WriteFrame(image.NewRGBA(image.Rect(0, 0, 8, 6))); err != nil {
			t.Fatal(err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	g, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(g.Image) != 3 {
		t.Errorf("expected 3 frames, got %d", len(g.Image))
	}
	if g.Delay[0] != 2 {
		t.Errorf("expected delay 2 at 60 fps, got %d", g.Delay[0])
	}
}

func TestValidateMoviePath(t *testing.T) {
	for _, ok := range []string{"out.mp4", "OUT.MP4", "dir/anim.gif"} {
		if err := ValidateMoviePath(ok); err != nil {
			t.Errorf("%s: unexpected error %v", ok, err)
		}
	}
	for _, bad := range []string{"out.avi", "mp4", "out"} {
		if err := ValidateMoviePath(bad); !errors.Is(err, ErrMovieFormat) {
			t.Errorf("%s: expected ErrMovieFormat, got %v", bad, err)
		}
	}
}

func TestNewEncoderWithoutFFmpeg(t *testing.T) {
	old := FFmpegBinary
	FFmpegBinary = "wavescope-no-such-ffmpeg"
	defer func() { FFmpegBinary = old }()

	_, err := NewEncoder(context.Background(), filepath.Join(t.TempDir(), "a.mp4"), 60, 4, 4)
	if !errors.Is(err, ErrNoFFmpeg) {
		t.Errorf("expected ErrNoFFmpeg, got %v", err)
	}
}

func TestSceneToGIF(t *testing.T) {
	opts := render.DefaultOptions()
	opts.SkipFrame = 4
	scene, err := render.NewScene(dumptest.New(dumptest.DefaultOptions()), opts)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "wave.gif")
	l := scene.Layout()
	enc, err := NewEncoder(context.Background(), path, 30, l.Width, l.Height)
	if err != nil {
		t.Fatal(err)
	}
	if err := Render(context.Background(), scene, enc, Options{Workers: 2}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 3 {
		t.Errorf("expected 3 frames, got %d", len(g.Image))
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.png")
	if err := WritePNG(path, image.NewRGBA(image.Rect(0, 0, 3, 3))); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("expected non-empty png, got %v %v", fi, err)
	}
}
