// Package anim encodes rendered frames into movie files.
package anim

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrNoFFmpeg    = errors.New("anim: ffmpeg not found in PATH")
	ErrMovieFormat = errors.New("anim: movie file should have extension .mp4 or .gif")
)

// FFmpegBinary is the program used for mp4 output.
var FFmpegBinary = "ffmpeg"

// Encoder consumes frames in display order.
type Encoder interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

// ValidateMoviePath checks the extension of a movie file name.
func ValidateMoviePath(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".gif":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrMovieFormat, path)
}

// NewEncoder picks the encoder from the file extension.
func NewEncoder(ctx context.Context, path string, fps, width, height int) (Encoder, error) {
	if err := ValidateMoviePath(path); err != nil {
		return nil, err
	}
	if fps <= 0 {
		return nil, fmt.Errorf("anim: frame rate must be positive, got %d", fps)
	}
	if strings.ToLower(filepath.Ext(path)) == ".gif" {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		return NewGIFEncoder(f, fps), nil
	}
	return NewFFmpegEncoder(ctx, path, fps, width, height)
}

// GIFEncoder collects dithered frames and writes the file on Close.
type GIFEncoder struct {
	w     io.Writer
	delay int
	anim  gif.GIF
}

func NewGIFEncoder(w io.Writer, fps int) *GIFEncoder {
	// delays are in 100ths of a second; most viewers clamp anything below 2
	delay := int(math.Round(100 / float64(fps)))
	if delay < 2 {
		delay = 2
	}
	return &GIFEncoder{w: w, delay: delay}
}

func (e *GIFEncoder) WriteFrame(img *image.RGBA) error {
	p := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(p, img.Bounds(), img, img.Bounds().Min)
	e.anim.Image = append(e.anim.Image, p)
	e.anim.Delay = append(e.anim.Delay, e.delay)
	return nil
}

func (e *GIFEncoder) Close() error {
	var err error
	if len(e.anim.Image) > 0 {
		err = gif.EncodeAll(e.w, &e.anim)
	}
	if c, ok := e.w.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// FFmpegEncoder streams raw RGBA frames into an ffmpeg process.
type FFmpegEncoder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	width  int
	height int
}

func NewFFmpegEncoder(ctx context.Context, path string, fps, width, height int) (*FFmpegEncoder, error) {
	bin, err := exec.LookPath(FFmpegBinary)
	if err != nil {
		return nil, ErrNoFFmpeg
	}

	e := &FFmpegEncoder{width: width, height: height}
	e.cmd = exec.CommandContext(ctx, bin,
		"-y", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(fps),
		"-i", "-",
		// yuv420p needs even dimensions
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
		path,
	)
	e.cmd.Stderr = &e.stderr
	if e.stdin, err = e.cmd.StdinPipe(); err != nil {
		return nil, err
	}
	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("anim: start ffmpeg: %w", err)
	}
	return e, nil
}

func (e *FFmpegEncoder) WriteFrame(img *image.RGBA) error {
	b := img.Bounds()
	if b.Dx() != e.width || b.Dy() != e.height {
		return fmt.Errorf("anim: frame is %dx%d, movie is %dx%d", b.Dx(), b.Dy(), e.width, e.height)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		if _, err := e.stdin.Write(img.Pix[off : off+4*e.width]); err != nil {
			return fmt.Errorf("anim: write to ffmpeg: %w: %s", err, strings.TrimSpace(e.stderr.String()))
		}
	}
	return nil
}

func (e *FFmpegEncoder) Close() error {
	if err := e.stdin.Close(); err != nil {
		return err
	}
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("anim: ffmpeg: %w: %s", err, strings.TrimSpace(e.stderr.String()))
	}
	return nil
}

// WritePNG stores a single frame.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
