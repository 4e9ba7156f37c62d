package anim

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Source produces numbered frames.
type Source interface {
	FrameCount() int
	Frame(n int) (*image.RGBA, error)
}

// Releaser takes back frames once they are encoded.
type Releaser interface {
	Release(img *image.RGBA)
}

// FrameError wraps a failure with the frame it happened on.
type FrameError struct {
	Frame int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("anim: frame %d: %v", e.Frame, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Options control Render.
type Options struct {
	Workers  int
	Progress func(done, total int)
}

// Render draws every frame of src with up to Workers goroutines and feeds
// them to enc strictly in order. At most Workers frames are held at any
// time. enc is not closed.
func Render(ctx context.Context, src Source, enc Encoder, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := src.FrameCount()
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	slots := make([]chan *image.RGBA, n)
	for i := range slots {
		slots[i] = make(chan *image.RGBA, 1)
	}
	window := make(chan struct{}, workers)

	g.Go(func() error {
		for i := 0; i < n; i++ {
			select {
			case window <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			i := i
			g.Go(func() error {
				img, err := src.Frame(i)
				if err != nil {
					return &FrameError{Frame: i, Err: err}
				}
				slots[i] <- img
				return nil
			})
		}
		return nil
	})

	rel, _ := src.(Releaser)
	var werr error
	stopped := false
	for i := 0; i < n && werr == nil && !stopped; i++ {
		select {
		case img := <-slots[i]:
			if err := enc.WriteFrame(img); err != nil {
				werr = &FrameError{Frame: i, Err: err}
			}
			if rel != nil {
				rel.Release(img)
			}
			<-window
			if werr == nil && opts.Progress != nil {
				opts.Progress(i+1, n)
			}
		case <-gctx.Done():
			stopped = true
		}
	}

	if werr != nil {
		cancel()
		_ = g.Wait()
		return werr
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if stopped {
		return gctx.Err()
	}
	return nil
}
