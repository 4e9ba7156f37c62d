package render

import (
	"image"
	"sync"
)

// FramePool recycles frame buffers of one size.
type FramePool struct {
	pool sync.Pool
	rect image.Rectangle
}

func NewFramePool(w, h int) *FramePool {
	rect := image.Rect(0, 0, w, h)
	return &FramePool{
		rect: rect,
		pool: sync.Pool{
			New: func() interface{} {
				return image.NewRGBA(rect)
			},
		},
	}
}

func (p *FramePool) Get() *image.RGBA {
	return p.pool.Get().(*image.RGBA)
}

// Put returns img to the pool. Buffers of another size are dropped.
func (p *FramePool) Put(img *image.RGBA) {
	if img != nil && img.Bounds() == p.rect {
		p.pool.Put(img)
	}
}

// Release hands a frame returned by Frame back to the scene's pool.
func (s *Scene) Release(img *image.RGBA) {
	s.pool.Put(img)
}
