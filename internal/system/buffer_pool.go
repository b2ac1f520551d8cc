package system

import (
	"image"
	"sync"
)

// framePool recycles *image.RGBA buffers between frames to keep GC pressure
// down during an export run. Buffers are keyed by their bounds; a Get always
// returns a zeroed buffer.
type framePool struct {
	mu    sync.RWMutex
	pools map[string]*sync.Pool
}

var globalFramePool = &framePool{pools: make(map[string]*sync.Pool)}

// GetFrame returns a cleared *image.RGBA with the given bounds.
func GetFrame(rect image.Rectangle) *image.RGBA {
	return globalFramePool.get(rect)
}

// PutFrame returns a frame buffer to the pool.
func PutFrame(img *image.RGBA) {
	globalFramePool.put(img)
}

func (p *framePool) get(rect image.Rectangle) *image.RGBA {
	key := rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() any { return image.NewRGBA(rect) },
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	img := pool.Get().(*image.RGBA)
	clear(img.Pix)
	return img
}

func (p *framePool) put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := img.Rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
