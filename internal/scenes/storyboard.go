package scenes

import (
	"fmt"
	"image"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/tuuundra/oddysseia-sub000/internal/scroll"
	"github.com/tuuundra/oddysseia-sub000/internal/source"
)

// Storyboard draws one artwork page as a scene backplate, letterboxed into
// the destination frame. The rendered page is cached after the first draw;
// the cache is memoization only, the output stays a function of the state.
type Storyboard struct {
	id   string
	src  source.Source
	page int
	dpi  int

	mu     sync.Mutex
	cached image.Image
}

func NewStoryboard(id string, src source.Source, page int) (*Storyboard, error) {
	if src == nil {
		return nil, fmt.Errorf("storyboard %q: nil source", id)
	}
	if page < 0 || page >= src.PageCount() {
		return nil, fmt.Errorf("storyboard %q: page %d out of range (%d pages)", id, page, src.PageCount())
	}
	return &Storyboard{id: id, src: src, page: page, dpi: 150}, nil
}

func (s *Storyboard) ID() string { return s.id }

func (s *Storyboard) Render(dst *image.RGBA, st scroll.State) error {
	page, err := s.pageImage()
	if err != nil {
		return err
	}

	bounds := dst.Bounds()
	pw := float64(page.Bounds().Dx())
	ph := float64(page.Bounds().Dy())
	if pw == 0 || ph == 0 {
		return nil
	}

	// Fit, preserving aspect ratio.
	scale := float64(bounds.Dx()) / pw
	if s := float64(bounds.Dy()) / ph; s < scale {
		scale = s
	}
	w := int(pw * scale)
	h := int(ph * scale)
	x0 := bounds.Min.X + (bounds.Dx()-w)/2
	y0 := bounds.Min.Y + (bounds.Dy()-h)/2

	target := image.Rect(x0, y0, x0+w, y0+h)
	xdraw.ApproxBiLinear.Scale(dst, target, page, page.Bounds(), xdraw.Over, nil)
	return nil
}

func (s *Storyboard) pageImage() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return s.cached, nil
	}
	img, err := s.src.RenderPage(s.page, s.dpi)
	if err != nil {
		return nil, fmt.Errorf("storyboard %q: render page %d: %w", s.id, s.page, err)
	}
	s.cached = img
	return img, nil
}
