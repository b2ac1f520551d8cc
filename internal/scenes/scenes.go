package scenes

import (
	"fmt"
	"image"
	"image/color"

	"github.com/tuuundra/oddysseia-sub000/internal/compositor"
	"github.com/tuuundra/oddysseia-sub000/internal/config"
	"github.com/tuuundra/oddysseia-sub000/internal/source"
)

// Build instantiates the scene declared by a manifest entry.
func Build(sc config.SceneConfig, seed int64) (compositor.Scene, error) {
	switch sc.Kind {
	case "fragments":
		return NewFragments(sc.ID, 0, seed), nil
	case "drift":
		return NewDrift(sc.ID, 0, seed), nil
	case "storyboard":
		if sc.Artwork == "" {
			return nil, fmt.Errorf("scene %q: storyboard needs an artwork path", sc.ID)
		}
		src, err := source.Open(sc.Artwork)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", sc.ID, err)
		}
		return NewStoryboard(sc.ID, src, sc.Page)
	default:
		return nil, fmt.Errorf("scene %q: unknown kind %q", sc.ID, sc.Kind)
	}
}

func fillRect(dst *image.RGBA, x, y, w, h int, col color.RGBA) {
	bounds := dst.Bounds()
	for yy := y; yy < y+h; yy++ {
		if yy < bounds.Min.Y || yy >= bounds.Max.Y {
			continue
		}
		for xx := x; xx < x+w; xx++ {
			if xx < bounds.Min.X || xx >= bounds.Max.X {
				continue
			}
			dst.SetRGBA(xx, yy, col)
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
