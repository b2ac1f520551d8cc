package compositor

import (
	"image"

	"github.com/tuuundra/oddysseia-sub000/internal/scroll"
)

// Scene is the render contract between the controller and a visual layer.
// The controller never looks inside a scene; it only tells it how visible it
// is and hands it the current scroll state to redraw from.
type Scene interface {
	ID() string
	Render(dst *image.RGBA, st scroll.State) error
}
