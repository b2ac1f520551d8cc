package scenes

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tuuundra/oddysseia-sub000/internal/scroll"
)

// Drift is a particle field: each particle follows a slow sinusoidal orbit
// whose phase is the progress value, so rendering the same state twice
// produces the same frame.
type Drift struct {
	id        string
	origins   []mgl64.Vec2
	headings  []mgl64.Vec2
	phases    []float64
	intensity []float64
}

func NewDrift(id string, count int, seed int64) *Drift {
	if count <= 0 {
		count = 400
	}

	d := &Drift{
		id:        id,
		origins:   make([]mgl64.Vec2, count),
		headings:  make([]mgl64.Vec2, count),
		phases:    make([]float64, count),
		intensity: make([]float64, count),
	}

	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < count; i++ {
		d.origins[i] = mgl64.Vec2{rng.Float64(), rng.Float64()}
		angle := rng.Float64() * 2 * math.Pi
		d.headings[i] = mgl64.Vec2{math.Cos(angle), math.Sin(angle)}
		d.phases[i] = rng.Float64() * 2 * math.Pi
		d.intensity[i] = 0.4 + rng.Float64()*0.6
	}

	return d
}

func (d *Drift) ID() string { return d.id }

func (d *Drift) Render(dst *image.RGBA, st scroll.State) error {
	bounds := dst.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	p := clamp01(st.Progress)

	for i, origin := range d.origins {
		travel := d.headings[i].Mul(p * 0.35)
		wobble := mgl64.Vec2{
			math.Sin(p*4*math.Pi+d.phases[i]) * 0.02,
			math.Cos(p*3*math.Pi+d.phases[i]) * 0.02,
		}
		pos := origin.Add(travel).Add(wobble)

		// Wrap into the unit square so particles re-enter the frame.
		x := pos.X() - math.Floor(pos.X())
		y := pos.Y() - math.Floor(pos.Y())

		v := uint8(d.intensity[i] * 255)
		col := color.RGBA{R: v, G: v, B: uint8(float64(v) * 0.92), A: 255}
		px := bounds.Min.X + int(x*w)
		py := bounds.Min.Y + int(y*h)
		fillRect(dst, px, py, 2, 2, col)
	}

	return nil
}
