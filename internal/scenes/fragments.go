// Package scenes holds the procedural scene renderers. Each scene is a pure
// function of the sampled scroll state: no scene keeps memory of past ticks,
// all motion derives from the progress value it is handed.
package scenes

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tuuundra/oddysseia-sub000/internal/scroll"
)

// Fragments renders a fractured boulder: fragments start scattered and
// converge onto a distorted sphere formation as progress rises. The target
// layout distributes fragments on a golden-ratio sphere with a sinusoidal
// surface distortion, bottom pieces slightly compressed and top pieces
// slightly extended.
type Fragments struct {
	id      string
	targets []mgl64.Vec3
	scatter []mgl64.Vec3
	shade   []float64
	Tint    color.RGBA
}

const (
	fragmentBaseRadius = 1.0
	fragmentNoiseScale = 0.05
)

func NewFragments(id string, count int, seed int64) *Fragments {
	if count <= 0 {
		count = 266
	}

	f := &Fragments{
		id:      id,
		targets: make([]mgl64.Vec3, count),
		scatter: make([]mgl64.Vec3, count),
		shade:   make([]float64, count),
		Tint:    color.RGBA{R: 97, G: 97, B: 97, A: 255},
	}

	golden := (1 + math.Sqrt(5)) / 2
	rng := rand.New(rand.NewSource(seed))

	for i := 0; i < count; i++ {
		theta := 2 * math.Pi * float64(i) / golden
		phi := math.Acos(1 - 2*(float64(i)+0.5)/float64(count))

		radius := fragmentBaseRadius
		normalized := float64(i) / float64(count)
		if normalized < 0.3 {
			radius *= 0.9
		} else if normalized > 0.7 {
			radius *= 1.1
		}

		p := mgl64.Vec3{
			radius * math.Sin(phi) * math.Cos(theta),
			radius * math.Sin(phi) * math.Sin(theta),
			radius * math.Cos(phi),
		}

		// Rock-like surface: low-frequency wobble plus occasional bumps.
		noise := math.Sin(theta*5+phi*3)*5 + math.Cos(theta*7-phi*2)*3
		if i%3 == 0 {
			noise += 5
		}
		noise *= fragmentNoiseScale
		p = p.Add(mgl64.Vec3{noise, noise * 0.8, noise})

		f.targets[i] = p
		f.shade[i] = 0.55 + 0.45*(p.Z()/(fragmentBaseRadius*1.4)+1)/2

		// Scattered rest position: same bearing, pushed far out with jitter.
		dir := p.Normalize()
		dist := 2.5 + rng.Float64()*1.5
		jitter := mgl64.Vec3{
			(rng.Float64() - 0.5) * 0.8,
			(rng.Float64() - 0.5) * 0.8,
			(rng.Float64() - 0.5) * 0.8,
		}
		f.scatter[i] = dir.Mul(fragmentBaseRadius * dist).Add(jitter)
	}

	return f
}

func (f *Fragments) ID() string { return f.id }

func (f *Fragments) Render(dst *image.RGBA, st scroll.State) error {
	bounds := dst.Bounds()
	cx := float64(bounds.Min.X+bounds.Max.X) / 2
	cy := float64(bounds.Min.Y+bounds.Max.Y) / 2
	scale := math.Min(float64(bounds.Dx()), float64(bounds.Dy())) * 0.28

	t := easeInOutCubic(clamp01(st.Progress))

	for i, target := range f.targets {
		pos := f.scatter[i].Mul(1 - t).Add(target.Mul(t))

		// Orthographic projection, Y as depth.
		x := cx + pos.X()*scale
		y := cy - pos.Z()*scale
		depth := (pos.Y()/fragmentBaseRadius + 1.6) / 3.2

		size := int(2 + depth*4)
		shade := f.shade[i] * (0.6 + 0.4*depth)
		col := color.RGBA{
			R: uint8(clamp01(shade*float64(f.Tint.R)/255) * 255),
			G: uint8(clamp01(shade*float64(f.Tint.G)/255) * 255),
			B: uint8(clamp01(shade*float64(f.Tint.B)/255) * 255),
			A: 255,
		}
		fillRect(dst, int(x)-size/2, int(y)-size/2, size, size, col)
	}

	return nil
}
