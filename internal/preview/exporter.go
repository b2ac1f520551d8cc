package preview

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tuuundra/oddysseia-sub000/internal/config"
	"github.com/tuuundra/oddysseia-sub000/internal/director"
	"github.com/tuuundra/oddysseia-sub000/internal/scenes"
	"github.com/tuuundra/oddysseia-sub000/internal/scroll"
	"github.com/tuuundra/oddysseia-sub000/internal/sequencer"
	"github.com/tuuundra/oddysseia-sub000/internal/system"
)

const (
	simDocumentHeight = 6000
	simViewportHeight = 900
	simFrameStep      = 16 * time.Millisecond
	simMediaDuration  = 800 * time.Millisecond
)

// Exporter drives a scripted run of the controller and renders each frame's
// opacity assignment to PNG.
type Exporter struct {
	cfg   *config.Config
	ctrl  *director.Controller
	view  *SimViewport
	media *SimMedia

	// Script: frames at which the hotspot triggers fire. Zero disables.
	TriggerForwardFrame int
	TriggerReverseFrame int
}

func NewExporter(cfg *config.Config) (*Exporter, error) {
	view := NewSimViewport(simDocumentHeight, simViewportHeight)
	media := NewSimMedia(simMediaDuration)

	ctrl, err := director.New(cfg, view, media)
	if err != nil {
		return nil, err
	}
	media.SetEventHandlers(ctrl.OnTimeUpdate, func() { ctrl.OnEnded() })

	for i, sc := range cfg.Scenes {
		scene, err := scenes.Build(sc, int64(i)*7919+1)
		if err != nil {
			return nil, err
		}
		if err := ctrl.AddScene(scene); err != nil {
			return nil, err
		}
	}

	frames := cfg.Preview.Frames
	return &Exporter{
		cfg:                 cfg,
		ctrl:                ctrl,
		view:                view,
		media:               media,
		TriggerForwardFrame: frames / 3,
		TriggerReverseFrame: frames * 2 / 3,
	}, nil
}

// SetVerbose forwards sequence state logging to the controller.
func (e *Exporter) SetVerbose(on bool) {
	e.ctrl.Verbose = on
}

type frameSpec struct {
	Index     int
	State     scroll.State
	Opacities map[string]float64
}

// Export runs the simulation in real time (timers and media events behave as
// they would in a live page), then renders the captured frames in parallel.
func (e *Exporter) Export(ctx context.Context) (system.Report, error) {
	var report system.Report
	report.Host = system.Snapshot()
	report.Frames = e.cfg.Preview.Frames
	start := time.Now()

	// Pending controller timers must not outlive the run.
	defer e.ctrl.Close()

	if err := os.MkdirAll(e.cfg.Preview.OutDir, 0755); err != nil {
		return report, err
	}

	specs, err := e.simulate(ctx)
	if err != nil {
		return report, err
	}
	report.Simulate = time.Since(start)

	renderStart := time.Now()
	if err := e.render(ctx, specs); err != nil {
		return report, err
	}
	report.Render = time.Since(renderStart)

	if e.cfg.Preview.Sheet {
		if err := e.contactSheet(specs); err != nil {
			return report, fmt.Errorf("contact sheet: %w", err)
		}
	}

	report.Total = time.Since(start)
	return report, nil
}

func (e *Exporter) simulate(ctx context.Context) ([]frameSpec, error) {
	frames := e.cfg.Preview.Frames
	if frames < 2 {
		return nil, fmt.Errorf("preview needs at least 2 frames, got %d", frames)
	}

	span := simDocumentHeight - simViewportHeight
	specs := make([]frameSpec, 0, frames)

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// The scripted user scrolls linearly down the document; past the
		// loop point the guard takes over and the user input goes dead
		// until the reset settles.
		target := float64(i) / float64(frames-1) * float64(span)
		e.view.UserScroll(target)

		st := e.ctrl.HandleScroll()
		e.media.Advance(simFrameStep)

		if i == e.TriggerForwardFrame && e.TriggerForwardFrame > 0 {
			if err := e.ctrl.Trigger(sequencer.Forward); err != nil {
				fmt.Printf("[!] Forward trigger rejected: %v\n", err)
			}
		}
		if i == e.TriggerReverseFrame && e.TriggerReverseFrame > 0 {
			if err := e.ctrl.Trigger(sequencer.Reverse); err != nil {
				fmt.Printf("[!] Reverse trigger rejected: %v\n", err)
			}
		}

		specs = append(specs, frameSpec{
			Index:     i,
			State:     st,
			Opacities: e.ctrl.Opacities(),
		})

		time.Sleep(simFrameStep)
	}

	return specs, nil
}

func (e *Exporter) render(ctx context.Context, specs []frameSpec) error {
	workers := e.cfg.Preview.Workers
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	sceneOrder := e.ctrl.Registry().Scenes()
	done := 0

	for _, spec := range specs {
		spec := spec
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			frame, err := e.renderFrame(spec, sceneOrder)
			if err != nil {
				return err
			}
			defer system.PutFrame(frame)

			path := filepath.Join(e.cfg.Preview.OutDir, fmt.Sprintf("frame_%04d.png", spec.Index))
			if err := writePNG(path, frame); err != nil {
				return fmt.Errorf("frame %d: %w", spec.Index, err)
			}
			return nil
		})
		done++
		if done%30 == 0 {
			fmt.Printf("[>] Queued: %d/%d\n", done, len(specs))
		}
	}

	return g.Wait()
}

func (e *Exporter) renderFrame(spec frameSpec, sceneOrder []string) (*image.RGBA, error) {
	bounds := image.Rect(0, 0, e.cfg.Preview.Width, e.cfg.Preview.Height)
	frame := system.GetFrame(bounds)
	fillBackground(frame)

	for _, id := range sceneOrder {
		op := spec.Opacities[id]
		if op < 0.004 {
			continue
		}
		scene, ok := e.ctrl.Registry().Scene(id)
		if !ok {
			continue
		}

		layer := system.GetFrame(bounds)
		if err := scene.Render(layer, spec.State); err != nil {
			system.PutFrame(layer)
			system.PutFrame(frame)
			return nil, fmt.Errorf("scene %q: %w", id, err)
		}
		blendLayer(frame, layer, op)
		system.PutFrame(layer)
	}

	if e.cfg.Preview.ShareURL != "" {
		if err := overlayShareCode(frame, e.cfg.Preview.ShareURL); err != nil {
			system.PutFrame(frame)
			return nil, err
		}
	}

	return frame, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
