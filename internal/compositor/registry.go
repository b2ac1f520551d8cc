package compositor

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tuuundra/oddysseia-sub000/internal/config"
	"github.com/tuuundra/oddysseia-sub000/internal/scroll"
)

// Registry maps progress to per-scene opacity through the configured
// breakpoint pairs. It is a pure function of the sampled value except for
// two inputs owned by the sequencer: the override map (active transition)
// and the committed baseline (completed transitions).
type Registry struct {
	mu     sync.Mutex
	scenes map[string]Scene
	order  []string

	pairs []config.PairConfig
	base  map[string]float64

	committed map[string]float64

	override   map[string]float64
	overriding bool

	lastProgress float64
}

// NewRegistry validates the pair configuration once and fails fast on
// overlapping or inverted ranges.
func NewRegistry(pairs []config.PairConfig, base map[string]float64) (*Registry, error) {
	ids := make(map[string]bool, len(base))
	for id := range base {
		ids[id] = true
	}
	if err := validatePairRanges(pairs, ids); err != nil {
		return nil, err
	}

	baseCopy := make(map[string]float64, len(base))
	for id, v := range base {
		baseCopy[id] = v
	}

	// Pairs apply in progress order regardless of how the manifest lists
	// them; ranges cannot overlap, so sorting by start is a total order.
	sorted := make([]config.PairConfig, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	return &Registry{
		scenes:    make(map[string]Scene),
		pairs:     sorted,
		base:      baseCopy,
		committed: make(map[string]float64),
	}, nil
}

func validatePairRanges(pairs []config.PairConfig, ids map[string]bool) error {
	for i, p := range pairs {
		if !ids[p.SceneA] || !ids[p.SceneB] {
			return fmt.Errorf("breakpoint %d references undeclared scene", i)
		}
		if p.Start > p.End || p.Start < 0 || p.End > 1 {
			return fmt.Errorf("breakpoint %d: range [%.3f, %.3f] invalid", i, p.Start, p.End)
		}
		for j := 0; j < i; j++ {
			q := pairs[j]
			if p.Start < q.End && q.Start < p.End {
				return fmt.Errorf("breakpoints %d and %d overlap", j, i)
			}
		}
	}
	return nil
}

// Add registers a scene implementation under its id.
func (r *Registry) Add(scene Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := scene.ID()
	if _, dup := r.scenes[id]; dup {
		return fmt.Errorf("scene %q already registered", id)
	}
	r.scenes[id] = scene
	r.order = append(r.order, id)
	return nil
}

// Scenes returns scene ids in registration order.
func (r *Registry) Scenes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Scene looks up a registered scene.
func (r *Registry) Scene(id string) (Scene, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scenes[id]
	return s, ok
}

// OnScroll implements scroll.Listener: the registry records the tick's
// progress so Opacities reflects the same immutable state the loop guard
// evaluates afterwards.
func (r *Registry) OnScroll(st scroll.State) {
	r.mu.Lock()
	r.lastProgress = st.Progress
	r.mu.Unlock()
}

// Opacities computes the opacity map for a progress value.
//
// Pairs whose range the progress has reached apply in start order:
// t = clamp((p-start)/(end-start), 0, 1), opacity(A) = 1-t, opacity(B) = t;
// a zero-width range is a step at start. Pairs not yet reached leave the
// authored baseline alone. Scenes owned by an active transition come from
// the override map verbatim; scenes committed by a completed transition are
// pinned to their committed value.
func (r *Registry) Opacities(progress float64) map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]float64, len(r.base))
	for id, v := range r.base {
		out[id] = v
	}

	for _, p := range r.pairs {
		// A pair whose range has not been reached leaves the baseline (or an
		// earlier pair's result) untouched; pairs are sorted by start.
		if progress < p.Start {
			break
		}
		t := rampAt(progress, p.Start, p.End)
		out[p.SceneA] = 1 - t
		out[p.SceneB] = t
	}

	for id, v := range r.committed {
		out[id] = v
	}

	if r.overriding {
		for id, v := range r.override {
			out[id] = v
		}
	}

	return out
}

// Current is Opacities at the last sampled progress.
func (r *Registry) Current() map[string]float64 {
	r.mu.Lock()
	p := r.lastProgress
	r.mu.Unlock()
	return r.Opacities(p)
}

func rampAt(p, start, end float64) float64 {
	if start == end {
		if p >= start {
			return 1
		}
		return 0
	}
	t := (p - start) / (end - start)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// SetOverride hands opacity ownership of the listed scenes to the caller
// (the transition sequencer) until ClearOverride.
func (r *Registry) SetOverride(op map[string]float64) {
	r.mu.Lock()
	r.override = op
	r.overriding = true
	r.mu.Unlock()
}

// ClearOverride returns opacity control to the breakpoint logic.
func (r *Registry) ClearOverride() {
	r.mu.Lock()
	r.override = nil
	r.overriding = false
	r.mu.Unlock()
}

// CommitBaseline pins the post-transition assignment: the outgoing scene is
// hidden, the destination fully visible. A commit that exactly mirrors an
// earlier one unpins both scenes instead, so a completed forward plus
// completed reverse sequence restores the pre-transition assignment exactly.
func (r *Registry) CommitBaseline(outgoing, destination string) {
	r.mu.Lock()
	vOut, okOut := r.committed[outgoing]
	vDst, okDst := r.committed[destination]
	if okOut && okDst && vOut == 1 && vDst == 0 {
		delete(r.committed, outgoing)
		delete(r.committed, destination)
	} else {
		r.committed[outgoing] = 0
		r.committed[destination] = 1
	}
	r.mu.Unlock()
}
