package scroll

import "sync"

// State is the sampled scroll position, normalized to [0,1]. It is the single
// value every downstream consumer sees for a given tick.
type State struct {
	Progress  float64
	IsLooping bool
}

// Viewport is the narrow host surface for scroll position. The sampler only
// reads it; the loop guard also writes it during a corrective reset.
type Viewport interface {
	ScrollY() float64
	DocumentHeight() float64
	ViewportHeight() float64
	SetScrollY(y float64)
	SetScrollEnabled(enabled bool)
}

// Listener receives the sampled state once per tick.
type Listener interface {
	OnScroll(st State)
}

// Sampler converts raw scroll position into normalized progress and fans it
// out to listeners in subscription order, synchronously, within the tick.
type Sampler struct {
	mu        sync.Mutex
	view      Viewport
	listeners []Listener

	suspended bool
	looping   bool

	frozen    bool
	frozenDoc float64
	frozenVp  float64

	last State
}

func NewSampler(view Viewport) *Sampler {
	return &Sampler{view: view}
}

// Subscribe appends listeners. Dispatch order is subscription order; the
// compositor must be subscribed before the loop guard.
func (s *Sampler) Subscribe(listeners ...Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, listeners...)
	s.mu.Unlock()
}

// Sample reads the viewport and computes the current state without notifying
// anyone. Progress is 0 when the content fits the viewport.
func (s *Sampler) Sample() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleLocked()
}

func (s *Sampler) sampleLocked() State {
	doc := s.view.DocumentHeight()
	vp := s.view.ViewportHeight()
	if s.frozen {
		doc, vp = s.frozenDoc, s.frozenVp
	}

	progress := 0.0
	if span := doc - vp; span > 0 {
		progress = s.view.ScrollY() / span
		if progress < 0 {
			progress = 0
		} else if progress > 1 {
			progress = 1
		}
	}

	st := State{Progress: progress, IsLooping: s.looping}
	s.last = st
	return st
}

// Tick samples and dispatches. While the loop guard has the sampler
// suspended, the state is still recomputed but listeners are not notified,
// so the corrective scroll cannot feed back into detection.
func (s *Sampler) Tick() State {
	s.mu.Lock()
	st := s.sampleLocked()
	if s.suspended {
		s.mu.Unlock()
		return st
	}
	listeners := s.listeners
	s.mu.Unlock()

	// Dispatch outside the lock: listeners (the loop guard in particular)
	// call back into the sampler.
	for _, l := range listeners {
		l.OnScroll(st)
	}
	return st
}

// Last returns the most recently sampled state.
func (s *Sampler) Last() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Suspend stops listener dispatch while a corrective reset is in flight.
func (s *Sampler) Suspend(on bool) {
	s.mu.Lock()
	s.suspended = on
	s.mu.Unlock()
}

// SetLooping marks subsequently sampled states as part of a loop reset.
func (s *Sampler) SetLooping(on bool) {
	s.mu.Lock()
	s.looping = on
	s.mu.Unlock()
}

// Freeze pins document geometry to its current values. Used while a
// transition sequence is active so a reflow cannot move the breakpoints
// under it; Unfreeze re-reads live geometry on the next sample.
func (s *Sampler) Freeze() {
	s.mu.Lock()
	s.frozenDoc = s.view.DocumentHeight()
	s.frozenVp = s.view.ViewportHeight()
	s.frozen = true
	s.mu.Unlock()
}

func (s *Sampler) Unfreeze() {
	s.mu.Lock()
	s.frozen = false
	s.mu.Unlock()
}
