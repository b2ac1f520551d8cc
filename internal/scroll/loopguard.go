package scroll

import (
	"sync"
	"time"

	"github.com/tuuundra/oddysseia-sub000/internal/config"
)

// LoopGuard watches progress for the authored loop point. Scenes are written
// as if progress wraps past loop end back to an earlier scene, but the
// underlying scroll coordinate is monotonic, so crossing the point needs a
// programmatic scroll reset. The guard is re-entrancy safe: the corrective
// scroll itself never re-triggers detection.
type LoopGuard struct {
	mu      sync.Mutex
	view    Viewport
	sampler *Sampler
	cfg     config.LoopConfig

	resetting bool

	after       func(d time.Duration, fn func()) *time.Timer
	settleTimer *time.Timer
	failTimer   *time.Timer
}

func NewLoopGuard(cfg config.LoopConfig, view Viewport, sampler *Sampler) *LoopGuard {
	return &LoopGuard{
		view:    view,
		sampler: sampler,
		cfg:     cfg,
		after:   time.AfterFunc,
	}
}

// OnScroll implements Listener. Crossings reported while a reset is in
// flight are ignored; the suspension flag on the sampler already blocks the
// normal path, this is the second line against hosts that call the guard
// directly.
func (g *LoopGuard) OnScroll(st State) {
	g.mu.Lock()
	if g.resetting || g.cfg.End <= 0 {
		g.mu.Unlock()
		return
	}
	if st.Progress <= g.cfg.End+g.cfg.Epsilon {
		g.mu.Unlock()
		return
	}
	g.beginResetLocked()
	g.mu.Unlock()
}

// Resetting reports whether a corrective reset is in flight.
func (g *LoopGuard) Resetting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resetting
}

func (g *LoopGuard) beginResetLocked() {
	g.resetting = true

	g.sampler.Suspend(true)
	g.sampler.SetLooping(true)
	g.view.SetScrollEnabled(false)
	g.view.SetScrollY(g.anchorY())

	g.settleTimer = g.after(g.cfg.Settle(), g.checkSettled)
	// Even if the corrective scroll had no effect (not enough scrollable
	// height, host ignored the write), the page must never stay frozen.
	g.failTimer = g.after(g.cfg.Timeout(), g.release)
}

// checkSettled verifies the viewport actually landed near the anchor before
// releasing. If it has not, the failure timer takes over.
func (g *LoopGuard) checkSettled() {
	g.mu.Lock()
	if !g.resetting {
		g.mu.Unlock()
		return
	}

	target := g.anchorY()
	got := g.view.ScrollY()
	span := g.view.DocumentHeight() - g.view.ViewportHeight()
	tolerance := 2.0
	if span > 0 {
		tolerance = span * 0.01
	}
	if got < target-tolerance || got > target+tolerance {
		// Not settled yet; retry until the failure timeout fires.
		g.settleTimer = g.after(g.cfg.Settle(), g.checkSettled)
		g.mu.Unlock()
		return
	}
	g.releaseLocked()
	g.mu.Unlock()
}

func (g *LoopGuard) release() {
	g.mu.Lock()
	if g.resetting {
		g.releaseLocked()
	}
	g.mu.Unlock()
}

func (g *LoopGuard) releaseLocked() {
	if g.settleTimer != nil {
		g.settleTimer.Stop()
		g.settleTimer = nil
	}
	if g.failTimer != nil {
		g.failTimer.Stop()
		g.failTimer = nil
	}

	g.view.SetScrollEnabled(true)
	g.sampler.SetLooping(false)
	g.sampler.Suspend(false)
	g.resetting = false
}

// anchorY converts the progress-space anchor into a scroll coordinate.
func (g *LoopGuard) anchorY() float64 {
	span := g.view.DocumentHeight() - g.view.ViewportHeight()
	if span <= 0 {
		return 0
	}
	return g.cfg.Anchor * span
}

// Close stops pending timers so they cannot fire against torn-down state.
func (g *LoopGuard) Close() {
	g.mu.Lock()
	if g.settleTimer != nil {
		g.settleTimer.Stop()
		g.settleTimer = nil
	}
	if g.failTimer != nil {
		g.failTimer.Stop()
		g.failTimer = nil
	}
	g.resetting = false
	g.mu.Unlock()
}
