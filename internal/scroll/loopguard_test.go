package scroll

import (
	"testing"
	"time"

	"github.com/tuuundra/oddysseia-sub000/internal/config"
)

func loopConfig() config.LoopConfig {
	return config.LoopConfig{
		Start:     0.05,
		End:       0.70,
		Epsilon:   0.005,
		Anchor:    0.06,
		SettleMs:  150,
		TimeoutMs: 1500,
	}
}

// timerLog captures scheduled callbacks so the test drives settle and timeout
// delays by hand.
type timerLog struct {
	fns []func()
}

func (tl *timerLog) after(d time.Duration, fn func()) *time.Timer {
	tl.fns = append(tl.fns, fn)
	return time.NewTimer(time.Hour)
}

func (tl *timerLog) fire(i int) {
	tl.fns[i]()
}

func newTestGuard(view *fakeView, cfg config.LoopConfig) (*LoopGuard, *Sampler, *timerLog) {
	sampler := NewSampler(view)
	guard := NewLoopGuard(cfg, view, sampler)
	tl := &timerLog{}
	guard.after = tl.after
	sampler.Subscribe(guard)
	return guard, sampler, tl
}

func TestLoopResetOnCrossing(t *testing.T) {
	view := newFakeView()
	guard, sampler, tl := newTestGuard(view, loopConfig())

	// Scroll just under the threshold: nothing happens.
	view.scrollY = 0.70 * (view.docH - view.vpH)
	sampler.Tick()
	if guard.Resetting() {
		t.Fatal("reset triggered below threshold")
	}
	if view.setCalls != 0 {
		t.Fatalf("unexpected programmatic scroll: %d calls", view.setCalls)
	}

	// Cross it.
	view.scrollY = 0.72 * (view.docH - view.vpH)
	st := sampler.Tick()
	if st.IsLooping {
		t.Error("crossing tick already flagged as looping")
	}

	if !guard.Resetting() {
		t.Fatal("reset not triggered")
	}
	if view.enabled {
		t.Error("scrolling still enabled during reset")
	}
	if view.setCalls != 1 {
		t.Fatalf("expected exactly 1 programmatic scroll, got %d", view.setCalls)
	}
	wantY := 0.06 * (view.docH - view.vpH)
	if view.scrollY != wantY {
		t.Errorf("anchor scroll = %f, want %f", view.scrollY, wantY)
	}

	// Ticks during the reset are sampled but flagged and not dispatched.
	st = sampler.Tick()
	if !st.IsLooping {
		t.Error("in-reset tick not flagged as looping")
	}
	if view.setCalls != 1 {
		t.Errorf("reset re-entered: %d programmatic scrolls", view.setCalls)
	}

	// Settle check: the viewport is at the anchor, so the guard releases.
	tl.fire(0)

	if guard.Resetting() {
		t.Fatal("guard still resetting after settle")
	}
	if !view.enabled {
		t.Error("scrolling not re-enabled")
	}
	if sampler.Sample().IsLooping {
		t.Error("looping flag stuck after release")
	}
}

func TestLoopResetRetriesUntilSettled(t *testing.T) {
	view := newFakeView()
	view.ignoreWrites = true
	guard, sampler, tl := newTestGuard(view, loopConfig())

	view.scrollY = 0.72 * (view.docH - view.vpH)
	sampler.Tick()
	if !guard.Resetting() {
		t.Fatal("reset not triggered")
	}

	// The scroll write had no effect, so the settle check reschedules
	// instead of releasing.
	tl.fire(0)
	if !guard.Resetting() {
		t.Fatal("guard released without settling")
	}
	if len(tl.fns) != 3 {
		t.Fatalf("expected a rescheduled settle check, have %d timers", len(tl.fns))
	}
}

func TestLoopResetFailureTimeout(t *testing.T) {
	view := newFakeView()
	view.ignoreWrites = true
	guard, sampler, tl := newTestGuard(view, loopConfig())

	view.scrollY = 0.72 * (view.docH - view.vpH)
	sampler.Tick()

	// Failure timer fires: the page must come back regardless.
	tl.fire(1)

	if guard.Resetting() {
		t.Fatal("guard stuck after failure timeout")
	}
	if !view.enabled {
		t.Error("scrolling not re-enabled after failure timeout")
	}
}

func TestLoopGuardDisabled(t *testing.T) {
	view := newFakeView()
	guard, sampler, _ := newTestGuard(view, config.LoopConfig{})

	view.scrollY = view.docH - view.vpH
	sampler.Tick()

	if guard.Resetting() {
		t.Error("disabled guard triggered a reset")
	}
	if view.setCalls != 0 {
		t.Errorf("disabled guard scrolled: %d calls", view.setCalls)
	}
}

func TestEpsilonHysteresis(t *testing.T) {
	view := newFakeView()
	guard, sampler, _ := newTestGuard(view, loopConfig())

	// Past the end but inside the epsilon band: no reset.
	view.scrollY = 0.703 * (view.docH - view.vpH)
	sampler.Tick()
	if guard.Resetting() {
		t.Error("reset triggered inside the epsilon band")
	}
}
