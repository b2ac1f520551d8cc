package preview

import (
	"errors"
	"testing"
	"time"
)

func TestSimViewportClampAndDisable(t *testing.T) {
	v := NewSimViewport(6000, 900)

	v.UserScroll(10000)
	if v.ScrollY() != 5100 {
		t.Errorf("ScrollY = %f, want clamped to 5100", v.ScrollY())
	}

	v.UserScroll(-50)
	if v.ScrollY() != 0 {
		t.Errorf("ScrollY = %f, want 0", v.ScrollY())
	}

	// User input goes dead while disabled; programmatic writes still land.
	v.SetScrollEnabled(false)
	v.UserScroll(2000)
	if v.ScrollY() != 0 {
		t.Errorf("disabled UserScroll moved to %f", v.ScrollY())
	}
	v.SetScrollY(300)
	if v.ScrollY() != 300 {
		t.Errorf("SetScrollY = %f, want 300", v.ScrollY())
	}

	v.SetScrollEnabled(true)
	v.UserScroll(2000)
	if v.ScrollY() != 2000 {
		t.Errorf("re-enabled UserScroll = %f, want 2000", v.ScrollY())
	}
}

func TestSimMediaAdvanceFiresEvents(t *testing.T) {
	m := NewSimMedia(100 * time.Millisecond)

	var updates []time.Duration
	ended := 0
	m.SetEventHandlers(
		func(pos time.Duration) { updates = append(updates, pos) },
		func() { ended++ },
	)

	// Paused media does not move.
	m.Advance(50 * time.Millisecond)
	if len(updates) != 0 {
		t.Fatalf("paused media fired %d updates", len(updates))
	}

	m.SetRate(2.0)
	if err := m.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	m.Advance(30 * time.Millisecond)
	if len(updates) != 1 || updates[0] != 60*time.Millisecond {
		t.Fatalf("updates = %v, want [60ms]", updates)
	}
	if ended != 0 {
		t.Fatal("ended fired early")
	}

	// Crossing the duration clamps and fires ended once.
	m.Advance(30 * time.Millisecond)
	if ended != 1 {
		t.Fatalf("ended = %d, want 1", ended)
	}
	if got := updates[len(updates)-1]; got != 100*time.Millisecond {
		t.Errorf("final position = %v, want clamped to duration", got)
	}

	// Media stopped at the boundary.
	m.Advance(30 * time.Millisecond)
	if ended != 1 {
		t.Errorf("ended fired again after stop")
	}
}

func TestSimMediaReversePlayback(t *testing.T) {
	m := NewSimMedia(100 * time.Millisecond)
	ended := 0
	m.SetEventHandlers(nil, func() { ended++ })

	m.Seek(100 * time.Millisecond)
	m.SetRate(-2.0)
	if err := m.Play(); err != nil {
		t.Fatal(err)
	}

	m.Advance(40 * time.Millisecond)
	if ended != 0 {
		t.Fatal("ended fired before reaching the start")
	}
	m.Advance(40 * time.Millisecond)
	if ended != 1 {
		t.Fatalf("ended = %d, want 1 at position 0", ended)
	}
}

func TestSimMediaRejectPlay(t *testing.T) {
	m := NewSimMedia(100 * time.Millisecond)
	m.RejectPlay = errors.New("autoplay blocked")

	if err := m.Play(); err == nil {
		t.Fatal("Expected Play to be rejected")
	}
	m.Advance(10 * time.Millisecond)
	// Never started, never moved.
	if m.pos != 0 {
		t.Errorf("pos = %v, want 0", m.pos)
	}
}
