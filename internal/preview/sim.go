// Package preview runs the controller headlessly and exports its timeline
// as rendered frames: a scripted scroll sweep, a forward and a reverse
// transition, and whatever the loop guard does along the way.
package preview

import (
	"sync"
	"time"
)

// SimViewport is the headless scroll host. It behaves like a document: the
// scroll position is clamped to the scrollable span, and user scrolling is
// ignored while the loop guard has scrolling disabled.
type SimViewport struct {
	mu      sync.Mutex
	scrollY float64
	docH    float64
	vpH     float64
	enabled bool
}

func NewSimViewport(documentHeight, viewportHeight float64) *SimViewport {
	return &SimViewport{docH: documentHeight, vpH: viewportHeight, enabled: true}
}

func (v *SimViewport) ScrollY() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollY
}

func (v *SimViewport) DocumentHeight() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.docH
}

func (v *SimViewport) ViewportHeight() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vpH
}

// SetScrollY is the programmatic write used by the loop guard; it is always
// honored, enabled or not.
func (v *SimViewport) SetScrollY(y float64) {
	v.mu.Lock()
	v.scrollY = v.clampLocked(y)
	v.mu.Unlock()
}

func (v *SimViewport) SetScrollEnabled(enabled bool) {
	v.mu.Lock()
	v.enabled = enabled
	v.mu.Unlock()
}

// UserScroll models the user scrolling the page: a no-op while page
// scrolling is disabled.
func (v *SimViewport) UserScroll(y float64) {
	v.mu.Lock()
	if v.enabled {
		v.scrollY = v.clampLocked(y)
	}
	v.mu.Unlock()
}

func (v *SimViewport) clampLocked(y float64) float64 {
	span := v.docH - v.vpH
	if span < 0 {
		span = 0
	}
	if y < 0 {
		return 0
	}
	if y > span {
		return span
	}
	return y
}

// SimMedia is the headless video asset. Advance moves the playhead by wall
// time multiplied by the playback rate and fires the same events a real
// media element would: a time update per advance, ended at either boundary.
type SimMedia struct {
	mu       sync.Mutex
	pos      time.Duration
	duration time.Duration
	rate     float64
	playing  bool

	// RejectPlay simulates a host autoplay policy refusing playback.
	RejectPlay error

	onTimeUpdate func(pos time.Duration)
	onEnded      func()
}

func NewSimMedia(duration time.Duration) *SimMedia {
	return &SimMedia{duration: duration, rate: 1.0}
}

// SetEventHandlers wires the media events into the controller.
func (m *SimMedia) SetEventHandlers(onTimeUpdate func(time.Duration), onEnded func()) {
	m.mu.Lock()
	m.onTimeUpdate = onTimeUpdate
	m.onEnded = onEnded
	m.mu.Unlock()
}

func (m *SimMedia) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *SimMedia) Seek(pos time.Duration) {
	m.mu.Lock()
	m.pos = pos
	m.mu.Unlock()
}

func (m *SimMedia) SetRate(rate float64) {
	m.mu.Lock()
	m.rate = rate
	m.mu.Unlock()
}

func (m *SimMedia) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

func (m *SimMedia) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RejectPlay != nil {
		return m.RejectPlay
	}
	m.playing = true
	return nil
}

func (m *SimMedia) Pause() {
	m.mu.Lock()
	m.playing = false
	m.mu.Unlock()
}

// Advance steps the playhead. Event callbacks fire outside the lock.
func (m *SimMedia) Advance(dt time.Duration) {
	m.mu.Lock()
	if !m.playing {
		m.mu.Unlock()
		return
	}

	m.pos += time.Duration(float64(dt) * m.rate)

	ended := false
	if m.rate >= 0 && m.pos >= m.duration {
		m.pos = m.duration
		m.playing = false
		ended = true
	} else if m.rate < 0 && m.pos <= 0 {
		m.pos = 0
		m.playing = false
		ended = true
	}

	pos := m.pos
	onTime, onEnded := m.onTimeUpdate, m.onEnded
	m.mu.Unlock()

	if onTime != nil {
		onTime(pos)
	}
	if ended && onEnded != nil {
		onEnded()
	}
}
