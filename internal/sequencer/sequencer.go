package sequencer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tuuundra/oddysseia-sub000/internal/config"
)

// Status is the phase of a transition sequence.
type Status int

const (
	StatusIdle Status = iota
	StatusArmed
	StatusMediaCueing
	StatusPlaying
	StatusCompleting
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusArmed:
		return "Armed"
	case StatusMediaCueing:
		return "MediaCueing"
	case StatusPlaying:
		return "Playing"
	case StatusCompleting:
		return "Completing"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Direction of a sequence. Reverse is the exact mirror of Forward: opposite
// playback-rate sign, opposite committed destination.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "Reverse"
	}
	return "Forward"
}

// Media is the shared video asset handle. While a sequence is not Idle the
// sequencer owns it exclusively; no other component may seek it or change
// its rate during that window.
type Media interface {
	Duration() time.Duration
	Seek(pos time.Duration)
	SetRate(rate float64)
	Rate() float64
	Play() error
	Pause()
}

// ErrSequenceActive is returned by Trigger while a sequence is in flight.
// At most one sequence exists at any time.
var ErrSequenceActive = errors.New("transition sequence already active")

// Sequencer runs the bidirectional, media-synchronized scene swap:
//
//	Idle -> Armed(d) -> MediaCueing(d) -> Playing(d) -> Completing(d) -> Idle
//
// Host media events are delivered through OnTimeUpdate / OnEnded; fixed
// delays (pre-roll, settle) are the only timers.
type Sequencer struct {
	mu    sync.Mutex
	cfg   config.TransitionConfig
	media Media

	status Status
	dir    Direction
	seqID  string

	armedAt      time.Time
	completingAt time.Time

	after    func(d time.Duration, fn func()) *time.Timer
	preRoll  *time.Timer
	settle   *time.Timer
	watchdog *time.Timer

	// onCommit fires once per sequence, when the destination scene becomes
	// the new baseline. onIdle fires when opacity control returns to the
	// compositor. onTransition observes every state change.
	onCommit     func(d Direction)
	onIdle       func()
	onTransition func(seqID string, st Status, d Direction)
}

func New(cfg config.TransitionConfig, media Media) (*Sequencer, error) {
	if media == nil {
		return nil, fmt.Errorf("sequencer: nil media handle")
	}
	if cfg.Rate <= 0 {
		return nil, fmt.Errorf("sequencer: rate %.3f must be positive", cfg.Rate)
	}
	return &Sequencer{
		cfg:   cfg,
		media: media,
		after: time.AfterFunc,
	}, nil
}

// SetCallbacks wires completion hooks. Must be called before the first
// Trigger; any hook may be nil.
func (s *Sequencer) SetCallbacks(onCommit func(Direction), onIdle func(), onTransition func(string, Status, Direction)) {
	s.mu.Lock()
	s.onCommit = onCommit
	s.onIdle = onIdle
	s.onTransition = onTransition
	s.mu.Unlock()
}

// Status returns the current phase.
func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Direction returns the direction of the current or last sequence.
func (s *Sequencer) Direction() Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// SequenceID identifies the current sequence in logs; empty while Idle.
func (s *Sequencer) SequenceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusIdle {
		return ""
	}
	return s.seqID
}

// Trigger starts a sequence. Only accepted from Idle: concurrent or repeated
// triggers while a sequence is in flight return ErrSequenceActive and leave
// all state untouched.
func (s *Sequencer) Trigger(d Direction) error {
	s.mu.Lock()
	if s.status != StatusIdle {
		s.mu.Unlock()
		return ErrSequenceActive
	}

	s.dir = d
	s.seqID = uuid.NewString()
	s.armedAt = time.Now()
	s.setStatusLocked(StatusArmed)

	// During the pre-roll the outgoing scene already fades out; see Overlay.
	s.preRoll = s.after(s.cfg.PreRoll(), s.cue)
	s.mu.Unlock()
	return nil
}

// cue seeks the media to its start (Forward) or end (Reverse), applies the
// signed rate and starts playback. A rejected playback start is the defined
// degraded path: the swap still happens, just without the video flourish.
func (s *Sequencer) cue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusArmed {
		return
	}
	s.setStatusLocked(StatusMediaCueing)

	if s.dir == Forward {
		s.media.Seek(0)
	} else {
		s.media.Seek(s.media.Duration())
	}
	s.media.SetRate(s.signedRate())

	if err := s.media.Play(); err != nil {
		s.completeLocked()
		return
	}

	s.setStatusLocked(StatusPlaying)
	if maxPlay := s.cfg.MaxPlay(); maxPlay > 0 {
		s.watchdog = s.after(maxPlay, s.forceComplete)
	}
}

// OnTimeUpdate is the host's time-position callback. The host media pipeline
// may silently reset the playback rate mid-play, so the configured rate is
// re-asserted on every update; when it is already correct this is a no-op.
func (s *Sequencer) OnTimeUpdate(pos time.Duration) {
	s.mu.Lock()
	if s.status == StatusPlaying {
		s.enforceRateLocked()
	}
	s.mu.Unlock()
}

func (s *Sequencer) enforceRateLocked() {
	if want := s.signedRate(); s.media.Rate() != want {
		s.media.SetRate(want)
	}
}

func (s *Sequencer) signedRate() float64 {
	if s.dir == Reverse {
		return -s.cfg.Rate
	}
	return s.cfg.Rate
}

// OnEnded is the host's media-ended callback.
func (s *Sequencer) OnEnded() {
	s.mu.Lock()
	if s.status == StatusPlaying {
		s.completeLocked()
	}
	s.mu.Unlock()
}

// forceComplete is the optional stall watchdog path (max_play_ms). Disabled
// by default: without it a sequence whose ended signal never arrives stays
// in Playing, matching the baseline behavior.
func (s *Sequencer) forceComplete() {
	s.mu.Lock()
	if s.status == StatusPlaying {
		s.media.Pause()
		s.completeLocked()
	}
	s.mu.Unlock()
}

func (s *Sequencer) completeLocked() {
	if s.watchdog != nil {
		s.watchdog.Stop()
		s.watchdog = nil
	}

	s.completingAt = time.Now()
	s.setStatusLocked(StatusCompleting)

	if s.onCommit != nil {
		s.onCommit(s.dir)
	}

	s.settle = s.after(s.cfg.Settle(), s.finish)
}

func (s *Sequencer) finish() {
	s.mu.Lock()
	if s.status != StatusCompleting {
		s.mu.Unlock()
		return
	}
	s.setStatusLocked(StatusIdle)
	onIdle := s.onIdle
	s.mu.Unlock()

	if onIdle != nil {
		onIdle()
	}
}

func (s *Sequencer) setStatusLocked(st Status) {
	s.status = st
	if s.onTransition != nil {
		s.onTransition(s.seqID, st, s.dir)
	}
}

// Close cancels pending timers so they cannot fire against destroyed state.
// An in-flight sequence is simply discarded, never compensated.
func (s *Sequencer) Close() {
	s.mu.Lock()
	for _, t := range []*time.Timer{s.preRoll, s.settle, s.watchdog} {
		if t != nil {
			t.Stop()
		}
	}
	s.preRoll, s.settle, s.watchdog = nil, nil, nil
	s.mu.Unlock()
}
