package sequencer

import (
	"math"
	"time"
)

// Overlay returns the opacities the sequencer wants for the two transition
// scenes while it owns them, keyed by scene id, and whether a sequence is
// active at all. The compositor passes these through verbatim instead of its
// breakpoint logic.
//
// Envelope: the outgoing scene eases out over the pre-roll, both scenes stay
// dark while the video plays, and the destination eases in over the settle
// delay.
func (s *Sequencer) Overlay(now time.Time) (map[string]float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusIdle {
		return nil, false
	}

	outgoing, destination := s.cfg.From, s.cfg.To
	if s.dir == Reverse {
		outgoing, destination = destination, outgoing
	}

	op := map[string]float64{outgoing: 0, destination: 0}

	switch s.status {
	case StatusArmed:
		t := phase(now.Sub(s.armedAt), s.cfg.PreRoll())
		op[outgoing] = 1 - easeInOutCubic(t)
	case StatusCompleting:
		t := phase(now.Sub(s.completingAt), s.cfg.Settle())
		op[destination] = easeInOutCubic(t)
	}

	return op, true
}

func phase(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	t := float64(elapsed) / float64(total)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
