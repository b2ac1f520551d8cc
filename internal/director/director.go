// Package director is the scroll-to-scene orchestration controller. It owns
// the sampler, the crossfade compositor, the loop guard and the transition
// sequencer, and enforces the per-tick ordering between them.
package director

import (
	"fmt"
	"log"
	"time"

	"github.com/tuuundra/oddysseia-sub000/internal/compositor"
	"github.com/tuuundra/oddysseia-sub000/internal/config"
	"github.com/tuuundra/oddysseia-sub000/internal/scroll"
	"github.com/tuuundra/oddysseia-sub000/internal/sequencer"
)

// Controller wires the components and is the host's single entry point:
// scroll events go into HandleScroll, hotspot clicks into Trigger, media
// events into OnTimeUpdate/OnEnded, and the rendering layer pulls Opacities
// every frame.
//
// All controller state is ephemeral; a fresh Controller always starts Idle
// at progress 0.
type Controller struct {
	cfg      *config.Config
	view     scroll.Viewport
	sampler  *scroll.Sampler
	guard    *scroll.LoopGuard
	registry *compositor.Registry
	seq      *sequencer.Sequencer

	// Verbose logs every sequence state change.
	Verbose bool
}

func New(cfg *config.Config, view scroll.Viewport, media sequencer.Media) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry, err := compositor.NewRegistry(cfg.Breakpoints, cfg.BaseVisibility())
	if err != nil {
		return nil, err
	}

	seq, err := sequencer.New(cfg.Transition, media)
	if err != nil {
		return nil, err
	}

	sampler := scroll.NewSampler(view)
	guard := scroll.NewLoopGuard(cfg.Loop, view, sampler)

	c := &Controller{
		cfg:      cfg,
		view:     view,
		sampler:  sampler,
		guard:    guard,
		registry: registry,
		seq:      seq,
	}

	// The compositor must see each tick's state before the loop guard acts
	// on it; both receive the same immutable value.
	sampler.Subscribe(registry, guard)

	seq.SetCallbacks(c.commit, c.sequenceIdle, c.sequenceTransition)

	return c, nil
}

// AddScene registers a scene implementation with the compositor.
func (c *Controller) AddScene(s compositor.Scene) error {
	if _, declared := c.cfg.Scene(s.ID()); !declared {
		return fmt.Errorf("scene %q not declared in manifest", s.ID())
	}
	return c.registry.Add(s)
}

// Registry exposes the compositor for the rendering layer.
func (c *Controller) Registry() *compositor.Registry {
	return c.registry
}

// HandleScroll is the host's scroll notification. Sampling and dispatch are
// fully synchronous within the call.
func (c *Controller) HandleScroll() scroll.State {
	return c.sampler.Tick()
}

// Trigger arms a transition sequence from a hotspot click. While a sequence
// is in flight further triggers are rejected with
// sequencer.ErrSequenceActive; callers may log and otherwise ignore it.
func (c *Controller) Trigger(d sequencer.Direction) error {
	if err := c.seq.Trigger(d); err != nil {
		return err
	}
	// Freeze sampled geometry so a reflow cannot move the breakpoints under
	// an active sequence.
	c.sampler.Freeze()
	return nil
}

// OnTimeUpdate forwards the host media time-position event.
func (c *Controller) OnTimeUpdate(pos time.Duration) {
	c.seq.OnTimeUpdate(pos)
}

// OnEnded forwards the host media ended event.
func (c *Controller) OnEnded() {
	c.seq.OnEnded()
}

// SequenceStatus reports the transition state machine's phase.
func (c *Controller) SequenceStatus() sequencer.Status {
	return c.seq.Status()
}

// Looping reports whether a loop reset is in flight.
func (c *Controller) Looping() bool {
	return c.guard.Resetting()
}

// State returns the last sampled scroll state.
func (c *Controller) State() scroll.State {
	return c.sampler.Last()
}

// Opacities is the per-frame output consumed by the rendering layer. During
// an active sequence the transitioning scenes carry the sequencer's envelope
// instead of the breakpoint crossfade.
func (c *Controller) Opacities() map[string]float64 {
	if overlay, active := c.seq.Overlay(time.Now()); active {
		c.registry.SetOverride(overlay)
	}
	return c.registry.Current()
}

func (c *Controller) commit(d sequencer.Direction) {
	outgoing, destination := c.cfg.Transition.From, c.cfg.Transition.To
	if d == sequencer.Reverse {
		outgoing, destination = destination, outgoing
	}
	c.registry.CommitBaseline(outgoing, destination)
}

func (c *Controller) sequenceIdle() {
	c.registry.ClearOverride()
	c.sampler.Unfreeze()
}

func (c *Controller) sequenceTransition(seqID string, st sequencer.Status, d sequencer.Direction) {
	if c.Verbose {
		log.Printf("[*] sequence %s: %s (%s)", seqID, st, d)
	}
}

// Close cancels pending timers on all components. In-flight sequences are
// discarded without compensation.
func (c *Controller) Close() {
	c.seq.Close()
	c.guard.Close()
}
