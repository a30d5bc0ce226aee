// Package animation drives the progressive reveal of a timeline: each entry
// grows in a fixed number of steps, with a fixed pause between entries.
//
// The Scheduler is a cooperative state machine. It never blocks; all work is
// expressed as callbacks handed to a Timers implementation, and every handle
// it obtains is tracked so Stop can cancel all of them.
package animation

import (
	"log/slog"
	"time"
)

// State is the lifecycle state of an animation.
type State int

const (
	// Idle means nothing is revealed and nothing is scheduled.
	Idle State = iota
	// Playing means a growth step or inter-entry delay is scheduled.
	Playing
	// Paused holds the current entry and fraction with nothing scheduled.
	Paused
	// Finished means every entry has been revealed.
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Options controls animation pacing.
type Options struct {
	// Steps is the number of growth steps per entry.
	Steps int
	// EntryDuration is how long one entry takes to grow to full width.
	EntryDuration time.Duration
	// EntryDelay is the pause after an entry completes, before the next starts.
	EntryDelay time.Duration
}

// DefaultOptions returns 20 steps over 500ms per entry and a 500ms gap.
func DefaultOptions() Options {
	return Options{
		Steps:         20,
		EntryDuration: 500 * time.Millisecond,
		EntryDelay:    500 * time.Millisecond,
	}
}

// StepInterval returns the time between growth steps.
func (o Options) StepInterval() time.Duration {
	if o.Steps < 1 {
		return o.EntryDuration
	}
	return o.EntryDuration / time.Duration(o.Steps)
}

func (o Options) normalized() Options {
	if o.Steps < 1 {
		o.Steps = 1
	}
	if o.EntryDuration < 0 {
		o.EntryDuration = 0
	}
	if o.EntryDelay < 0 {
		o.EntryDelay = 0
	}
	return o
}

// Frame is a snapshot of animation progress.
type Frame struct {
	State State
	// Index is the number of entries fully revealed; Index == total only
	// when State is Finished.
	Index int
	// Step is the number of growth steps taken for entry Index.
	Step int
	// Fraction is Step / Steps, the reveal fraction of entry Index.
	Fraction float64
}

// Scheduler reveals total entries over time. It is not safe for concurrent
// use; every method and every timer callback must run on one event loop.
type Scheduler struct {
	timers  Timers
	opts    Options
	total   int
	onFrame func(Frame)

	state   State
	index   int
	step    int
	cycles  int
	closed  bool
	pending map[Handle]struct{}
}

// New returns an Idle scheduler for total entries. onFrame, if non-nil, is
// called after every change to the frame.
//
// timers.After must not invoke its callback before returning.
func New(timers Timers, total int, opts Options, onFrame func(Frame)) *Scheduler {
	if total < 0 {
		total = 0
	}
	return &Scheduler{
		timers:  timers,
		opts:    opts.normalized(),
		total:   total,
		onFrame: onFrame,
		pending: make(map[Handle]struct{}),
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return s.state
}

// Options returns the pacing options in effect.
func (s *Scheduler) Options() Options {
	return s.opts
}

// Frame returns the current progress snapshot.
func (s *Scheduler) Frame() Frame {
	return Frame{
		State:    s.state,
		Index:    s.index,
		Step:     s.step,
		Fraction: float64(s.step) / float64(s.opts.Steps),
	}
}

// Pending returns the number of outstanding timer handles.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// Cycles returns how many times the animation has reached Finished.
func (s *Scheduler) Cycles() int {
	return s.cycles
}

// Start begins a reveal from entry zero. It is valid from Idle and Finished
// and returns false otherwise.
func (s *Scheduler) Start() bool {
	if s.closed {
		return false
	}
	if s.state == Playing || s.state == Paused {
		return false
	}

	s.cancelAll()
	s.index = 0
	s.step = 0

	if s.total == 0 {
		s.finish()
		return true
	}

	s.state = Playing
	slog.Debug("animation started", "entries", s.total, "steps", s.opts.Steps)
	s.emit()
	s.schedule(0, s.grow)
	return true
}

// Toggle pauses a playing animation or resumes a paused one from the stored
// fraction. From Finished it starts a new cycle; from Idle it does nothing.
func (s *Scheduler) Toggle() {
	if s.closed {
		return
	}
	switch s.state {
	case Playing:
		s.cancelAll()
		s.state = Paused
		slog.Debug("animation paused", "index", s.index, "step", s.step)
		s.emit()
	case Paused:
		s.state = Playing
		slog.Debug("animation resumed", "index", s.index, "step", s.step)
		s.emit()
		switch {
		case s.step > 0:
			s.schedule(s.opts.StepInterval(), s.grow)
		case s.index > 0:
			// Paused between entries; the gap is served again in full.
			s.schedule(s.opts.EntryDelay, s.grow)
		default:
			s.schedule(0, s.grow)
		}
	case Finished:
		s.Start()
	}
}

// Skip force-completes the entry currently growing. A playing animation
// continues with the inter-entry delay; a paused one stays paused.
func (s *Scheduler) Skip() {
	if s.closed {
		return
	}
	switch s.state {
	case Playing:
		s.cancelAll()
		s.completeEntry()
	case Paused:
		s.completeEntry()
	}
}

// Stop cancels every outstanding callback and returns to Idle.
func (s *Scheduler) Stop() {
	if s.closed {
		return
	}
	s.cancelAll()
	s.state = Idle
	s.index = 0
	s.step = 0
	s.emit()
}

// Close stops the animation and detaches the frame callback. The scheduler
// is inert afterwards.
func (s *Scheduler) Close() {
	if s.closed {
		return
	}
	s.cancelAll()
	s.state = Idle
	s.index = 0
	s.step = 0
	s.onFrame = nil
	s.closed = true
}

func (s *Scheduler) grow() {
	s.step++
	if s.step >= s.opts.Steps {
		s.completeEntry()
		return
	}
	s.emit()
	s.schedule(s.opts.StepInterval(), s.grow)
}

func (s *Scheduler) completeEntry() {
	s.index++
	s.step = 0
	if s.index >= s.total {
		s.finish()
		return
	}
	s.emit()
	if s.state == Playing {
		s.schedule(s.opts.EntryDelay, s.grow)
	}
}

func (s *Scheduler) finish() {
	s.index = s.total
	s.step = 0
	s.state = Finished
	s.cycles++
	slog.Debug("animation finished", "entries", s.total, "cycles", s.cycles)
	s.emit()
}

func (s *Scheduler) schedule(d time.Duration, fn func()) {
	var h Handle
	h = s.timers.After(d, func() {
		delete(s.pending, h)
		fn()
	})
	s.pending[h] = struct{}{}
}

func (s *Scheduler) cancelAll() {
	for h := range s.pending {
		s.timers.Cancel(h)
		delete(s.pending, h)
	}
}

func (s *Scheduler) emit() {
	if s.onFrame != nil {
		s.onFrame(s.Frame())
	}
}
