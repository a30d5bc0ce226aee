package gantt

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rs/xid"

	"github.com/Dicklesworthstone/schedviz/internal/animation"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
)

// ErrNoTimers is returned by Open when an animated chart has no timer source.
var ErrNoTimers = errors.New("animated chart requires a timer source")

// Options configures chart layout and pacing.
type Options struct {
	MinWidth     float64
	MinUnitWidth float64
	Band         Band
	Palette      []string
	Animation    animation.Options
}

// DefaultOptions returns the standard chart layout.
func DefaultOptions() Options {
	return Options{
		MinWidth:     DefaultMinWidth,
		MinUnitWidth: DefaultMinUnitWidth,
		Band:         DefaultBand(),
		Palette:      DefaultPalette,
		Animation:    animation.DefaultOptions(),
	}
}

// Session is one open chart. It exclusively owns its legend, geometry,
// hit-test index and, when animated, its animation scheduler. A Session is
// not safe for concurrent use.
type Session struct {
	id        string
	algorithm string
	tl        *timeline.Timeline
	opts      Options

	legend    *Legend
	mapper    Mapper
	scheduler *animation.Scheduler

	intervals []RenderedInterval
	index     *HitIndex
	closed    bool
}

// Open builds a chart session for tl. An animated session starts playing
// immediately; a static one shows every entry at once.
func Open(opts Options, algorithm string, tl *timeline.Timeline, timers animation.Timers, animate bool) (*Session, error) {
	if tl == nil {
		return nil, fmt.Errorf("open chart %q: %w: no timeline", algorithm, timeline.ErrMalformedTimeline)
	}
	if animate && timers == nil {
		return nil, fmt.Errorf("open chart %q: %w", algorithm, ErrNoTimers)
	}
	if opts.Band == (Band{}) {
		opts.Band = DefaultBand()
	}

	s := &Session{
		id:        xid.New().String(),
		algorithm: algorithm,
		tl:        tl,
		opts:      opts,
		legend:    NewLegend(tl.ProcessIDs(), opts.Palette),
		mapper:    NewMapper(tl.Duration(), opts.MinWidth, opts.MinUnitWidth),
	}

	if animate {
		s.scheduler = animation.New(timers, tl.Len(), opts.Animation, s.onFrame)
		s.rebuild()
		s.scheduler.Start()
	} else {
		s.rebuild()
	}

	slog.Debug("chart opened",
		"session", s.id,
		"algorithm", algorithm,
		"entries", tl.Len(),
		"duration", tl.Duration(),
		"animated", animate,
	)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Algorithm returns the name of the algorithm that produced the timeline.
func (s *Session) Algorithm() string { return s.algorithm }

// Timeline returns the charted timeline.
func (s *Session) Timeline() *timeline.Timeline { return s.tl }

// Legend returns the color assignment.
func (s *Session) Legend() *Legend { return s.legend }

// Mapper returns the current coordinate mapper.
func (s *Session) Mapper() Mapper { return s.mapper }

// Band returns the bar band.
func (s *Session) Band() Band { return s.opts.Band }

// Animated reports whether the session has an animation scheduler.
func (s *Session) Animated() bool { return s.scheduler != nil }

// Closed reports whether Close has been called.
func (s *Session) Closed() bool { return s.closed }

// Frame returns the animation progress. Static sessions report Finished.
func (s *Session) Frame() animation.Frame {
	if s.scheduler == nil {
		return animation.Frame{State: animation.Finished, Index: s.tl.Len()}
	}
	return s.scheduler.Frame()
}

// State is shorthand for Frame().State.
func (s *Session) State() animation.State {
	return s.Frame().State
}

// Pending returns the number of outstanding timer handles.
func (s *Session) Pending() int {
	if s.scheduler == nil {
		return 0
	}
	return s.scheduler.Pending()
}

// Intervals returns a copy of the currently drawn intervals.
func (s *Session) Intervals() []RenderedInterval {
	return append([]RenderedInterval(nil), s.intervals...)
}

// Hover resolves a pointer position to a tooltip.
func (s *Session) Hover(x, y float64) (Tooltip, bool) {
	if s.closed {
		return Tooltip{}, false
	}
	r, ok := s.index.Lookup(x, y)
	if !ok {
		return Tooltip{}, false
	}
	return Resolve(s.tl, r)
}

// Resize rebuilds the mapper for a new minimum width. Animation progress is
// kept as is.
func (s *Session) Resize(minWidth float64) {
	if s.closed {
		return
	}
	s.opts.MinWidth = minWidth
	s.mapper = NewMapper(s.tl.Duration(), s.opts.MinWidth, s.opts.MinUnitWidth)
	s.rebuild()
}

// Start restarts the animation from the first entry.
func (s *Session) Start() bool {
	if s.closed || s.scheduler == nil {
		return false
	}
	return s.scheduler.Start()
}

// Toggle pauses or resumes the animation.
func (s *Session) Toggle() {
	if s.closed || s.scheduler == nil {
		return
	}
	s.scheduler.Toggle()
}

// Skip force-completes the growing entry.
func (s *Session) Skip() {
	if s.closed || s.scheduler == nil {
		return
	}
	s.scheduler.Skip()
}

// Stop cancels the animation and clears the chart back to Idle.
func (s *Session) Stop() {
	if s.closed || s.scheduler == nil {
		return
	}
	s.scheduler.Stop()
}

// Close cancels all pending work, then releases geometry. Every later call
// is a no-op.
func (s *Session) Close() {
	if s.closed {
		return
	}
	if s.scheduler != nil {
		s.scheduler.Close()
	}
	s.closed = true
	s.intervals = nil
	s.index = NewHitIndex(nil)
	slog.Debug("chart closed", "session", s.id)
}

func (s *Session) onFrame(animation.Frame) {
	if s.closed {
		return
	}
	s.rebuild()
}

func (s *Session) rebuild() {
	var r Reveal
	if s.scheduler == nil {
		r = FullReveal(s.tl)
	} else {
		r = RevealFromFrame(s.scheduler.Frame())
	}
	s.intervals = Build(s.tl, s.legend, s.mapper, s.opts.Band, r)
	s.index = NewHitIndex(s.intervals)
}
