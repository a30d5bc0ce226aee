package animation

import (
	"sort"
	"time"
)

// Handle identifies one scheduled callback. The zero Handle is never issued.
type Handle uint64

// Timers schedules callbacks on the host event loop. Callbacks run on the
// same goroutine as every other state transition, one at a time.
//
// After a handle is cancelled its callback must never run.
type Timers interface {
	After(d time.Duration, fn func()) Handle
	Cancel(h Handle)
}

// ManualTimers is a deterministic event loop driven by Advance. Callbacks fire
// in due-time order; callbacks due at the same instant fire in the order they
// were scheduled.
type ManualTimers struct {
	now     time.Duration
	next    Handle
	pending map[Handle]manualTimer
	fired   int
}

type manualTimer struct {
	due time.Duration
	fn  func()
}

// NewManualTimers returns an empty loop at time zero.
func NewManualTimers() *ManualTimers {
	return &ManualTimers{pending: make(map[Handle]manualTimer)}
}

// After implements Timers.
func (m *ManualTimers) After(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	m.next++
	m.pending[m.next] = manualTimer{due: m.now + d, fn: fn}
	return m.next
}

// Cancel implements Timers.
func (m *ManualTimers) Cancel(h Handle) {
	delete(m.pending, h)
}

// Now returns the elapsed virtual time.
func (m *ManualTimers) Now() time.Duration {
	return m.now
}

// Pending returns the number of scheduled, uncancelled callbacks.
func (m *ManualTimers) Pending() int {
	return len(m.pending)
}

// Fired returns how many callbacks have run.
func (m *ManualTimers) Fired() int {
	return m.fired
}

// Advance moves virtual time forward by d, running every callback that
// becomes due, including ones scheduled by callbacks along the way.
func (m *ManualTimers) Advance(d time.Duration) {
	target := m.now + d
	for {
		h, t, ok := m.earliest()
		if !ok || t.due > target {
			break
		}
		delete(m.pending, h)
		m.now = t.due
		m.fired++
		t.fn()
	}
	m.now = target
}

// RunUntilIdle fires callbacks until none remain or limit callbacks have run.
// It returns the number fired.
func (m *ManualTimers) RunUntilIdle(limit int) int {
	n := 0
	for n < limit {
		h, t, ok := m.earliest()
		if !ok {
			break
		}
		delete(m.pending, h)
		m.now = t.due
		m.fired++
		n++
		t.fn()
	}
	return n
}

func (m *ManualTimers) earliest() (Handle, manualTimer, bool) {
	if len(m.pending) == 0 {
		return 0, manualTimer{}, false
	}
	handles := make([]Handle, 0, len(m.pending))
	for h := range m.pending {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool {
		a, b := m.pending[handles[i]], m.pending[handles[j]]
		if a.due != b.due {
			return a.due < b.due
		}
		return handles[i] < handles[j]
	})
	return handles[0], m.pending[handles[0]], true
}
