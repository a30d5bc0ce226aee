package dashboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/xid"

	"github.com/Dicklesworthstone/schedviz/internal/animation"
)

// TimerFiredMsg is delivered by tea.Tick when an animation timer is due.
type TimerFiredMsg struct {
	Owner  string
	Handle animation.Handle
}

// TeaTimers hosts animation timers on the Bubble Tea event loop. After only
// records the callback; the tick command it queues is handed to the runtime
// by Drain. Callbacks run from Update via Fire, so they are serialized with
// every other state change.
//
// Each chart session gets its own TeaTimers. Messages from another owner, or
// for a handle that has been cancelled, are ignored.
type TeaTimers struct {
	owner  string
	next   animation.Handle
	owned  map[animation.Handle]func()
	queued []tea.Cmd
}

// NewTeaTimers returns an empty timer host with a fresh owner ID.
func NewTeaTimers() *TeaTimers {
	return &TeaTimers{
		owner: xid.New().String(),
		owned: make(map[animation.Handle]func()),
	}
}

// Owner returns the ID carried by this host's messages.
func (t *TeaTimers) Owner() string {
	return t.owner
}

// After implements animation.Timers.
func (t *TeaTimers) After(d time.Duration, fn func()) animation.Handle {
	t.next++
	h := t.next
	t.owned[h] = fn
	owner := t.owner
	t.queued = append(t.queued, tea.Tick(d, func(time.Time) tea.Msg {
		return TimerFiredMsg{Owner: owner, Handle: h}
	}))
	return h
}

// Cancel implements animation.Timers.
func (t *TeaTimers) Cancel(h animation.Handle) {
	delete(t.owned, h)
}

// Pending returns the number of callbacks still owned.
func (t *TeaTimers) Pending() int {
	return len(t.owned)
}

// Fire runs the callback for msg if this host still owns it. It reports
// whether a callback ran.
func (t *TeaTimers) Fire(msg TimerFiredMsg) bool {
	if msg.Owner != t.owner {
		return false
	}
	fn, ok := t.owned[msg.Handle]
	if !ok {
		return false
	}
	delete(t.owned, msg.Handle)
	fn()
	return true
}

// Drain returns the ticks queued since the last call.
func (t *TeaTimers) Drain() tea.Cmd {
	cmds := t.queued
	t.queued = nil
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}
