// Package timeline provides the normalized, read-only view of a scheduling
// result that the chart, animation and comparison layers consume.
package timeline

import (
	"errors"
	"fmt"
)

// ErrMalformedTimeline is returned when an execution interval is empty,
// negative, out of order, or references a process that is not in the run.
var ErrMalformedTimeline = errors.New("malformed timeline")

// Process is one job of a simulated run. The scheduler fills the computed
// fields (Start through Turnaround); everything downstream treats it as input.
type Process struct {
	ID       string `json:"pid" yaml:"pid" toml:"pid"`
	Arrival  int    `json:"arrival" yaml:"arrival" toml:"arrival"`
	Burst    int    `json:"burst" yaml:"burst" toml:"burst"`
	Priority int    `json:"priority" yaml:"priority" toml:"priority"`

	Start      int `json:"start" yaml:"-" toml:"-"`
	End        int `json:"end" yaml:"-" toml:"-"`
	Waiting    int `json:"waiting" yaml:"-" toml:"-"`
	Turnaround int `json:"turnaround" yaml:"-" toml:"-"`
}

// Entry is one contiguous execution slice of a process.
type Entry struct {
	ProcessID string `json:"pid"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

// Timeline is an immutable, validated sequence of execution slices together
// with the processes they reference. Construct it with New.
type Timeline struct {
	entries   []Entry
	processes []Process
	byID      map[string]int
	duration  int
}

// New validates entries against processes and returns a Timeline.
//
// Every entry must satisfy 0 <= start < end, reference a known process, and
// start no earlier than the entry before it. Entries with equal start keep
// the order the scheduler emitted them in.
func New(entries []Entry, processes []Process) (*Timeline, error) {
	byID := make(map[string]int, len(processes))
	for i, p := range processes {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: process %d has no identifier", ErrMalformedTimeline, i)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate process %q", ErrMalformedTimeline, p.ID)
		}
		byID[p.ID] = i
	}

	duration := 0
	for i, e := range entries {
		if e.Start < 0 || e.Start >= e.End {
			return nil, fmt.Errorf("%w: entry %d (%s) has start %d, end %d",
				ErrMalformedTimeline, i, e.ProcessID, e.Start, e.End)
		}
		if _, ok := byID[e.ProcessID]; !ok {
			return nil, fmt.Errorf("%w: entry %d references unknown process %q",
				ErrMalformedTimeline, i, e.ProcessID)
		}
		if i > 0 && e.Start < entries[i-1].Start {
			return nil, fmt.Errorf("%w: entry %d starts at %d before entry %d at %d",
				ErrMalformedTimeline, i, e.Start, i-1, entries[i-1].Start)
		}
		if e.End > duration {
			duration = e.End
		}
	}
	if duration == 0 {
		duration = 1
	}

	return &Timeline{
		entries:   append([]Entry(nil), entries...),
		processes: append([]Process(nil), processes...),
		byID:      byID,
		duration:  duration,
	}, nil
}

// Len returns the number of entries.
func (t *Timeline) Len() int {
	return len(t.entries)
}

// At returns entry i. It panics if i is out of range, like a slice index.
func (t *Timeline) At(i int) Entry {
	return t.entries[i]
}

// Entries returns a copy of the entries in emission order.
func (t *Timeline) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Processes returns a copy of the process list in input order.
func (t *Timeline) Processes() []Process {
	return append([]Process(nil), t.processes...)
}

// Process looks up a process by identifier.
func (t *Timeline) Process(id string) (Process, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Process{}, false
	}
	return t.processes[i], true
}

// Duration returns the largest end time, or 1 for an empty timeline.
func (t *Timeline) Duration() int {
	return t.duration
}

// ProcessIDs returns the process identifiers in first-seen order of the
// process list, without duplicates.
func (t *Timeline) ProcessIDs() []string {
	ids := make([]string, 0, len(t.processes))
	for _, p := range t.processes {
		ids = append(ids, p.ID)
	}
	return ids
}
