// Package sched simulates single-CPU scheduling algorithms over a process set
// and produces the execution timeline and per-process timing fields.
package sched

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/schedviz/internal/timeline"
)

// DefaultQuantum is the round-robin time slice used when none is given.
const DefaultQuantum = 2

// ErrUnknownAlgorithm is returned by ByName for names it does not recognize.
var ErrUnknownAlgorithm = errors.New("unknown scheduling algorithm")

// Algorithm turns a process set into an ordered execution timeline.
// Schedule must not modify procs.
type Algorithm interface {
	Name() string
	Schedule(procs []timeline.Process) []timeline.Entry
}

// Result is the outcome of running one algorithm over its own copy of a
// process set.
type Result struct {
	Algorithm string             `json:"algorithm"`
	Processes []timeline.Process `json:"processes"`
	Entries   []timeline.Entry   `json:"timeline"`
}

// Timeline validates the result into a timeline.Timeline.
func (r Result) Timeline() (*timeline.Timeline, error) {
	return timeline.New(r.Entries, r.Processes)
}

// Metrics summarizes the result's processes.
func (r Result) Metrics() Metrics {
	return ComputeMetrics(r.Processes)
}

// Run executes alg on a private copy of procs and fills the computed fields.
// The caller's slice is never touched.
func Run(alg Algorithm, procs []timeline.Process) Result {
	own := Clone(procs)
	entries := alg.Schedule(own)
	finalize(own, entries)
	return Result{
		Algorithm: alg.Name(),
		Processes: own,
		Entries:   entries,
	}
}

// Clone copies procs and clears every computed field.
func Clone(procs []timeline.Process) []timeline.Process {
	out := make([]timeline.Process, len(procs))
	for i, p := range procs {
		out[i] = timeline.Process{
			ID:       p.ID,
			Arrival:  p.Arrival,
			Burst:    p.Burst,
			Priority: p.Priority,
		}
	}
	return out
}

// Standard returns the six standard algorithms in evaluation order.
func Standard(quantum int) []Algorithm {
	return []Algorithm{
		FCFS{},
		SJF{},
		SRTF{},
		NewRoundRobin(quantum),
		Priority{},
		PriorityPreemptive{},
	}
}

// Names returns the lookup keys accepted by ByName, in standard order.
func Names() []string {
	return []string{"fcfs", "sjf", "srtf", "rr", "priority", "priority-p"}
}

// ByName resolves an algorithm by key or display name, case-insensitively.
func ByName(name string, quantum int) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fcfs", "fifo":
		return FCFS{}, nil
	case "sjf", "sjf-np":
		return SJF{}, nil
	case "srtf", "sjf-p":
		return SRTF{}, nil
	case "rr", "round-robin":
		return NewRoundRobin(quantum), nil
	case "priority", "priority-np", "prio":
		return Priority{}, nil
	case "priority-p", "prio-p":
		return PriorityPreemptive{}, nil
	default:
		return nil, fmt.Errorf("%w %q (valid: %s)", ErrUnknownAlgorithm, name, strings.Join(Names(), ", "))
	}
}

// finalize derives start, end, turnaround and waiting from the timeline.
func finalize(procs []timeline.Process, entries []timeline.Entry) {
	index := make(map[string]int, len(procs))
	for i := range procs {
		index[procs[i].ID] = i
		procs[i].Start = -1
	}
	for _, e := range entries {
		p := &procs[index[e.ProcessID]]
		if p.Start < 0 {
			p.Start = e.Start
		}
		p.End = e.End
	}
	for i := range procs {
		p := &procs[i]
		if p.Start < 0 {
			// Zero-burst process: completes on arrival.
			p.Start = p.Arrival
			p.End = p.Arrival
		}
		p.Turnaround = p.End - p.Arrival
		p.Waiting = p.Turnaround - p.Burst
	}
}

// appendEntry adds a slice, merging it into the previous one when the same
// process keeps the CPU without a gap.
func appendEntry(entries []timeline.Entry, pid string, start, end int) []timeline.Entry {
	if n := len(entries); n > 0 {
		last := &entries[n-1]
		if last.ProcessID == pid && last.End == start {
			last.End = end
			return entries
		}
	}
	return append(entries, timeline.Entry{ProcessID: pid, Start: start, End: end})
}

// nextArrival returns the earliest arrival among unfinished processes.
func nextArrival(procs []timeline.Process, done []bool) int {
	next := -1
	for i, p := range procs {
		if done[i] {
			continue
		}
		if next < 0 || p.Arrival < next {
			next = p.Arrival
		}
	}
	return next
}
