package sched

import (
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
)

// before reports whether candidate a should run ahead of b. Ties fall back to
// arrival time and then to input order, so results never depend on map order.
type before func(a, b candidate) bool

type candidate struct {
	index     int
	arrival   int
	burst     int
	remaining int
	priority  int
}

func byArrival(a, b candidate) bool {
	if a.arrival != b.arrival {
		return a.arrival < b.arrival
	}
	return a.index < b.index
}

func byBurst(a, b candidate) bool {
	if a.burst != b.burst {
		return a.burst < b.burst
	}
	return byArrival(a, b)
}

func byRemaining(a, b candidate) bool {
	if a.remaining != b.remaining {
		return a.remaining < b.remaining
	}
	return byArrival(a, b)
}

func byPriority(a, b candidate) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return byArrival(a, b)
}

// FCFS runs processes to completion in arrival order.
type FCFS struct{}

func (FCFS) Name() string { return "FCFS" }

func (FCFS) Schedule(procs []timeline.Process) []timeline.Entry {
	return nonPreemptive(procs, byArrival)
}

// SJF runs the shortest ready job to completion.
type SJF struct{}

func (SJF) Name() string { return "SJF" }

func (SJF) Schedule(procs []timeline.Process) []timeline.Entry {
	return nonPreemptive(procs, byBurst)
}

// SRTF is preemptive SJF: the job with the least remaining time runs each unit.
type SRTF struct{}

func (SRTF) Name() string { return "SRTF" }

func (SRTF) Schedule(procs []timeline.Process) []timeline.Entry {
	return preemptive(procs, byRemaining)
}

// Priority runs the ready job with the lowest priority number to completion.
type Priority struct{}

func (Priority) Name() string { return "Priority" }

func (Priority) Schedule(procs []timeline.Process) []timeline.Entry {
	return nonPreemptive(procs, byPriority)
}

// PriorityPreemptive re-evaluates priorities every time unit.
type PriorityPreemptive struct{}

func (PriorityPreemptive) Name() string { return "Priority-P" }

func (PriorityPreemptive) Schedule(procs []timeline.Process) []timeline.Entry {
	return preemptive(procs, byPriority)
}

// RoundRobin cycles through ready processes with a fixed quantum.
type RoundRobin struct {
	Quantum int
}

// NewRoundRobin returns a RoundRobin, substituting DefaultQuantum for q < 1.
func NewRoundRobin(q int) RoundRobin {
	if q < 1 {
		q = DefaultQuantum
	}
	return RoundRobin{Quantum: q}
}

func (RoundRobin) Name() string { return "RR" }

func (rr RoundRobin) Schedule(procs []timeline.Process) []timeline.Entry {
	q := rr.Quantum
	if q < 1 {
		q = DefaultQuantum
	}

	// Admission order is arrival time, then input order.
	order := make([]int, 0, len(procs))
	for i := range procs {
		order = append(order, i)
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && byArrival(candidateOf(procs, order[j]), candidateOf(procs, order[j-1])); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	remaining := make([]int, len(procs))
	for i, p := range procs {
		remaining[i] = p.Burst
	}

	var entries []timeline.Entry
	var queue []int
	next := 0
	now := 0
	admit := func() {
		for next < len(order) && procs[order[next]].Arrival <= now {
			if remaining[order[next]] > 0 {
				queue = append(queue, order[next])
			}
			next++
		}
	}

	admit()
	for len(queue) > 0 || next < len(order) {
		if len(queue) == 0 {
			now = procs[order[next]].Arrival
			admit()
			continue
		}
		cur := queue[0]
		queue = queue[1:]

		slice := q
		if remaining[cur] < slice {
			slice = remaining[cur]
		}
		entries = appendEntry(entries, procs[cur].ID, now, now+slice)
		now += slice
		remaining[cur] -= slice

		admit()
		if remaining[cur] > 0 {
			queue = append(queue, cur)
		}
	}
	return entries
}

func candidateOf(procs []timeline.Process, i int) candidate {
	p := procs[i]
	return candidate{index: i, arrival: p.Arrival, burst: p.Burst, remaining: p.Burst, priority: p.Priority}
}

func nonPreemptive(procs []timeline.Process, less before) []timeline.Entry {
	done := make([]bool, len(procs))
	left := len(procs)
	for i, p := range procs {
		if p.Burst <= 0 {
			done[i] = true
			left--
		}
	}

	var entries []timeline.Entry
	now := 0
	for left > 0 {
		best := -1
		for i := range procs {
			if done[i] || procs[i].Arrival > now {
				continue
			}
			if best < 0 || less(candidateOf(procs, i), candidateOf(procs, best)) {
				best = i
			}
		}
		if best < 0 {
			now = nextArrival(procs, done)
			continue
		}
		p := procs[best]
		entries = appendEntry(entries, p.ID, now, now+p.Burst)
		now += p.Burst
		done[best] = true
		left--
	}
	return entries
}

func preemptive(procs []timeline.Process, less before) []timeline.Entry {
	remaining := make([]int, len(procs))
	done := make([]bool, len(procs))
	left := len(procs)
	for i, p := range procs {
		remaining[i] = p.Burst
		if p.Burst <= 0 {
			done[i] = true
			left--
		}
	}

	var entries []timeline.Entry
	now := 0
	running := -1
	for left > 0 {
		best := -1
		for i := range procs {
			if done[i] || procs[i].Arrival > now {
				continue
			}
			c := candidateOf(procs, i)
			c.remaining = remaining[i]
			if best < 0 {
				best = i
				continue
			}
			b := candidateOf(procs, best)
			b.remaining = remaining[best]
			if less(c, b) {
				best = i
			}
		}
		if best < 0 {
			now = nextArrival(procs, done)
			running = -1
			continue
		}
		// Keep the running process on a tie so equal keys do not thrash.
		if running >= 0 && running != best && !done[running] && procs[running].Arrival <= now {
			r := candidateOf(procs, running)
			r.remaining = remaining[running]
			b := candidateOf(procs, best)
			b.remaining = remaining[best]
			if sameKey(less, r, b) {
				best = running
			}
		}

		entries = appendEntry(entries, procs[best].ID, now, now+1)
		now++
		remaining[best]--
		running = best
		if remaining[best] == 0 {
			done[best] = true
			left--
			running = -1
		}
	}
	return entries
}

// sameKey reports whether a and b tie on the algorithm's primary key, i.e.
// they only differ by the arrival/index fallback.
func sameKey(less before, a, b candidate) bool {
	a.arrival, b.arrival = 0, 0
	a.index, b.index = 0, 0
	return !less(a, b) && !less(b, a)
}
