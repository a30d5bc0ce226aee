package sched

import (
	"log/slog"

	"github.com/Dicklesworthstone/schedviz/internal/timeline"
)

// Metrics is the per-run summary shown in the comparison view.
type Metrics struct {
	AverageWaiting    float64 `json:"average_waiting"`
	AverageTurnaround float64 `json:"average_turnaround"`
	CPUUtilization    float64 `json:"cpu_utilization"` // percent of the makespan the CPU was busy
	Throughput        float64 `json:"throughput"`      // processes completed per time unit
}

// ComputeMetrics summarizes processes whose computed fields are filled in.
// The makespan runs from the earliest arrival to the latest completion.
func ComputeMetrics(procs []timeline.Process) Metrics {
	if len(procs) == 0 {
		return Metrics{}
	}

	var waiting, turnaround, busy int
	minArrival := procs[0].Arrival
	maxEnd := procs[0].End
	for _, p := range procs {
		waiting += p.Waiting
		turnaround += p.Turnaround
		busy += p.Burst
		if p.Arrival < minArrival {
			minArrival = p.Arrival
		}
		if p.End > maxEnd {
			maxEnd = p.End
		}
	}

	n := float64(len(procs))
	m := Metrics{
		AverageWaiting:    float64(waiting) / n,
		AverageTurnaround: float64(turnaround) / n,
	}
	if span := maxEnd - minArrival; span > 0 {
		m.CPUUtilization = float64(busy) / float64(span) * 100
		m.Throughput = n / float64(span)
	}

	slog.Debug("computed scheduling metrics",
		"processes", len(procs),
		"avg_wait", m.AverageWaiting,
		"avg_turnaround", m.AverageTurnaround,
		"cpu_util", m.CPUUtilization,
		"throughput", m.Throughput,
	)
	return m
}
