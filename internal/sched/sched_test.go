package sched

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/schedviz/internal/timeline"
)

func workload() []timeline.Process {
	return []timeline.Process{
		{ID: "P1", Arrival: 0, Burst: 5, Priority: 2},
		{ID: "P2", Arrival: 1, Burst: 3, Priority: 1},
		{ID: "P3", Arrival: 2, Burst: 1, Priority: 3},
	}
}

func e(pid string, start, end int) timeline.Entry {
	return timeline.Entry{ProcessID: pid, Start: start, End: end}
}

func TestAlgorithms_Timelines(t *testing.T) {
	tests := []struct {
		alg  Algorithm
		want []timeline.Entry
	}{
		{FCFS{}, []timeline.Entry{e("P1", 0, 5), e("P2", 5, 8), e("P3", 8, 9)}},
		{SJF{}, []timeline.Entry{e("P1", 0, 5), e("P3", 5, 6), e("P2", 6, 9)}},
		{SRTF{}, []timeline.Entry{e("P1", 0, 1), e("P2", 1, 2), e("P3", 2, 3), e("P2", 3, 5), e("P1", 5, 9)}},
		{NewRoundRobin(2), []timeline.Entry{e("P1", 0, 2), e("P2", 2, 4), e("P3", 4, 5), e("P1", 5, 7), e("P2", 7, 8), e("P1", 8, 9)}},
		{Priority{}, []timeline.Entry{e("P1", 0, 5), e("P2", 5, 8), e("P3", 8, 9)}},
		{PriorityPreemptive{}, []timeline.Entry{e("P1", 0, 1), e("P2", 1, 4), e("P1", 4, 8), e("P3", 8, 9)}},
	}

	for _, tt := range tests {
		t.Run(tt.alg.Name(), func(t *testing.T) {
			res := Run(tt.alg, workload())
			assert.Equal(t, tt.want, res.Entries)
			assert.Equal(t, tt.alg.Name(), res.Algorithm)

			_, err := res.Timeline()
			require.NoError(t, err, "scheduler output must be a valid timeline")
		})
	}
}

func TestRun_ComputedFields(t *testing.T) {
	res := Run(FCFS{}, workload())

	want := map[string][4]int{ // start, end, waiting, turnaround
		"P1": {0, 5, 0, 5},
		"P2": {5, 8, 4, 7},
		"P3": {8, 9, 6, 7},
	}
	for _, p := range res.Processes {
		w := want[p.ID]
		assert.Equal(t, w, [4]int{p.Start, p.End, p.Waiting, p.Turnaround}, p.ID)
	}
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	in := workload()
	_ = Run(NewRoundRobin(1), in)
	_ = Run(SRTF{}, in)

	for _, p := range in {
		assert.Zero(t, p.Start, p.ID)
		assert.Zero(t, p.End, p.ID)
		assert.Zero(t, p.Waiting, p.ID)
		assert.Zero(t, p.Turnaround, p.ID)
	}
}

func TestRun_IdleGap(t *testing.T) {
	procs := []timeline.Process{
		{ID: "A", Arrival: 0, Burst: 2},
		{ID: "B", Arrival: 5, Burst: 1},
	}
	for _, alg := range Standard(2) {
		res := Run(alg, procs)
		assert.Equal(t, []timeline.Entry{e("A", 0, 2), e("B", 5, 6)}, res.Entries, alg.Name())
	}

	m := ComputeMetrics(Run(FCFS{}, procs).Processes)
	assert.InDelta(t, 50.0, m.CPUUtilization, 1e-9)
	assert.InDelta(t, 2.0/6.0, m.Throughput, 1e-9)
}

func TestComputeMetrics(t *testing.T) {
	m := Run(FCFS{}, workload()).Metrics()
	assert.InDelta(t, 10.0/3.0, m.AverageWaiting, 1e-9)
	assert.InDelta(t, 19.0/3.0, m.AverageTurnaround, 1e-9)
	assert.InDelta(t, 100.0, m.CPUUtilization, 1e-9)
	assert.InDelta(t, 3.0/9.0, m.Throughput, 1e-9)

	assert.Equal(t, Metrics{}, ComputeMetrics(nil))
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		alg, err := ByName(name, 3)
		require.NoError(t, err, name)
		assert.NotEmpty(t, alg.Name())
	}

	rr, err := ByName("RR", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, rr.(RoundRobin).Quantum)

	_, err = ByName("lottery", 2)
	assert.True(t, errors.Is(err, ErrUnknownAlgorithm))
}

func TestStandard_Order(t *testing.T) {
	var names []string
	for _, alg := range Standard(0) {
		names = append(names, alg.Name())
	}
	assert.Equal(t, []string{"FCFS", "SJF", "SRTF", "RR", "Priority", "Priority-P"}, names)
	assert.Equal(t, DefaultQuantum, NewRoundRobin(0).Quantum)
}

func TestClone_ResetsComputedFields(t *testing.T) {
	done := Run(FCFS{}, workload()).Processes
	fresh := Clone(done)
	for i := range fresh {
		assert.Equal(t, done[i].ID, fresh[i].ID)
		assert.Equal(t, done[i].Burst, fresh[i].Burst)
		assert.Zero(t, fresh[i].End)
	}
	fresh[0].Burst = 99
	assert.NotEqual(t, 99, done[0].Burst)
}
