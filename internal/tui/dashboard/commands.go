package dashboard

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/schedviz/internal/compare"
	"github.com/Dicklesworthstone/schedviz/internal/sched"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
	"github.com/Dicklesworthstone/schedviz/internal/watcher"
	"github.com/Dicklesworthstone/schedviz/internal/workload"
)

// RunResultMsg carries a finished simulation. Gen is compared against the
// model's current run generation so a superseded run is dropped.
type RunResultMsg struct {
	Gen      int
	Result   sched.Result
	Timeline *timeline.Timeline
	Err      error
}

// ComparisonMsg carries the dataset for all standard algorithms.
type ComparisonMsg struct {
	Gen     int
	Dataset *compare.Dataset
	Err     error
}

// WorkloadChangedMsg is sent when the watched workload file was rewritten.
type WorkloadChangedMsg struct {
	Path     string
	Workload *workload.Workload
	Err      error
}

// runCmd simulates one algorithm off the event loop.
func runCmd(gen int, name string, quantum int, procs []timeline.Process) tea.Cmd {
	procs = sched.Clone(procs)
	return func() tea.Msg {
		alg, err := sched.ByName(name, quantum)
		if err != nil {
			return RunResultMsg{Gen: gen, Err: err}
		}
		res := sched.Run(alg, procs)
		tl, err := res.Timeline()
		if err != nil {
			return RunResultMsg{Gen: gen, Err: err}
		}
		slog.Debug("simulation finished", "algorithm", res.Algorithm, "entries", tl.Len())
		return RunResultMsg{Gen: gen, Result: res, Timeline: tl}
	}
}

// compareCmd runs every standard algorithm, each on its own copy.
func compareCmd(ctx context.Context, gen int, runner *compare.Runner, quantum int, procs []timeline.Process) tea.Cmd {
	procs = sched.Clone(procs)
	return func() tea.Msg {
		d, err := runner.RunComparison(ctx, procs, quantum)
		return ComparisonMsg{Gen: gen, Dataset: d, Err: err}
	}
}

// waitForChange blocks until the watcher reports a write, then reloads the
// workload within maxHorizon. It returns nil once ctx is done.
func waitForChange(ctx context.Context, w *watcher.FileWatcher, maxHorizon int) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case path := <-w.Changes():
			wl, err := workload.Load(path, maxHorizon)
			return WorkloadChangedMsg{Path: path, Workload: wl, Err: err}
		}
	}
}
