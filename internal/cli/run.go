package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/schedviz/internal/config"
	"github.com/Dicklesworthstone/schedviz/internal/export"
	"github.com/Dicklesworthstone/schedviz/internal/sched"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
	"github.com/Dicklesworthstone/schedviz/internal/workload"
)

// RunResult is the JSON shape of `schedviz run`.
type RunResult struct {
	Algorithm string             `json:"algorithm"`
	Quantum   int                `json:"quantum"`
	Duration  int                `json:"duration"`
	Processes []timeline.Process `json:"processes"`
	Timeline  []timeline.Entry   `json:"timeline"`
	Metrics   sched.Metrics      `json:"metrics"`
}

func newRunCmd() *cobra.Command {
	var (
		algo    string
		quantum int
	)

	cmd := &cobra.Command{
		Use:   "run [workload]",
		Short: "Simulate one algorithm and print per-process timing",
		Long: `Simulate one scheduling algorithm and print each process's start,
end, waiting and turnaround time followed by the run's metrics.

Algorithms: fcfs, sjf, srtf, rr, priority, priority-p

Examples:
  schedviz run jobs.yaml
  schedviz run jobs.yaml --algo rr --quantum 4
  schedviz run --algo srtf --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd.OutOrStdout(), args, algo, quantum)
		},
	}

	cmd.Flags().StringVarP(&algo, "algo", "a", "fcfs", "Scheduling algorithm")
	cmd.Flags().IntVarP(&quantum, "quantum", "q", 0, "Round-robin quantum (default: workload, then config)")
	return cmd
}

func runSimulation(w io.Writer, args []string, algo string, quantumFlag int) error {
	wl, _, err := loadWorkload(args)
	if err != nil {
		return err
	}
	quantum, err := resolveQuantum(quantumFlag, wl)
	if err != nil {
		return err
	}
	res, tl, err := simulate(algo, quantum, wl.Processes)
	if err != nil {
		return err
	}

	result := RunResult{
		Algorithm: res.Algorithm,
		Quantum:   quantum,
		Duration:  tl.Duration(),
		Processes: res.Processes,
		Timeline:  tl.Entries(),
		Metrics:   res.Metrics(),
	}

	f := GetFormatter(w)
	if f.IsJSON() {
		return f.JSON(result)
	}

	th := currentTheme()
	headers := make([]string, len(export.Header))
	for i, h := range export.Header {
		headers[i] = strings.ToUpper(h)
	}
	tbl := NewStyledTable(th, headers...).
		WithTitle(fmt.Sprintf("%s · quantum %d · duration %d", result.Algorithm, result.Quantum, result.Duration))
	for _, r := range export.Records(result.Processes) {
		tbl.AddRow(r.Fields()...)
	}
	fmt.Fprint(w, tbl.Render())

	slices := make([]string, len(result.Timeline))
	for i, e := range result.Timeline {
		slices[i] = fmt.Sprintf("%s %d→%d", e.ProcessID, e.Start, e.End)
	}
	fmt.Fprintln(w, KeyValue(th, "Timeline", strings.Join(slices, "  "), 20))
	fmt.Fprintln(w, KeyValue(th, "Average waiting", fmt.Sprintf("%.2f", result.Metrics.AverageWaiting), 20))
	fmt.Fprintln(w, KeyValue(th, "Average turnaround", fmt.Sprintf("%.2f", result.Metrics.AverageTurnaround), 20))
	fmt.Fprintln(w, KeyValue(th, "CPU utilization", fmt.Sprintf("%.1f%%", result.Metrics.CPUUtilization), 20))
	fmt.Fprintln(w, KeyValue(th, "Throughput", fmt.Sprintf("%.3f per unit", result.Metrics.Throughput), 20))
	return nil
}

// loadWorkload reads the workload named by args, or the built-in sample
// when none is given. The returned path is empty for the sample.
func loadWorkload(args []string) (*workload.Workload, string, error) {
	if len(args) == 0 || args[0] == "" {
		return workload.Sample(), "", nil
	}
	path := config.ExpandHome(args[0])
	wl, err := workload.Load(path, currentConfig().MaxHorizon)
	if err != nil {
		return nil, "", err
	}
	return wl, path, nil
}

// resolveQuantum picks the flag, then the workload's quantum, then the
// configured default.
func resolveQuantum(flag int, wl *workload.Workload) (int, error) {
	if flag < 0 {
		return 0, fmt.Errorf("--quantum must be positive, got %d", flag)
	}
	if flag > 0 {
		return flag, nil
	}
	return wl.QuantumOr(currentConfig().DefaultQuantum), nil
}

// simulate runs one algorithm and validates its timeline.
func simulate(algo string, quantum int, procs []timeline.Process) (sched.Result, *timeline.Timeline, error) {
	alg, err := sched.ByName(algo, quantum)
	if err != nil {
		return sched.Result{}, nil, err
	}
	res := sched.Run(alg, procs)
	tl, err := res.Timeline()
	if err != nil {
		return sched.Result{}, nil, fmt.Errorf("%s: %w", res.Algorithm, err)
	}
	return res, tl, nil
}
