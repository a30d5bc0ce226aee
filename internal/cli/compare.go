package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/schedviz/internal/compare"
	"github.com/Dicklesworthstone/schedviz/internal/config"
	"github.com/Dicklesworthstone/schedviz/internal/export"
	"github.com/Dicklesworthstone/schedviz/internal/tui/theme"
	"github.com/Dicklesworthstone/schedviz/internal/util"
)

// ComparisonResult is the JSON shape of `schedviz compare`.
type ComparisonResult struct {
	Quantum int              `json:"quantum"`
	Best    string           `json:"best"`
	Results *compare.Dataset `json:"results"`
}

func newCompareCmd() *cobra.Command {
	var (
		quantum int
		pngPath string
	)

	cmd := &cobra.Command{
		Use:   "compare [workload]",
		Short: "Run all six algorithms and compare their metrics",
		Long: `Run FCFS, SJF, SRTF, RR, Priority and Priority-P over the same
process set, each on its own copy, and print average waiting time,
average turnaround time, CPU utilization and throughput side by side.
The algorithm with the lowest average waiting time is marked with ★.

Examples:
  schedviz compare jobs.yaml
  schedviz compare jobs.yaml --quantum 3 --png metrics.png
  schedviz compare --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args, quantum, pngPath)
		},
	}

	cmd.Flags().IntVarP(&quantum, "quantum", "q", 0, "Round-robin quantum (default: workload, then config)")
	cmd.Flags().StringVar(&pngPath, "png", "", "Also write the metric bar charts to this PNG file")
	return cmd
}

func runCompare(cmd *cobra.Command, args []string, quantumFlag int, pngPath string) error {
	wl, _, err := loadWorkload(args)
	if err != nil {
		return err
	}
	quantum, err := resolveQuantum(quantumFlag, wl)
	if err != nil {
		return err
	}

	d, err := compare.RunComparison(cmd.Context(), wl.Processes, quantum)
	if err != nil {
		return err
	}

	c := currentConfig()
	th := currentTheme()
	if pngPath != "" {
		var buf bytes.Buffer
		if err := export.ComparisonPNG(&buf, d, imageOptions(c, th, "")); err != nil {
			return err
		}
		pngPath = config.ExpandHome(pngPath)
		if err := util.AtomicWriteFile(pngPath, buf.Bytes(), 0644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), SuccessMessage(th, "Wrote "+pngPath))
	}

	out := cmd.OutOrStdout()
	f := GetFormatter(out)
	if f.IsJSON() {
		return f.JSON(ComparisonResult{Quantum: quantum, Best: d.Best(), Results: d})
	}

	best := d.Best()
	tbl := NewStyledTable(th, "", "ALGORITHM", "AVG WAIT", "AVG TAT", "CPU %", "THROUGHPUT").
		WithTitle(fmt.Sprintf("Algorithm comparison · quantum %d", quantum)).
		WithFooter("★ lowest average waiting time: " + best)
	for _, r := range d.Rows() {
		mark := ""
		if r.Algorithm == best {
			mark = "★"
		}
		tbl.AddRow(
			mark,
			r.Algorithm,
			fmt.Sprintf("%.2f", r.Metrics.AverageWaiting),
			fmt.Sprintf("%.2f", r.Metrics.AverageTurnaround),
			fmt.Sprintf("%.1f", r.Metrics.CPUUtilization),
			fmt.Sprintf("%.3f", r.Metrics.Throughput),
		)
	}
	fmt.Fprint(out, tbl.Render())
	return nil
}

// imageOptions styles PNG output after the active theme.
func imageOptions(c *config.Config, th theme.Theme, title string) export.ImageOptions {
	opts := export.DefaultImageOptions()
	opts.Chart = c.ChartOptions()
	opts.Background = string(th.Background)
	opts.Foreground = string(th.Text)
	opts.Title = title
	return opts
}
