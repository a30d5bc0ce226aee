package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/schedviz/internal/config"
	"github.com/Dicklesworthstone/schedviz/internal/gantt"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
	"github.com/Dicklesworthstone/schedviz/internal/tui/dashboard"
	"github.com/Dicklesworthstone/schedviz/internal/tui/dashboard/panels"
	"github.com/Dicklesworthstone/schedviz/internal/tui/theme"
	"github.com/Dicklesworthstone/schedviz/internal/watcher"
)

const (
	defaultStaticWidth = 100
	staticChartHeight  = 12
)

var errWatchWithoutFile = errors.New("--watch needs a workload file")

// Swapped in tests.
var (
	isTerminal = func(fd uintptr) bool {
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	terminalWidth = func(fd int) int {
		w, _, err := term.GetSize(fd)
		if err != nil || w <= 0 {
			return defaultStaticWidth
		}
		return w
	}
)

type chartOptions struct {
	algo    string
	quantum int
	static  bool
	watch   bool
}

func newChartCmd() *cobra.Command {
	var opts chartOptions

	cmd := &cobra.Command{
		Use:     "chart [workload]",
		Aliases: []string{"dashboard", "dash"},
		Short:   "Open the interactive Gantt chart",
		Long: `Open the interactive dashboard: the chart grows one entry at a time,
and the comparison tab shows all six algorithms side by side.

Keys:
  space/p  play or pause        s  restart       x  stop
  n        skip entry           r  run again     a  next algorithm
  c        compare all          tab  switch view q  quit
  ←/→      scroll the chart     mouse  hover for entry details

When stdout is not a terminal a static chart is printed instead.

Examples:
  schedviz chart jobs.yaml --algo srtf
  schedviz chart jobs.yaml --watch      # re-run when the file changes
  schedviz chart --static | less -R`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{annotationInteractive: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			watch := currentConfig().Watch.Enabled && len(args) > 0
			if cmd.Flags().Changed("watch") {
				watch = opts.watch
			}
			opts.watch = watch
			return runChart(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.algo, "algo", "a", "fcfs", "Scheduling algorithm")
	cmd.Flags().IntVarP(&opts.quantum, "quantum", "q", 0, "Round-robin quantum (default: workload, then config)")
	cmd.Flags().BoolVar(&opts.static, "static", false, "Show every entry at once instead of animating")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reload and re-run when the workload file changes")
	return cmd
}

func runChart(cmd *cobra.Command, args []string, opts chartOptions) error {
	wl, path, err := loadWorkload(args)
	if err != nil {
		return err
	}
	quantum, err := resolveQuantum(opts.quantum, wl)
	if err != nil {
		return err
	}
	c := currentConfig()

	if !isTerminal(os.Stdout.Fd()) {
		return printStaticChart(cmd.OutOrStdout(), c, currentTheme(), opts.algo, quantum, wl.Processes, terminalWidth(int(os.Stdout.Fd())))
	}

	var fw *watcher.FileWatcher
	if opts.watch {
		if path == "" {
			return errWatchWithoutFile
		}
		values := c.WatchValues()
		values.Enabled = true
		fw = watcher.NewWorkloadWatcherFromConfig(values, path)
	}

	return dashboard.Run(cmd.Context(), dashboard.Options{
		Path:      path,
		Processes: wl.Processes,
		Quantum:   quantum,
		Algorithm: opts.algo,
		Animate:   c.Animation.Enabled && !opts.static,
		Config:    c,
		Watcher:   fw,
	})
}

// printStaticChart renders the finished chart once, the way the dashboard
// panel draws it.
func printStaticChart(w io.Writer, c *config.Config, th theme.Theme, algo string, quantum int, procs []timeline.Process, width int) error {
	res, tl, err := simulate(algo, quantum, procs)
	if err != nil {
		return err
	}

	chartOpts := c.ChartOptions()
	s, err := gantt.Open(chartOpts, res.Algorithm, tl, nil, false)
	if err != nil {
		return err
	}
	defer s.Close()

	panel := panels.NewGanttPanel(th, c.Chart.CellsPerUnit, chartOpts.MinUnitWidth)
	panel.SetSession(s)
	panel.SetSize(width, staticChartHeight)
	_, err = fmt.Fprintln(w, panel.View())
	return err
}
