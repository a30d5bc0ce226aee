package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/schedviz/internal/config"
	"github.com/Dicklesworthstone/schedviz/internal/export"
	"github.com/Dicklesworthstone/schedviz/internal/output"
	"github.com/Dicklesworthstone/schedviz/internal/util"
)

type exportOptions struct {
	algo    string
	quantum int
	format  string
	output  string
}

func newExportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export [workload]",
		Short: "Export a run as CSV, JSON, a text table or a PNG chart",
		Long: `Export one algorithm's run. Tabular formats write one row per process
(pid, arrival, burst, priority, start, end, waiting, turnaround) to stdout
unless --output is given. PNG renders the finished Gantt chart and is
written to <workload>-<algorithm>.png by default.

Examples:
  schedviz export jobs.yaml --format csv > jobs.csv
  schedviz export jobs.yaml --algo rr --format json -o rr.json
  schedviz export jobs.yaml --algo srtf --format png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.algo, "algo", "a", "fcfs", "Scheduling algorithm")
	cmd.Flags().IntVarP(&opts.quantum, "quantum", "q", 0, "Round-robin quantum (default: workload, then config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "csv", "Export format: csv|json|table|png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default stdout; png defaults to <workload>-<algorithm>.png)")
	return cmd
}

func runExport(cmd *cobra.Command, args []string, opts exportOptions) error {
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	wl, path, err := loadWorkload(args)
	if err != nil {
		return err
	}
	quantum, err := resolveQuantum(opts.quantum, wl)
	if err != nil {
		return err
	}
	res, tl, err := simulate(opts.algo, quantum, wl.Processes)
	if err != nil {
		return err
	}

	th := currentTheme()
	outPath := config.ExpandHome(opts.output)
	var buf bytes.Buffer
	if format == export.FormatPNG {
		title := fmt.Sprintf("Gantt Chart · %s", res.Algorithm)
		if err := export.GanttPNG(&buf, tl, imageOptions(currentConfig(), th, title)); err != nil {
			return err
		}
		if outPath == "" {
			outPath = defaultExportName(path, res.Algorithm, format)
		}
	} else if err := export.Write(&buf, format, export.Records(res.Processes)); err != nil {
		return err
	}

	if outPath == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := util.AtomicWriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), SuccessMessage(th, fmt.Sprintf("Exported %s to %s (%s)", res.Algorithm, outPath, output.CountStr(len(res.Processes), "process", "processes"))))
	return nil
}

// defaultExportName derives <workload>-<algorithm>.<ext> in the current
// directory.
func defaultExportName(workloadPath, algorithm string, format export.Format) string {
	base := "sample"
	if workloadPath != "" {
		base = strings.TrimSuffix(filepath.Base(workloadPath), filepath.Ext(workloadPath))
	}
	return util.SanitizeFilename(base+"-"+algorithm) + "." + string(format)
}
