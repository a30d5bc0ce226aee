// Package cli implements the schedviz command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/schedviz/internal/config"
	"github.com/Dicklesworthstone/schedviz/internal/output"
	"github.com/Dicklesworthstone/schedviz/internal/tui/theme"
)

var (
	cfgFile string
	cfg     *config.Config

	// Global JSON output flag - inherited by all subcommands
	jsonOutput bool

	verbose bool
	logFile string
	logOut  io.Closer

	// Build information - set via ldflags
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// annotationInteractive marks commands that own the terminal; their logs go
// to --log-file or nowhere.
const annotationInteractive = "interactive"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedviz",
		Short: "Animate and compare CPU scheduling timelines",
		Long: `schedviz simulates single-CPU scheduling algorithms over a process set
and shows the result as an animated Gantt chart, a metric comparison,
or exported data.

Workloads are YAML, TOML or JSON files with a list of processes
(pid, arrival, burst, priority) and an optional round-robin quantum.
Without a workload file the built-in three-process sample is used.

Quick Start:
  schedviz chart jobs.yaml --algo rr       # Animated Gantt chart
  schedviz compare jobs.yaml               # All six algorithms side by side
  schedviz export jobs.yaml --format png   # Static chart image
  schedviz serve                           # HTTP API + Prometheus metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(cmd); err != nil {
				return err
			}
			if canSkipConfigLoading(cmd.Name()) {
				return nil
			}
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/schedviz/config.toml)")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append logs to this file")

	cmd.AddCommand(
		newRunCmd(),
		newChartCmd(),
		newCompareCmd(),
		newExportCmd(),
		newServeCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the command tree until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	closeLog()
	if err != nil {
		// SilenceErrors is set so JSON mode can report errors as JSON
		if jsonOutput {
			_ = output.New(os.Stdout, output.FormatJSON).JSON(map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

func setupLogging(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = cmd.ErrOrStderr()
	switch {
	case logFile != "":
		f, err := os.OpenFile(config.ExpandHome(logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		logOut = f
		w = f
	case cmd.Annotations[annotationInteractive] == "true":
		w = io.Discard
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}

func closeLog() {
	if logOut != nil {
		_ = logOut.Close()
		logOut = nil
	}
}

// canSkipConfigLoading reports commands that must work with a missing or
// broken config file.
func canSkipConfigLoading(cmdName string) bool {
	switch cmdName {
	case "version", "path", "init":
		return true
	}
	return false
}

// currentConfig returns the loaded config, or defaults for commands that
// skipped loading.
func currentConfig() *config.Config {
	if cfg != nil {
		return cfg
	}
	return config.Default()
}

func currentTheme() theme.Theme {
	c := currentConfig()
	return theme.ResolveWithBackgrounds(c.Theme, c.Chart.LightBackground, c.Chart.DarkBackground)
}

// GetFormatter returns a formatter honoring --json.
func GetFormatter(w io.Writer) *output.Formatter {
	if jsonOutput {
		return output.New(w, output.FormatJSON)
	}
	return output.New(w, output.FormatText)
}
