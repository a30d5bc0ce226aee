package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Dicklesworthstone/schedviz/internal/animation"
	"github.com/Dicklesworthstone/schedviz/internal/gantt"
	"github.com/Dicklesworthstone/schedviz/internal/sched"
	"github.com/Dicklesworthstone/schedviz/internal/util"
	"github.com/Dicklesworthstone/schedviz/internal/watcher"
	"github.com/Dicklesworthstone/schedviz/internal/workload"
)

// Config represents the main configuration
type Config struct {
	Theme          string          `toml:"theme"`           // light, dark or auto
	DefaultQuantum int             `toml:"default_quantum"` // Round-robin time slice
	MaxHorizon     int             `toml:"max_horizon"`     // Longest schedule a workload may produce
	Animation      AnimationConfig `toml:"animation"`
	Chart          ChartConfig     `toml:"chart"`
	Watch          WatchConfig     `toml:"watch"`
	Serve          ServeConfig     `toml:"serve"`
}

// AnimationConfig controls the progressive reveal of a chart
type AnimationConfig struct {
	Enabled         bool `toml:"enabled"`           // Animate charts by default
	Steps           int  `toml:"steps"`             // Growth steps per entry
	EntryDurationMS int  `toml:"entry_duration_ms"` // Time for one entry to grow
	EntryDelayMS    int  `toml:"entry_delay_ms"`    // Pause between entries
}

// DefaultAnimationConfig returns the standard pacing
func DefaultAnimationConfig() AnimationConfig {
	return AnimationConfig{
		Enabled:         true,
		Steps:           20,
		EntryDurationMS: 500,
		EntryDelayMS:    500,
	}
}

// ChartConfig controls chart geometry and colors
type ChartConfig struct {
	MinWidth        int      `toml:"min_width"`        // Minimum canvas width in pixels
	MinUnitWidth    int      `toml:"min_unit_width"`   // Minimum pixels per time unit
	BandTop         int      `toml:"band_top"`         // Bar band top edge
	BandBottom      int      `toml:"band_bottom"`      // Bar band bottom edge
	Palette         []string `toml:"palette"`          // Cyclic process colors
	CellsPerUnit    int      `toml:"cells_per_unit"`   // Terminal columns per time unit
	LightBackground string   `toml:"light_background"` // Chart background in the light theme
	DarkBackground  string   `toml:"dark_background"`  // Chart background in the dark theme
}

// DefaultChartConfig returns the standard chart layout
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		MinWidth:        gantt.DefaultMinWidth,
		MinUnitWidth:    gantt.DefaultMinUnitWidth,
		BandTop:         gantt.DefaultBandTop,
		BandBottom:      gantt.DefaultBandBottom,
		Palette:         append([]string(nil), gantt.DefaultPalette...),
		CellsPerUnit:    4,
		LightBackground: "#e6f0ff",
		DarkBackground:  "#3c3f41",
	}
}

// WatchConfig controls workload file watching
type WatchConfig struct {
	Enabled    bool `toml:"enabled"`     // Re-run when the workload file changes (chart --watch)
	DebounceMS int  `toml:"debounce_ms"` // Quiet period before reloading
}

// DefaultWatchConfig returns the default watch settings
func DefaultWatchConfig() WatchConfig {
	v := watcher.DefaultWorkloadWatchConfigValues()
	return WatchConfig{Enabled: v.Enabled, DebounceMS: v.DebounceMS}
}

// ServeConfig controls the HTTP API
type ServeConfig struct {
	Addr                  string `toml:"addr"`                    // Listen address
	CacheTTLSeconds       int    `toml:"cache_ttl_seconds"`       // Comparison cache lifetime (0 = disabled)
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"` // Per-request deadline for /api/v1
}

// DefaultServeConfig returns the default HTTP settings
func DefaultServeConfig() ServeConfig {
	return ServeConfig{
		Addr:                  ":7338",
		CacheTTLSeconds:       300,
		RequestTimeoutSeconds: 10,
	}
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Theme:          "auto",
		DefaultQuantum: sched.DefaultQuantum,
		MaxHorizon:     workload.DefaultMaxHorizon,
		Animation:      DefaultAnimationConfig(),
		Chart:          DefaultChartConfig(),
		Watch:          DefaultWatchConfig(),
		Serve:          DefaultServeConfig(),
	}
}

// DefaultPath returns the default config file path
func DefaultPath() string {
	if env := os.Getenv("SCHEDVIZ_CONFIG"); env != "" {
		return ExpandHome(env)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "schedviz", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		// Fallback to /tmp when home directory is unavailable (e.g., containers)
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "schedviz", "config.toml")
}

// Load loads config from a file, applying environment overrides
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	// 1. Initialize with defaults
	cfg := Default()

	// 2. Read and unmarshal TOML over defaults
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Apply Environment Variable Overrides (Env > TOML > Default)
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if theme := os.Getenv("SCHEDVIZ_THEME"); theme != "" {
		cfg.Theme = strings.ToLower(theme)
	}
	if animate := os.Getenv("SCHEDVIZ_ANIMATE"); animate != "" {
		cfg.Animation.Enabled = animate == "1" || animate == "true"
	}
	if addr := os.Getenv("SCHEDVIZ_SERVE_ADDR"); addr != "" {
		cfg.Serve.Addr = addr
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"SCHEDVIZ_QUANTUM", &cfg.DefaultQuantum},
		{"SCHEDVIZ_MAX_HORIZON", &cfg.MaxHorizon},
		{"SCHEDVIZ_ANIMATION_STEPS", &cfg.Animation.Steps},
		{"SCHEDVIZ_ENTRY_DURATION_MS", &cfg.Animation.EntryDurationMS},
		{"SCHEDVIZ_ENTRY_DELAY_MS", &cfg.Animation.EntryDelayMS},
		{"SCHEDVIZ_MIN_UNIT_WIDTH", &cfg.Chart.MinUnitWidth},
	}
	for _, o := range ints {
		raw := os.Getenv(o.env)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", o.env, raw)
		}
		*o.dst = n
	}
	return nil
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate checks every section of cfg
func Validate(cfg *Config) error {
	switch cfg.Theme {
	case "light", "dark", "auto":
	default:
		return fmt.Errorf("theme must be light, dark, or auto; got %q", cfg.Theme)
	}
	if cfg.DefaultQuantum < 1 {
		return fmt.Errorf("default_quantum must be at least 1, got %d", cfg.DefaultQuantum)
	}
	if cfg.MaxHorizon < 1 {
		return fmt.Errorf("max_horizon must be at least 1, got %d", cfg.MaxHorizon)
	}
	if err := ValidateAnimationConfig(&cfg.Animation); err != nil {
		return fmt.Errorf("animation: %w", err)
	}
	if err := ValidateChartConfig(&cfg.Chart); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if cfg.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch: debounce_ms must be non-negative, got %d", cfg.Watch.DebounceMS)
	}
	if strings.TrimSpace(cfg.Serve.Addr) == "" {
		return fmt.Errorf("serve: addr must not be empty")
	}
	if cfg.Serve.CacheTTLSeconds < 0 {
		return fmt.Errorf("serve: cache_ttl_seconds must be non-negative, got %d", cfg.Serve.CacheTTLSeconds)
	}
	if cfg.Serve.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("serve: request_timeout_seconds must be at least 1, got %d", cfg.Serve.RequestTimeoutSeconds)
	}
	return nil
}

// ValidateAnimationConfig validates animation pacing
func ValidateAnimationConfig(cfg *AnimationConfig) error {
	if cfg.Steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", cfg.Steps)
	}
	if cfg.EntryDurationMS < 0 {
		return fmt.Errorf("entry_duration_ms must be non-negative, got %d", cfg.EntryDurationMS)
	}
	if cfg.EntryDelayMS < 0 {
		return fmt.Errorf("entry_delay_ms must be non-negative, got %d", cfg.EntryDelayMS)
	}
	return nil
}

// ValidateChartConfig validates chart geometry and colors
func ValidateChartConfig(cfg *ChartConfig) error {
	if cfg.MinWidth < 0 {
		return fmt.Errorf("min_width must be non-negative, got %d", cfg.MinWidth)
	}
	if cfg.MinUnitWidth < 1 {
		return fmt.Errorf("min_unit_width must be at least 1, got %d", cfg.MinUnitWidth)
	}
	if cfg.BandTop < 0 || cfg.BandTop >= cfg.BandBottom {
		return fmt.Errorf("band_top (%d) must be non-negative and less than band_bottom (%d)", cfg.BandTop, cfg.BandBottom)
	}
	if len(cfg.Palette) == 0 {
		return fmt.Errorf("palette must have at least one color")
	}
	for _, c := range cfg.Palette {
		if !hexColor.MatchString(c) {
			return fmt.Errorf("palette color %q is not #RRGGBB", c)
		}
	}
	if cfg.CellsPerUnit < 1 {
		return fmt.Errorf("cells_per_unit must be at least 1, got %d", cfg.CellsPerUnit)
	}
	for name, c := range map[string]string{"light_background": cfg.LightBackground, "dark_background": cfg.DarkBackground} {
		if !hexColor.MatchString(c) {
			return fmt.Errorf("%s %q is not #RRGGBB", name, c)
		}
	}
	return nil
}

// AnimationOptions converts the animation section for the scheduler
func (c *Config) AnimationOptions() animation.Options {
	return animation.Options{
		Steps:         c.Animation.Steps,
		EntryDuration: time.Duration(c.Animation.EntryDurationMS) * time.Millisecond,
		EntryDelay:    time.Duration(c.Animation.EntryDelayMS) * time.Millisecond,
	}
}

// ChartOptions converts the chart and animation sections for a chart session
func (c *Config) ChartOptions() gantt.Options {
	return gantt.Options{
		MinWidth:     float64(c.Chart.MinWidth),
		MinUnitWidth: float64(c.Chart.MinUnitWidth),
		Band:         gantt.Band{Top: float64(c.Chart.BandTop), Bottom: float64(c.Chart.BandBottom)},
		Palette:      append([]string(nil), c.Chart.Palette...),
		Animation:    c.AnimationOptions(),
	}
}

// WatchValues converts the watch section for the watcher package
func (c *Config) WatchValues() watcher.WorkloadWatchConfigValues {
	return watcher.WorkloadWatchConfigValues{
		Enabled:    c.Watch.Enabled,
		DebounceMS: c.Watch.DebounceMS,
	}
}

// CacheTTL returns the comparison cache lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Serve.CacheTTLSeconds) * time.Second
}

// RequestTimeout returns the per-request deadline for the HTTP API
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Serve.RequestTimeoutSeconds) * time.Second
}

// CreateDefault writes the default config to path (or DefaultPath)
func CreateDefault(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	var buffer strings.Builder
	if err := Print(Default(), &buffer); err != nil {
		return "", err
	}

	if err := util.AtomicWriteFile(path, []byte(buffer.String()), 0644); err != nil {
		return "", err
	}

	return path, nil
}

// Print writes cfg as a commented TOML file
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# schedviz configuration")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Chart theme (light, dark, auto)")
	fmt.Fprintf(w, "theme = %q\n", cfg.Theme)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Round-robin quantum used when a workload does not set one")
	fmt.Fprintf(w, "default_quantum = %d\n", cfg.DefaultQuantum)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Reject workloads whose max(arrival) + total burst exceeds this")
	fmt.Fprintf(w, "max_horizon = %d\n", cfg.MaxHorizon)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[animation]")
	fmt.Fprintf(w, "enabled = %t\n", cfg.Animation.Enabled)
	fmt.Fprintf(w, "steps = %d              # growth steps per entry\n", cfg.Animation.Steps)
	fmt.Fprintf(w, "entry_duration_ms = %d\n", cfg.Animation.EntryDurationMS)
	fmt.Fprintf(w, "entry_delay_ms = %d     # pause between entries\n", cfg.Animation.EntryDelayMS)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[chart]")
	fmt.Fprintf(w, "min_width = %d\n", cfg.Chart.MinWidth)
	fmt.Fprintf(w, "min_unit_width = %d       # canvas grows so one unit is never narrower\n", cfg.Chart.MinUnitWidth)
	fmt.Fprintf(w, "band_top = %d\n", cfg.Chart.BandTop)
	fmt.Fprintf(w, "band_bottom = %d\n", cfg.Chart.BandBottom)
	fmt.Fprintf(w, "palette = %s\n", renderTOMLStringArray(cfg.Chart.Palette))
	fmt.Fprintf(w, "cells_per_unit = %d        # terminal columns per time unit\n", cfg.Chart.CellsPerUnit)
	fmt.Fprintf(w, "light_background = %q\n", cfg.Chart.LightBackground)
	fmt.Fprintf(w, "dark_background = %q\n", cfg.Chart.DarkBackground)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[watch]")
	fmt.Fprintf(w, "enabled = %t\n", cfg.Watch.Enabled)
	fmt.Fprintf(w, "debounce_ms = %d\n", cfg.Watch.DebounceMS)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[serve]")
	fmt.Fprintf(w, "addr = %q\n", cfg.Serve.Addr)
	fmt.Fprintf(w, "cache_ttl_seconds = %d\n", cfg.Serve.CacheTTLSeconds)
	_, err := fmt.Fprintf(w, "request_timeout_seconds = %d\n", cfg.Serve.RequestTimeoutSeconds)
	return err
}

func renderTOMLStringArray(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// GetValue retrieves a configuration value by its dotted path (e.g., "animation.steps")
func GetValue(cfg *Config, path string) (interface{}, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	parts := strings.Split(path, ".")

	switch parts[0] {
	case "theme":
		return cfg.Theme, nil
	case "default_quantum":
		return cfg.DefaultQuantum, nil
	case "max_horizon":
		return cfg.MaxHorizon, nil
	case "animation":
		if len(parts) < 2 {
			return cfg.Animation, nil
		}
		switch parts[1] {
		case "enabled":
			return cfg.Animation.Enabled, nil
		case "steps":
			return cfg.Animation.Steps, nil
		case "entry_duration_ms":
			return cfg.Animation.EntryDurationMS, nil
		case "entry_delay_ms":
			return cfg.Animation.EntryDelayMS, nil
		}
	case "chart":
		if len(parts) < 2 {
			return cfg.Chart, nil
		}
		switch parts[1] {
		case "min_width":
			return cfg.Chart.MinWidth, nil
		case "min_unit_width":
			return cfg.Chart.MinUnitWidth, nil
		case "band_top":
			return cfg.Chart.BandTop, nil
		case "band_bottom":
			return cfg.Chart.BandBottom, nil
		case "palette":
			return cfg.Chart.Palette, nil
		case "cells_per_unit":
			return cfg.Chart.CellsPerUnit, nil
		case "light_background":
			return cfg.Chart.LightBackground, nil
		case "dark_background":
			return cfg.Chart.DarkBackground, nil
		}
	case "watch":
		if len(parts) < 2 {
			return cfg.Watch, nil
		}
		switch parts[1] {
		case "enabled":
			return cfg.Watch.Enabled, nil
		case "debounce_ms":
			return cfg.Watch.DebounceMS, nil
		}
	case "serve":
		if len(parts) < 2 {
			return cfg.Serve, nil
		}
		switch parts[1] {
		case "addr":
			return cfg.Serve.Addr, nil
		case "cache_ttl_seconds":
			return cfg.Serve.CacheTTLSeconds, nil
		case "request_timeout_seconds":
			return cfg.Serve.RequestTimeoutSeconds, nil
		}
	}
	return nil, fmt.Errorf("unknown config key %q", path)
}

// ExpandHome expands ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home
		}
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
