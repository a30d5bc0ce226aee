package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.DefaultQuantum != 2 {
		t.Errorf("DefaultQuantum = %d, want 2", cfg.DefaultQuantum)
	}
	if cfg.MaxHorizon != 2000 || cfg.RequestTimeout() != 10*time.Second {
		t.Errorf("MaxHorizon = %d, RequestTimeout = %v", cfg.MaxHorizon, cfg.RequestTimeout())
	}
	if len(cfg.Chart.Palette) != 5 {
		t.Errorf("palette has %d colors, want 5", len(cfg.Chart.Palette))
	}
	if cfg.Chart.LightBackground != "#e6f0ff" || cfg.Chart.DarkBackground != "#3c3f41" {
		t.Errorf("backgrounds = %s / %s", cfg.Chart.LightBackground, cfg.Chart.DarkBackground)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get user home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~", home},
		{"~/foo", filepath.Join(home, "foo")},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ExpandHome(tt.input)
			if got != tt.expected {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("SCHEDVIZ_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultPath(); got != "/tmp/xdg/schedviz/config.toml" {
		t.Errorf("DefaultPath = %q", got)
	}

	t.Setenv("SCHEDVIZ_CONFIG", "/etc/schedviz.toml")
	if got := DefaultPath(); got != "/etc/schedviz.toml" {
		t.Errorf("DefaultPath with SCHEDVIZ_CONFIG = %q", got)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Animation.Steps != 20 {
		t.Errorf("Steps = %d, want 20", cfg.Animation.Steps)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
theme = "dark"
default_quantum = 4

[animation]
steps = 10
entry_delay_ms = 100

[chart]
palette = ["#112233", "#445566"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != "dark" || cfg.DefaultQuantum != 4 {
		t.Errorf("theme=%s quantum=%d", cfg.Theme, cfg.DefaultQuantum)
	}
	if cfg.Animation.Steps != 10 || cfg.Animation.EntryDelayMS != 100 {
		t.Errorf("animation = %+v", cfg.Animation)
	}
	// Unset keys keep their defaults.
	if cfg.Animation.EntryDurationMS != 500 || cfg.Chart.MinUnitWidth != 50 {
		t.Errorf("defaults lost: %+v %+v", cfg.Animation, cfg.Chart)
	}
	if len(cfg.Chart.Palette) != 2 {
		t.Errorf("palette = %v", cfg.Chart.Palette)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SCHEDVIZ_THEME", "LIGHT")
	t.Setenv("SCHEDVIZ_QUANTUM", "5")
	t.Setenv("SCHEDVIZ_ANIMATE", "false")
	t.Setenv("SCHEDVIZ_ANIMATION_STEPS", "8")
	t.Setenv("SCHEDVIZ_ENTRY_DURATION_MS", "80")
	t.Setenv("SCHEDVIZ_ENTRY_DELAY_MS", "40")
	t.Setenv("SCHEDVIZ_MIN_UNIT_WIDTH", "30")
	t.Setenv("SCHEDVIZ_SERVE_ADDR", "127.0.0.1:9000")
	t.Setenv("SCHEDVIZ_MAX_HORIZON", "500")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != "light" || cfg.DefaultQuantum != 5 || cfg.Animation.Enabled {
		t.Errorf("cfg = %+v", cfg)
	}
	opts := cfg.AnimationOptions()
	if opts.Steps != 8 || opts.StepInterval() != 10*time.Millisecond || opts.EntryDelay != 40*time.Millisecond {
		t.Errorf("animation options = %+v", opts)
	}
	if cfg.ChartOptions().MinUnitWidth != 30 || cfg.Serve.Addr != "127.0.0.1:9000" {
		t.Errorf("chart/serve overrides not applied")
	}
	if cfg.MaxHorizon != 500 {
		t.Errorf("MaxHorizon = %d, want 500", cfg.MaxHorizon)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("theme = [\n"), 0644)
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("malformed toml err = %v", err)
	}

	t.Setenv("SCHEDVIZ_QUANTUM", "two")
	if _, err := Load(filepath.Join(dir, "none.toml")); err == nil {
		t.Error("non-numeric SCHEDVIZ_QUANTUM accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"theme", func(c *Config) { c.Theme = "neon" }},
		{"quantum", func(c *Config) { c.DefaultQuantum = 0 }},
		{"steps", func(c *Config) { c.Animation.Steps = 0 }},
		{"negative delay", func(c *Config) { c.Animation.EntryDelayMS = -1 }},
		{"unit width", func(c *Config) { c.Chart.MinUnitWidth = 0 }},
		{"band", func(c *Config) { c.Chart.BandTop = 100; c.Chart.BandBottom = 40 }},
		{"empty palette", func(c *Config) { c.Chart.Palette = nil }},
		{"palette color", func(c *Config) { c.Chart.Palette = []string{"cyan"} }},
		{"cells", func(c *Config) { c.Chart.CellsPerUnit = 0 }},
		{"background", func(c *Config) { c.Chart.DarkBackground = "#333" }},
		{"debounce", func(c *Config) { c.Watch.DebounceMS = -5 }},
		{"addr", func(c *Config) { c.Serve.Addr = " " }},
		{"ttl", func(c *Config) { c.Serve.CacheTTLSeconds = -1 }},
		{"max horizon", func(c *Config) { c.MaxHorizon = 0 }},
		{"request timeout", func(c *Config) { c.Serve.RequestTimeoutSeconds = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestPrint_ParsesBack(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(Default(), &buf); err != nil {
		t.Fatalf("Print: %v", err)
	}

	var got Config
	if _, err := toml.Decode(buf.String(), &got); err != nil {
		t.Fatalf("printed config does not parse: %v\n%s", err, buf.String())
	}
	want := Default()
	if got.Theme != want.Theme || got.MaxHorizon != want.MaxHorizon || got.Animation != want.Animation || got.Serve != want.Serve || got.Watch != want.Watch {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, *want)
	}
	if len(got.Chart.Palette) != len(want.Chart.Palette) {
		t.Errorf("palette = %v", got.Chart.Palette)
	}
}

func TestCreateDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	got, err := CreateDefault(path)
	if err != nil {
		t.Fatalf("CreateDefault: %v", err)
	}
	if got != path {
		t.Errorf("path = %s", got)
	}
	if _, err := CreateDefault(path); err == nil {
		t.Error("second CreateDefault should fail")
	}
	if _, err := Load(path); err != nil {
		t.Errorf("created config does not load: %v", err)
	}
}

func TestGetValue(t *testing.T) {
	cfg := Default()
	tests := []struct {
		path string
		want interface{}
	}{
		{"theme", "auto"},
		{"default_quantum", 2},
		{"animation.steps", 20},
		{"chart.min_unit_width", 50},
		{"watch.debounce_ms", 200},
		{"serve.addr", ":7338"},
		{"max_horizon", 2000},
		{"serve.request_timeout_seconds", 10},
	}
	for _, tt := range tests {
		got, err := GetValue(cfg, tt.path)
		if err != nil {
			t.Errorf("GetValue(%q): %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("GetValue(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if _, err := GetValue(cfg, "chart.nope"); err == nil {
		t.Error("unknown key accepted")
	}
	if _, err := GetValue(nil, "theme"); err == nil {
		t.Error("nil config accepted")
	}
}
