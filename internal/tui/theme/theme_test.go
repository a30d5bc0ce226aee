package theme

import "testing"

func TestResolve(t *testing.T) {
	orig := hasDarkBackground
	defer func() { hasDarkBackground = orig }()

	tests := []struct {
		name string
		dark bool
		want Name
	}{
		{"light", true, Light},
		{"DARK", false, Dark},
		{" light ", true, Light},
		{"auto", true, Dark},
		{"auto", false, Light},
		{"", false, Light},
		{"neon", true, Dark},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasDarkBackground = func() bool { return tt.dark }
			got := Resolve(tt.name)
			t.Logf("THEME_TEST: Resolve(%q) dark=%v -> %s", tt.name, tt.dark, got.Name)
			if got.Name != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.name, got.Name, tt.want)
			}
		})
	}
}

func TestChartBackgrounds(t *testing.T) {
	if got := LightTheme().Background; got != "#e6f0ff" {
		t.Errorf("light background = %s", got)
	}
	if got := DarkTheme().Background; got != "#3c3f41" {
		t.Errorf("dark background = %s", got)
	}
	if got := DarkTheme().WithBackground("#000000").Background; got != "#000000" {
		t.Errorf("override = %s", got)
	}
	if got := DarkTheme().WithBackground("").Background; got != "#3c3f41" {
		t.Errorf("empty override changed background to %s", got)
	}
}

func TestResolveWithBackgrounds(t *testing.T) {
	if got := ResolveWithBackgrounds("light", "#ffffff", "#000000"); got.Background != "#ffffff" {
		t.Errorf("light background = %s", got.Background)
	}
	if got := ResolveWithBackgrounds("dark", "#ffffff", "#000000"); got.Background != "#000000" {
		t.Errorf("dark background = %s", got.Background)
	}
}
