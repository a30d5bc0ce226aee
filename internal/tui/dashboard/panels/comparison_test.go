package panels

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/schedviz/internal/compare"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
	"github.com/Dicklesworthstone/schedviz/internal/tui/theme"
)

func sampleDataset(t *testing.T) *compare.Dataset {
	t.Helper()
	d, err := compare.RunComparison(context.Background(), []timeline.Process{
		{ID: "P1", Arrival: 0, Burst: 5, Priority: 2},
		{ID: "P2", Arrival: 1, Burst: 3, Priority: 1},
		{ID: "P3", Arrival: 2, Burst: 1, Priority: 3},
	}, 2)
	if err != nil {
		t.Fatalf("RunComparison: %v", err)
	}
	return d
}

func TestComparisonPanel_SetDataSelectsBest(t *testing.T) {
	panel := NewComparisonPanel(theme.DarkTheme())
	if _, ok := panel.Selected(); ok {
		t.Fatal("empty panel reported a selection")
	}

	panel.SetData(sampleDataset(t))
	sel, ok := panel.Selected()
	if !ok || sel.Algorithm != "SRTF" {
		t.Errorf("selected = %q, want best algorithm SRTF", sel.Algorithm)
	}
	t.Logf("COMPARISON_TEST: best=%s cursor=%d", sel.Algorithm, panel.cursor)
}

func TestComparisonPanel_CursorBounds(t *testing.T) {
	panel := NewComparisonPanel(theme.DarkTheme())
	panel.SetData(sampleDataset(t))
	panel.Focus()

	for i := 0; i < 10; i++ {
		panel.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if sel, _ := panel.Selected(); sel.Algorithm != "Priority-P" {
		t.Errorf("after down x10 selected %q", sel.Algorithm)
	}
	for i := 0; i < 10; i++ {
		panel.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	}
	if sel, _ := panel.Selected(); sel.Algorithm != "FCFS" {
		t.Errorf("after up x10 selected %q", sel.Algorithm)
	}
}

func TestComparisonPanel_Render(t *testing.T) {
	panel := NewComparisonPanel(theme.LightTheme())
	panel.SetSize(90, 20)

	if !strings.Contains(panel.View(), "No comparison yet") {
		t.Error("empty state not rendered")
	}

	panel.SetData(sampleDataset(t))
	view := panel.View()
	t.Logf("COMPARISON_TEST: View\n%s", view)

	for _, want := range []string{"ALGORITHM", "AVG WAIT", "★", "Priority-P", "SRTF: waiting vs turnaround", "CPU utilization 100.0%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if lines := strings.Count(view, "\n") + 1; lines != 20 {
		t.Errorf("view has %d lines, want 20", lines)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		v, scale, width int
		want            string
	}{
		{0, 8, 4, "░░░░"},
		{4, 8, 4, "██░░"},
		{8, 8, 4, "████"},
		{9, 8, 4, "████"},
		{3, 0, 2, "░░"},
	}
	for _, tt := range tests {
		if got := bar(tt.v, tt.scale, tt.width); got != tt.want {
			t.Errorf("bar(%d,%d,%d) = %q, want %q", tt.v, tt.scale, tt.width, got, tt.want)
		}
	}
}
