package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/Dicklesworthstone/schedviz/internal/compare"
	"github.com/Dicklesworthstone/schedviz/internal/output"
	"github.com/Dicklesworthstone/schedviz/internal/tui/theme"
)

// comparisonConfig returns the configuration for the comparison panel
func comparisonConfig() PanelConfig {
	return PanelConfig{
		ID:        "comparison",
		Title:     "Algorithm Comparison",
		MinWidth:  40,
		MinHeight: 12,
	}
}

// ComparisonPanel shows the metric table of a comparison dataset and, for the
// selected algorithm, per-process waiting and turnaround bars.
type ComparisonPanel struct {
	PanelBase
	theme  theme.Theme
	data   *compare.Dataset
	cursor int
}

// NewComparisonPanel creates an empty comparison panel
func NewComparisonPanel(th theme.Theme) *ComparisonPanel {
	return &ComparisonPanel{
		PanelBase: NewPanelBase(comparisonConfig()),
		theme:     th,
	}
}

// SetData replaces the dataset and selects the best algorithm.
func (m *ComparisonPanel) SetData(d *compare.Dataset) {
	m.data = d
	m.cursor = 0
	if d == nil {
		return
	}
	best := d.Best()
	for i, name := range d.Algorithms() {
		if name == best {
			m.cursor = i
		}
	}
}

// Data returns the displayed dataset, or nil.
func (m *ComparisonPanel) Data() *compare.Dataset {
	return m.data
}

// Selected returns the highlighted row.
func (m *ComparisonPanel) Selected() (compare.Result, bool) {
	if m.data == nil || m.data.Len() == 0 {
		return compare.Result{}, false
	}
	return m.data.At(m.cursor), true
}

// Init implements tea.Model
func (m *ComparisonPanel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *ComparisonPanel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.IsFocused() || m.data == nil {
		return m, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < m.data.Len()-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

// Keybindings returns comparison panel specific shortcuts
func (m *ComparisonPanel) Keybindings() []Keybinding {
	return []Keybinding{
		{
			Key:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev algorithm")),
			Description: "Select previous algorithm",
			Action:      "prev_algorithm",
		},
		{
			Key:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next algorithm")),
			Description: "Select next algorithm",
			Action:      "next_algorithm",
		},
	}
}

// View implements tea.Model
func (m *ComparisonPanel) View() string {
	t := m.theme
	w, h := m.Width(), m.Height()

	borderColor := t.Surface1
	if m.IsFocused() {
		borderColor = t.Primary
	}
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(w-2).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Lavender).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(t.Surface1).
		Width(w - 4).
		Align(lipgloss.Center)

	var content strings.Builder
	content.WriteString(headerStyle.Render(m.Config().Title) + "\n")

	if m.data == nil || m.data.Len() == 0 {
		muted := lipgloss.NewStyle().Foreground(t.Overlay).Italic(true)
		content.WriteString("\n" + muted.Render("No comparison yet. Press c to compare all algorithms."))
		return boxStyle.Render(FitToHeight(content.String(), h-2))
	}

	width := w - 4
	content.WriteString(m.renderTable(width) + "\n")
	content.WriteString(m.renderProcessBars(width))

	return boxStyle.Render(FitToHeight(content.String(), h-2))
}

func (m *ComparisonPanel) renderTable(width int) string {
	t := m.theme
	var buf strings.Builder
	table := output.NewTable(&buf, "", "ALGORITHM", "AVG WAIT", "AVG TAT", "CPU %", "THROUGHPUT")
	best := m.data.Best()
	for _, r := range m.data.Rows() {
		mark := ""
		if r.Algorithm == best {
			mark = "★"
		}
		table.AddRow(mark, r.Algorithm,
			fmt.Sprintf("%.2f", r.Metrics.AverageWaiting),
			fmt.Sprintf("%.2f", r.Metrics.AverageTurnaround),
			fmt.Sprintf("%.1f", r.Metrics.CPUUtilization),
			fmt.Sprintf("%.3f", r.Metrics.Throughput))
	}
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	selected := lipgloss.NewStyle().Background(t.Surface0).Foreground(t.Text).Bold(true)
	head := lipgloss.NewStyle().Foreground(t.Subtext).Bold(true)
	for i, line := range lines {
		line = truncate.StringWithTail(line, uint(width), "…")
		switch {
		case i < 2:
			lines[i] = head.Render(line)
		case i-2 == m.cursor:
			lines[i] = selected.Render(runewidth.FillRight(line, width))
		default:
			lines[i] = line
		}
	}
	return strings.Join(lines, "\n")
}

// renderProcessBars draws waiting and turnaround per process for the selected
// algorithm, scaled to the largest turnaround.
func (m *ComparisonPanel) renderProcessBars(width int) string {
	t := m.theme
	r, _ := m.Selected()

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.Lavender).Bold(true).
		Render(r.Algorithm+": waiting vs turnaround") + "\n")

	labelWidth := 0
	scale := 1
	for _, p := range r.Processes {
		labelWidth = max(labelWidth, runewidth.StringWidth(p.ID))
		scale = max(scale, p.Turnaround)
	}
	// label, two prefixes, two values
	barWidth := (width - labelWidth - 16) / 2
	if barWidth < 4 {
		barWidth = 4
	}

	wait := lipgloss.NewStyle().Foreground(t.Yellow)
	tat := lipgloss.NewStyle().Foreground(t.Primary)
	for _, p := range r.Processes {
		b.WriteString(runewidth.FillRight(p.ID, labelWidth) + " ")
		b.WriteString("W " + wait.Render(bar(p.Waiting, scale, barWidth)) + fmt.Sprintf(" %3d ", p.Waiting))
		b.WriteString("T " + tat.Render(bar(p.Turnaround, scale, barWidth)) + fmt.Sprintf(" %3d", p.Turnaround))
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Foreground(t.Overlay).Italic(true).Render(
		fmt.Sprintf("CPU utilization %.1f%% · throughput %.3f/unit",
			r.Metrics.CPUUtilization, r.Metrics.Throughput)))
	return b.String()
}

// bar renders v/scale of width as filled blocks over a light track.
func bar(v, scale, width int) string {
	filled := 0
	if scale > 0 {
		filled = v * width / scale
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
