package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"

	"github.com/Dicklesworthstone/schedviz/internal/tui/theme"
)

// StyledTable renders terminal tables with rounded box-drawing borders
type StyledTable struct {
	theme   theme.Theme
	headers []string
	rows    [][]string
	widths  []int
	title   string
	footer  string
}

// NewStyledTable creates a new styled table with headers
func NewStyledTable(th theme.Theme, headers ...string) *StyledTable {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runeWidth(h)
	}
	return &StyledTable{
		theme:   th,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
	}
}

// WithTitle adds a title to the table
func (t *StyledTable) WithTitle(title string) *StyledTable {
	t.title = title
	return t
}

// WithFooter adds a footer to the table
func (t *StyledTable) WithFooter(footer string) *StyledTable {
	t.footer = footer
	return t
}

// AddRow adds a row to the table
func (t *StyledTable) AddRow(cols ...string) {
	for i, c := range cols {
		if i < len(t.widths) {
			w := runeWidth(c)
			if w > t.widths[i] {
				t.widths[i] = w
			}
		}
	}
	t.rows = append(t.rows, cols)
}

// RowCount returns the number of rows
func (t *StyledTable) RowCount() int {
	return len(t.rows)
}

// Render returns the table as a styled string
func (t *StyledTable) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	th := t.theme
	var sb strings.Builder

	borderColor := lipgloss.NewStyle().Foreground(th.Surface1)
	headerColor := lipgloss.NewStyle().Foreground(th.Primary).Bold(true)
	textColor := lipgloss.NewStyle().Foreground(th.Text)
	subtextColor := lipgloss.NewStyle().Foreground(th.Subtext)

	buildHLine := func(left, mid, right string) string {
		var line strings.Builder
		line.WriteString(borderColor.Render(left))
		for i, w := range t.widths {
			line.WriteString(borderColor.Render(strings.Repeat("─", w+2)))
			if i < len(t.widths)-1 {
				line.WriteString(borderColor.Render(mid))
			}
		}
		line.WriteString(borderColor.Render(right))
		return line.String()
	}
	writeRow := func(cols []string, style lipgloss.Style) {
		sb.WriteString(borderColor.Render("│"))
		for i := range t.headers {
			var cell string
			if i < len(cols) {
				cell = cols[i]
			}
			sb.WriteString(" ")
			sb.WriteString(style.Render(padRight(cell, t.widths[i])))
			sb.WriteString(" ")
			sb.WriteString(borderColor.Render("│"))
		}
		sb.WriteString("\n")
	}

	if t.title != "" {
		sb.WriteString(headerColor.Render(t.title))
		sb.WriteString("\n")
	}

	sb.WriteString(buildHLine("╭", "┬", "╮"))
	sb.WriteString("\n")
	writeRow(t.headers, headerColor)
	sb.WriteString(buildHLine("├", "┼", "┤"))
	sb.WriteString("\n")
	for _, row := range t.rows {
		writeRow(row, textColor)
	}
	sb.WriteString(buildHLine("╰", "┴", "╯"))
	sb.WriteString("\n")

	if t.footer != "" {
		sb.WriteString(subtextColor.Render(t.footer))
		sb.WriteString("\n")
	}

	return sb.String()
}

// String implements fmt.Stringer
func (t *StyledTable) String() string {
	return t.Render()
}

// runeWidth returns the display width of a string, ignoring ANSI sequences
func runeWidth(s string) int {
	return ansi.PrintableRuneWidth(s)
}

// padRight pads a string to the specified width
func padRight(s string, width int) string {
	currentWidth := runeWidth(s)
	if currentWidth >= width {
		return s
	}
	return s + strings.Repeat(" ", width-currentWidth)
}

// KeyValue renders a key-value pair with consistent styling
func KeyValue(th theme.Theme, key, value string, keyWidth int) string {
	keyStyle := lipgloss.NewStyle().Foreground(th.Subtext)
	valueStyle := lipgloss.NewStyle().Foreground(th.Text)

	paddedKey := fmt.Sprintf("%-*s", keyWidth, key+":")
	return keyStyle.Render(paddedKey) + " " + valueStyle.Render(value)
}

// SuccessMessage renders a success message with icon
func SuccessMessage(th theme.Theme, msg string) string {
	return lipgloss.NewStyle().Foreground(th.Green).Render("✓ " + msg)
}
