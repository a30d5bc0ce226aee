package panels

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"

	"github.com/Dicklesworthstone/schedviz/internal/gantt"
	"github.com/Dicklesworthstone/schedviz/internal/tui/theme"
)

// Panel-local layout of the chart. Bars start below the border, the two
// header lines and the legend.
const (
	ganttInsetX   = 2 // border + padding
	ganttBarRow   = 4
	ganttBarRows  = 2
	ganttEndSlack = 3 // room for the last axis label
)

// ganttConfig returns the configuration for the chart panel
func ganttConfig() PanelConfig {
	return PanelConfig{
		ID:        "gantt",
		Title:     "Gantt Chart",
		MinWidth:  24,
		MinHeight: 10,
	}
}

// GanttPanel draws a chart session as terminal cells. Every time unit spans
// at least cellsPerUnit columns; the chart stretches to fill wider panels.
type GanttPanel struct {
	PanelBase
	theme   theme.Theme
	session *gantt.Session
	err     error

	cellsPerUnit int
	pxPerCell    float64
	scroll       int
	hover        *gantt.Tooltip
}

// NewGanttPanel creates a chart panel. minUnitWidth is the chart's minimum
// pixels per time unit and fixes the pixel width of one column.
func NewGanttPanel(th theme.Theme, cellsPerUnit int, minUnitWidth float64) *GanttPanel {
	if cellsPerUnit < 1 {
		cellsPerUnit = 1
	}
	if minUnitWidth <= 0 {
		minUnitWidth = gantt.DefaultMinUnitWidth
	}
	return &GanttPanel{
		PanelBase:    NewPanelBase(ganttConfig()),
		theme:        th,
		cellsPerUnit: cellsPerUnit,
		pxPerCell:    minUnitWidth / float64(cellsPerUnit),
	}
}

// SetSession replaces the displayed session. The caller keeps ownership and
// is responsible for closing the previous one.
func (m *GanttPanel) SetSession(s *gantt.Session) {
	m.session = s
	m.scroll = 0
	m.hover = nil
	m.err = nil
	m.fit()
}

// Session returns the displayed session, or nil.
func (m *GanttPanel) Session() *gantt.Session {
	return m.session
}

// SetError shows err in place of the chart until the next SetSession.
func (m *GanttPanel) SetError(err error) {
	m.err = err
}

// HasError returns true if there's an active error
func (m *GanttPanel) HasError() bool {
	return m.err != nil
}

// SetSize resizes the panel and rebuilds the chart geometry for the new
// width. Animation progress is untouched.
func (m *GanttPanel) SetSize(width, height int) {
	m.PanelBase.SetSize(width, height)
	m.fit()
}

// Scroll returns the first visible column.
func (m *GanttPanel) Scroll() int {
	return m.scroll
}

// Tooltip returns the hovered entry, if any.
func (m *GanttPanel) Tooltip() (gantt.Tooltip, bool) {
	if m.hover == nil {
		return gantt.Tooltip{}, false
	}
	return *m.hover, true
}

// Init implements tea.Model
func (m *GanttPanel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. Mouse positions must already be relative to
// the panel's top-left corner.
func (m *GanttPanel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.HoverAt(msg.X, msg.Y)
	case tea.KeyMsg:
		if !m.IsFocused() {
			return m, nil
		}
		switch msg.String() {
		case "left", "h":
			m.ScrollBy(-m.cellsPerUnit)
		case "right", "l":
			m.ScrollBy(m.cellsPerUnit)
		case "home", "g":
			m.ScrollBy(-m.scroll)
		case "end", "G":
			m.ScrollBy(m.maxScroll())
		}
	}
	return m, nil
}

// Keybindings returns chart panel specific shortcuts
func (m *GanttPanel) Keybindings() []Keybinding {
	return []Keybinding{
		{
			Key:         key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "scroll back")),
			Description: "Scroll back one time unit",
			Action:      "scroll_back",
		},
		{
			Key:         key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "scroll forward")),
			Description: "Scroll forward one time unit",
			Action:      "scroll_forward",
		},
		{
			Key:         key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "start")),
			Description: "Jump to time zero",
			Action:      "scroll_start",
		},
		{
			Key:         key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "end")),
			Description: "Jump to the end of the chart",
			Action:      "scroll_end",
		},
	}
}

// ScrollBy moves the viewport by delta columns, clamped to the chart.
func (m *GanttPanel) ScrollBy(delta int) {
	m.scroll += delta
	m.clampScroll()
}

// HoverAt resolves a panel-local cell to the entry drawn there. The result
// is also kept for the info line.
func (m *GanttPanel) HoverAt(col, row int) (gantt.Tooltip, bool) {
	m.hover = nil
	x, y, ok := m.chartPoint(col, row)
	if !ok {
		return gantt.Tooltip{}, false
	}
	tip, ok := m.session.Hover(x, y)
	if ok {
		m.hover = &tip
	}
	return tip, ok
}

// chartPoint maps the center of a panel cell to chart pixels.
func (m *GanttPanel) chartPoint(col, row int) (float64, float64, bool) {
	if m.session == nil {
		return 0, 0, false
	}
	c, r := col-ganttInsetX, row-ganttBarRow
	if c < 0 || c >= m.viewCols() || r < 0 || r >= ganttBarRows {
		return 0, 0, false
	}
	band := m.session.Band()
	x := (float64(m.scroll+c) + 0.5) * m.pxPerCell
	y := band.Top + (float64(r)+0.5)/ganttBarRows*(band.Bottom-band.Top)
	return x, y, true
}

func (m *GanttPanel) viewCols() int {
	if c := m.Width() - 2*ganttInsetX; c > 0 {
		return c
	}
	return 1
}

func (m *GanttPanel) fit() {
	if m.session == nil || m.Width() == 0 {
		return
	}
	cols := m.viewCols() - ganttEndSlack
	if cols < 1 {
		cols = 1
	}
	m.session.Resize(float64(cols) * m.pxPerCell)
	m.clampScroll()
}

func (m *GanttPanel) totalCols() int {
	if m.session == nil {
		return 0
	}
	return m.col(m.session.Mapper().Width())
}

func (m *GanttPanel) maxScroll() int {
	if n := m.totalCols() + ganttEndSlack - m.viewCols(); n > 0 {
		return n
	}
	return 0
}

func (m *GanttPanel) clampScroll() {
	if m.scroll > m.maxScroll() {
		m.scroll = m.maxScroll()
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

func (m *GanttPanel) col(x float64) int {
	return int(math.Round(x / m.pxPerCell))
}

// View implements tea.Model
func (m *GanttPanel) View() string {
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

	title := m.Config().Title
	if m.session != nil {
		title += " · " + m.session.Algorithm()
	}
	if m.err != nil {
		errorBadge := lipgloss.NewStyle().
			Background(t.Red).
			Foreground(t.Base).
			Bold(true).
			Padding(0, 1).
			Render("⚠ Error")
		title = title + " " + errorBadge
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Lavender).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(t.Surface1).
		Width(w - 4).
		Align(lipgloss.Center)

	var content strings.Builder
	content.WriteString(headerStyle.Render(title) + "\n")

	muted := lipgloss.NewStyle().Foreground(t.Overlay).Italic(true)
	switch {
	case m.err != nil:
		content.WriteString(lipgloss.NewStyle().Foreground(t.Red).Render(m.err.Error()) + "\n")
		content.WriteString(muted.Render("Press r to run again"))
		return boxStyle.Render(FitToHeight(content.String(), h-2))
	case m.session == nil:
		content.WriteString("\n" + muted.Render("No chart open. Press r to run a simulation."))
		return boxStyle.Render(FitToHeight(content.String(), h-2))
	}

	width := m.viewCols()
	intervals := m.session.Intervals()
	cells := m.cells(intervals)

	content.WriteString(m.renderLegend(width) + "\n")
	top, bottom := m.renderBars(intervals, cells, width)
	content.WriteString(top + "\n" + bottom + "\n")
	ticks, labels := m.renderAxis(width)
	content.WriteString(ticks + "\n" + labels + "\n")
	content.WriteString(m.renderInfo(width))

	return boxStyle.Render(FitToHeight(content.String(), h-2))
}

// cells assigns every chart column the index of the interval covering it,
// or -1 where the CPU is idle or nothing is revealed yet.
func (m *GanttPanel) cells(intervals []gantt.RenderedInterval) []int {
	cells := make([]int, m.totalCols())
	for i := range cells {
		cells[i] = -1
	}
	for i, r := range intervals {
		c0, c1 := m.col(r.X0), m.col(r.X1)
		if c0 < 0 {
			c0 = 0
		}
		for c := c0; c < c1 && c < len(cells); c++ {
			cells[c] = i
		}
	}
	return cells
}

func (m *GanttPanel) renderLegend(width int) string {
	parts := make([]string, 0, m.session.Legend().Len())
	for _, e := range m.session.Legend().Entries() {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("■")
		parts = append(parts, swatch+" "+e.ProcessID)
	}
	return truncate.StringWithTail(strings.Join(parts, "  "), uint(width), "…")
}

// renderBars returns the label row and the plain row of the bar band.
func (m *GanttPanel) renderBars(intervals []gantt.RenderedInterval, cells []int, width int) (string, string) {
	var top, bottom strings.Builder
	surface := lipgloss.NewStyle().Background(m.theme.Background)

	end := m.scroll + width
	if end > len(cells) {
		end = len(cells)
	}
	for c := m.scroll; c < end; {
		run := c
		for run < end && cells[run] == cells[c] {
			run++
		}
		n := run - c
		if cells[c] < 0 {
			top.WriteString(surface.Render(strings.Repeat(" ", n)))
			bottom.WriteString(surface.Render(strings.Repeat(" ", n)))
		} else {
			iv := intervals[cells[c]]
			bar := lipgloss.NewStyle().
				Background(lipgloss.Color(iv.Color)).
				Foreground(labelColor(iv.Color))
			top.WriteString(bar.Render(centerLabel(iv.ProcessID, n)))
			bottom.WriteString(bar.Render(strings.Repeat(" ", n)))
		}
		c = run
	}
	if drawn := end - m.scroll; drawn < width {
		pad := strings.Repeat(" ", width-max(drawn, 0))
		top.WriteString(pad)
		bottom.WriteString(pad)
	}
	return top.String(), bottom.String()
}

// renderAxis draws a tick under every time unit. A label is dropped when it
// would run into the previous one.
func (m *GanttPanel) renderAxis(width int) (string, string) {
	ticks := []rune(strings.Repeat("─", width))
	labels := []rune(strings.Repeat(" ", width))
	next := 0
	for _, tk := range m.session.Mapper().Ticks() {
		c := m.col(tk.X) - m.scroll
		if c < 0 || c >= width {
			continue
		}
		ticks[c] = '┬'
		label := strconv.Itoa(tk.Time)
		if c < next || c+len(label) > width {
			continue
		}
		copy(labels[c:], []rune(label))
		next = c + len(label) + 1
	}
	style := lipgloss.NewStyle().Foreground(m.theme.Overlay)
	return style.Render(string(ticks)), style.Render(string(labels))
}

func (m *GanttPanel) renderInfo(width int) string {
	t := m.theme
	if m.hover != nil {
		tip := fmt.Sprintf("%s  start %d  end %d  burst %d",
			m.hover.ProcessID, m.hover.Start, m.hover.End, m.hover.Burst)
		return lipgloss.NewStyle().Foreground(t.Lavender).Bold(true).
			Render(truncate.StringWithTail(tip, uint(width), "…"))
	}

	tl := m.session.Timeline()
	info := fmt.Sprintf("%d entries · duration %d", tl.Len(), tl.Duration())
	if total := m.totalCols(); total > width {
		end := m.scroll + width
		if end > total {
			end = total
		}
		info += fmt.Sprintf(" · cols %d-%d of %d ←/→", m.scroll+1, end, total)
	}
	return lipgloss.NewStyle().Foreground(t.Overlay).Italic(true).
		Render(truncate.StringWithTail(info, uint(width), "…"))
}

// centerLabel centers label in n columns, truncating when it does not fit.
func centerLabel(label string, n int) string {
	if n <= 0 {
		return ""
	}
	if runewidth.StringWidth(label) > n {
		if n < 2 {
			return strings.Repeat(" ", n)
		}
		label = truncate.StringWithTail(label, uint(n), "…")
	}
	lw := runewidth.StringWidth(label)
	left := (n - lw) / 2
	return strings.Repeat(" ", left) + label + strings.Repeat(" ", n-lw-left)
}

// labelColor picks black or white text for a bar color.
func labelColor(hex string) lipgloss.Color {
	c := termenv.ConvertToRGB(termenv.RGBColor(hex))
	if 0.299*c.R+0.587*c.G+0.114*c.B > 0.5 {
		return lipgloss.Color("#000000")
	}
	return lipgloss.Color("#ffffff")
}
