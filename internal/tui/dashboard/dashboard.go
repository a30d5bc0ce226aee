// Package dashboard provides the interactive chart and comparison dashboard.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/schedviz/internal/animation"
	"github.com/Dicklesworthstone/schedviz/internal/compare"
	"github.com/Dicklesworthstone/schedviz/internal/config"
	"github.com/Dicklesworthstone/schedviz/internal/gantt"
	"github.com/Dicklesworthstone/schedviz/internal/output"
	"github.com/Dicklesworthstone/schedviz/internal/sched"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
	"github.com/Dicklesworthstone/schedviz/internal/tui/dashboard/panels"
	"github.com/Dicklesworthstone/schedviz/internal/tui/theme"
	"github.com/Dicklesworthstone/schedviz/internal/watcher"
)

// Warnings shown in the status bar. None of them change state.
const (
	warnNoResults    = "No simulation results yet: press r to run one first"
	warnStatic       = "Animation is off for this chart (static mode)"
	warnNoComparison = "No comparison yet: press c to compare all algorithms"
)

// Rows above the active panel: title and status bar.
const chromeTop = 2

type viewMode int

const (
	viewChart viewMode = iota
	viewCompare
)

// Options configures a dashboard run.
type Options struct {
	// Path is the workload file; shown in the title and watched when Watcher is set.
	Path      string
	Processes []timeline.Process
	Quantum   int
	Algorithm string
	Animate   bool
	Config    *config.Config
	Watcher   *watcher.FileWatcher
}

// Model is the dashboard model
type Model struct {
	ctx    context.Context
	theme  theme.Theme
	keys   KeyMap
	help   help.Model
	runner *compare.Runner

	path       string
	procs      []timeline.Process
	quantum    int
	algos      []string
	algoIdx    int
	animate    bool
	chartOpts  gantt.Options
	watcher    *watcher.FileWatcher
	maxHorizon int

	// Open chart. The session exclusively owns its timers.
	session *gantt.Session
	timers  *TeaTimers

	chart      *panels.GanttPanel
	comparison *panels.ComparisonPanel
	view       viewMode

	runGen     int
	compareGen int

	width    int
	height   int
	warning  string
	err      error
	quitting bool
}

// KeyMap defines dashboard keybindings
type KeyMap struct {
	Toggle  key.Binding
	Start   key.Binding
	Stop    key.Binding
	Skip    key.Binding
	Run     key.Binding
	NextAlg key.Binding
	Compare key.Binding
	Switch  key.Binding
	Help    key.Binding
	Quit    key.Binding

	// Panel holds the focused panel's bindings.
	Panel []key.Binding
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Stop, k.NextAlg, k.Compare, k.Switch, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap. The focused panel's keys get their own
// column.
func (k KeyMap) FullHelp() [][]key.Binding {
	groups := [][]key.Binding{
		{k.Toggle, k.Start, k.Stop, k.Skip},
		{k.Run, k.NextAlg, k.Compare, k.Switch},
	}
	if len(k.Panel) > 0 {
		groups = append(groups, k.Panel)
	}
	return append(groups, []key.Binding{k.Help, k.Quit})
}

// panelKeys collects the bindings a panel advertises.
func panelKeys(p panels.Panel) []key.Binding {
	kbs := p.Keybindings()
	keys := make([]key.Binding, len(kbs))
	for i, kb := range kbs {
		keys[i] = kb.Key
	}
	return keys
}

var dashKeys = KeyMap{
	Toggle:  key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "play/pause")),
	Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "replay")),
	Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
	Skip:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "finish entry")),
	Run:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run")),
	NextAlg: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "next algorithm")),
	Compare: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compare")),
	Switch:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "chart/compare")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// New creates a dashboard. The first simulation starts from Init.
func New(ctx context.Context, opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	t := theme.ResolveWithBackgrounds(cfg.Theme, cfg.Chart.LightBackground, cfg.Chart.DarkBackground)

	quantum := opts.Quantum
	if quantum < 1 {
		quantum = cfg.DefaultQuantum
	}

	algos := sched.Names()
	idx := 0
	if opts.Algorithm != "" {
		if alg, err := sched.ByName(opts.Algorithm, quantum); err == nil {
			for i, name := range algos {
				if a, _ := sched.ByName(name, quantum); a.Name() == alg.Name() {
					idx = i
				}
			}
		}
	}

	chartOpts := cfg.ChartOptions()
	chart := panels.NewGanttPanel(t, cfg.Chart.CellsPerUnit, chartOpts.MinUnitWidth)

	m := Model{
		ctx:        ctx,
		theme:      t,
		keys:       dashKeys,
		help:       help.New(),
		runner:     compare.NewRunner(cfg.CacheTTL()),
		path:       opts.Path,
		procs:      sched.Clone(opts.Processes),
		quantum:    quantum,
		algos:      algos,
		algoIdx:    idx,
		animate:    opts.Animate,
		chartOpts:  chartOpts,
		watcher:    opts.Watcher,
		maxHorizon: cfg.MaxHorizon,
		chart:      chart,
		comparison: panels.NewComparisonPanel(t),
		runGen:     1,
		width:      80,
		height:     24,
	}
	m.setView(viewChart)
	m.layout()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		runCmd(m.runGen, m.algorithm(), m.quantum, m.procs),
		waitForChange(m.ctx, m.watcher, m.maxHorizon),
	)
}

func (m Model) algorithm() string {
	return m.algos[m.algoIdx]
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case TimerFiredMsg:
		if m.timers != nil && m.timers.Fire(msg) {
			return m, m.timers.Drain()
		}
		return m, nil

	case RunResultMsg:
		if msg.Gen != m.runGen {
			return m, nil
		}
		if msg.Err != nil {
			slog.Warn("simulation failed", "algorithm", m.algorithm(), "error", msg.Err)
			m.closeChart()
			m.err = msg.Err
			m.chart.SetError(msg.Err)
			return m, nil
		}
		return m, m.openChart(msg.Result.Algorithm, msg.Timeline)

	case ComparisonMsg:
		if msg.Gen != m.compareGen {
			return m, nil
		}
		if msg.Err != nil {
			slog.Warn("comparison failed", "error", msg.Err)
			m.warning = "Comparison failed: " + msg.Err.Error()
			return m, nil
		}
		m.comparison.SetData(msg.Dataset)
		m.setView(viewCompare)
		return m, nil

	case WorkloadChangedMsg:
		next := waitForChange(m.ctx, m.watcher, m.maxHorizon)
		if msg.Err != nil {
			slog.Warn("workload reload failed", "path", msg.Path, "error", msg.Err)
			m.warning = "Reload failed: " + msg.Err.Error()
			return m, next
		}
		slog.Info("workload reloaded", "path", msg.Path, "processes", len(msg.Workload.Processes))
		m.procs = msg.Workload.Processes
		m.quantum = msg.Workload.QuantumOr(m.quantum)
		m.comparison.SetData(nil)
		m.setView(viewChart)
		m.warning = fmt.Sprintf("Reloaded %s (%s)", filepath.Base(msg.Path), output.CountStr(len(m.procs), "process", "processes"))
		m.runGen++
		return m, tea.Batch(runCmd(m.runGen, m.algorithm(), m.quantum, m.procs), next)

	case tea.MouseMsg:
		if m.view == viewChart {
			msg.Y -= chromeTop
			m.chart.Update(msg)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.warning = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.closeChart()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()

	case key.Matches(msg, m.keys.Toggle):
		if m.requireAnimation() {
			m.session.Toggle()
			return m, m.timers.Drain()
		}

	case key.Matches(msg, m.keys.Start):
		if m.requireAnimation() {
			m.session.Start()
			return m, m.timers.Drain()
		}

	case key.Matches(msg, m.keys.Stop):
		if m.requireAnimation() {
			m.session.Stop()
		}

	case key.Matches(msg, m.keys.Skip):
		if m.requireAnimation() {
			m.session.Skip()
			return m, m.timers.Drain()
		}

	case key.Matches(msg, m.keys.Run):
		m.runGen++
		return m, runCmd(m.runGen, m.algorithm(), m.quantum, m.procs)

	case key.Matches(msg, m.keys.NextAlg):
		m.algoIdx = (m.algoIdx + 1) % len(m.algos)
		m.runGen++
		return m, runCmd(m.runGen, m.algorithm(), m.quantum, m.procs)

	case key.Matches(msg, m.keys.Compare):
		m.compareGen++
		return m, compareCmd(m.ctx, m.compareGen, m.runner, m.quantum, m.procs)

	case key.Matches(msg, m.keys.Switch):
		if m.view == viewCompare {
			m.setView(viewChart)
		} else if m.comparison.Data() == nil {
			m.warning = warnNoComparison
		} else {
			m.setView(viewCompare)
		}

	default:
		if m.view == viewChart {
			m.chart.Update(msg)
		} else {
			m.comparison.Update(msg)
		}
	}

	return m, nil
}

// requireAnimation reports whether an animated chart is open, setting a
// warning otherwise.
func (m *Model) requireAnimation() bool {
	switch {
	case m.session == nil:
		m.warning = warnNoResults
		return false
	case !m.session.Animated():
		m.warning = warnStatic
		return false
	}
	return true
}

// openChart replaces the current chart. The old session is closed first so
// none of its callbacks can fire against the new one.
func (m *Model) openChart(algorithm string, tl *timeline.Timeline) tea.Cmd {
	m.closeChart()

	timers := NewTeaTimers()
	s, err := gantt.Open(m.chartOpts, algorithm, tl, timers, m.animate)
	if err != nil {
		slog.Warn("chart not opened", "algorithm", algorithm, "error", err)
		m.err = err
		m.chart.SetError(err)
		return nil
	}

	m.session, m.timers, m.err = s, timers, nil
	m.chart.SetSession(s)
	m.setView(viewChart)
	return timers.Drain()
}

func (m *Model) closeChart() {
	if m.session != nil {
		m.session.Close()
	}
	m.session, m.timers = nil, nil
	m.chart.SetSession(nil)
}

func (m *Model) setView(v viewMode) {
	m.view = v
	var focused, blurred panels.Panel = m.chart, m.comparison
	if v == viewCompare {
		focused, blurred = m.comparison, m.chart
	}
	focused.Focus()
	blurred.Blur()
	m.keys.Panel = panelKeys(focused)
}

func (m *Model) layout() {
	helpHeight := lipgloss.Height(m.help.View(m.keys))
	h := m.height - chromeTop - helpHeight
	if h < 3 {
		h = 3
	}
	m.chart.SetSize(m.width, h)
	m.comparison.SetSize(m.width, h)
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTitle() + "\n")
	b.WriteString(m.renderStatusBar() + "\n")
	if m.view == viewCompare {
		b.WriteString(m.comparison.View())
	} else {
		b.WriteString(m.chart.View())
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m Model) renderTitle() string {
	t := m.theme
	name := "schedviz"
	if m.path != "" {
		name += " · " + filepath.Base(m.path)
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Render(name)
	meta := lipgloss.NewStyle().Foreground(t.Subtext).Render(
		fmt.Sprintf("  %d processes · quantum %d · %s", len(m.procs), m.quantum, m.algorithm()))
	return title + meta
}

func (m Model) renderStatusBar() string {
	t := m.theme

	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	var parts []string

	label, color := stateLabel(m.session, t)
	parts = append(parts, badge.Background(color).Foreground(t.Base).Render(label))

	if m.session != nil {
		f := m.session.Frame()
		total := m.session.Timeline().Len()
		shown := f.Index
		if f.Fraction > 0 && shown < total {
			shown++
		}
		if f.State == animation.Idle {
			shown = 0
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Subtext).Render(
			fmt.Sprintf("%s · entry %d/%d", m.session.Algorithm(), shown, total)))
	}

	switch {
	case m.err != nil:
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Red).Render("✗ "+m.err.Error()))
	case m.warning != "":
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Yellow).Render("⚠ "+m.warning))
	}

	return strings.Join(parts, "  ")
}

// stateLabel returns the play-state badge for the status bar.
func stateLabel(s *gantt.Session, t theme.Theme) (string, lipgloss.Color) {
	if s == nil {
		return "… Waiting", t.Overlay
	}
	switch s.State() {
	case animation.Playing:
		return "▶ Playing", t.Green
	case animation.Paused:
		return "⏸ Paused", t.Yellow
	case animation.Finished:
		return "✓ Finished", t.Primary
	default:
		return "■ Stopped", t.Overlay
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Watcher != nil {
		if err := opts.Watcher.Start(ctx); err != nil {
			return fmt.Errorf("watch %s: %w", opts.Path, err)
		}
		defer opts.Watcher.Stop()
	}

	model := New(ctx, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.closeChart()
	}
	return err
}
