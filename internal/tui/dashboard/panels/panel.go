package panels

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Keybinding represents a panel-specific keyboard shortcut.
type Keybinding struct {
	Key         key.Binding // The key binding
	Description string      // Human-readable description
	Action      string      // Action identifier for dispatch
}

// PanelConfig holds configuration for panel display.
type PanelConfig struct {
	// ID is a unique identifier for the panel (e.g., "gantt", "comparison")
	ID string

	// Title is the display title for the panel header
	Title string

	// MinWidth is the minimum width the panel needs to render properly
	MinWidth int

	// MinHeight is the minimum height the panel needs to render properly
	MinHeight int
}

// Panel defines a dashboard panel component.
// Embeds tea.Model for Bubble Tea integration and adds panel-specific methods.
type Panel interface {
	tea.Model

	// SetSize sets the panel dimensions for rendering
	SetSize(width, height int)

	// Focus marks the panel as focused (receives keyboard input)
	Focus()

	// Blur marks the panel as unfocused
	Blur()

	// Config returns the panel's configuration
	Config() PanelConfig

	// Keybindings returns panel-specific keyboard shortcuts.
	// These are active when the panel is focused.
	Keybindings() []Keybinding
}

var (
	_ Panel = (*GanttPanel)(nil)
	_ Panel = (*ComparisonPanel)(nil)
)

// PanelBase provides common functionality for panel implementations.
// Embed this in concrete panel types to get default implementations.
type PanelBase struct {
	config  PanelConfig
	width   int
	height  int
	focused bool
}

// NewPanelBase creates a new PanelBase with the given config.
func NewPanelBase(cfg PanelConfig) PanelBase {
	return PanelBase{config: cfg}
}

// SetSize implements Panel.SetSize
func (b *PanelBase) SetSize(width, height int) {
	b.width = width
	b.height = height
}

// Focus implements Panel.Focus
func (b *PanelBase) Focus() {
	b.focused = true
}

// Blur implements Panel.Blur
func (b *PanelBase) Blur() {
	b.focused = false
}

// Config implements Panel.Config
func (b *PanelBase) Config() PanelConfig {
	return b.config
}

// Keybindings returns empty keybindings by default.
func (b *PanelBase) Keybindings() []Keybinding {
	return nil
}

// IsFocused returns whether the panel is focused
func (b *PanelBase) IsFocused() bool {
	return b.focused
}

// Width returns the current panel width
func (b *PanelBase) Width() int {
	return b.width
}

// Height returns the current panel height
func (b *PanelBase) Height() int {
	return b.height
}

// FitToHeight ensures content exactly fills targetHeight lines,
// truncating if too long or padding if too short.
func FitToHeight(content string, targetHeight int) string {
	if targetHeight <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")

	if len(lines) > targetHeight {
		lines = lines[:targetHeight]
	}
	for len(lines) < targetHeight {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
