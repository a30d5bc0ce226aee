// Package gantt turns a timeline into chart geometry: process colors, the
// time-to-pixel mapping, the revealed interval rectangles, and the hit-test
// index used for hover tooltips. A Session ties these to one animation.
package gantt

// DefaultPalette is the cyclic process palette.
var DefaultPalette = []string{
	"#00D4FF",
	"#FF2E63",
	"#AB47BC",
	"#FFCA28",
	"#66BB6A",
}

// LegendEntry pairs a process with its assigned color.
type LegendEntry struct {
	ProcessID string `json:"pid"`
	Color     string `json:"color"`
}

// Legend is an ordered color assignment built once per chart. The process
// at first-seen position i gets palette[i mod len(palette)].
type Legend struct {
	entries []LegendEntry
	index   map[string]int
}

// NewLegend assigns colors to ids in order, skipping repeats. An empty
// palette falls back to DefaultPalette.
func NewLegend(ids []string, palette []string) *Legend {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	l := &Legend{index: make(map[string]int, len(ids))}
	for _, id := range ids {
		if _, seen := l.index[id]; seen {
			continue
		}
		pos := len(l.entries)
		l.index[id] = pos
		l.entries = append(l.entries, LegendEntry{
			ProcessID: id,
			Color:     palette[pos%len(palette)],
		})
	}
	return l
}

// Color returns the color for id, or "" if id was never assigned.
func (l *Legend) Color(id string) string {
	pos, ok := l.index[id]
	if !ok {
		return ""
	}
	return l.entries[pos].Color
}

// Entries returns the assignment in first-seen order.
func (l *Legend) Entries() []LegendEntry {
	return append([]LegendEntry(nil), l.entries...)
}

// Len returns the number of distinct processes.
func (l *Legend) Len() int {
	return len(l.entries)
}
