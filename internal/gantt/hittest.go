package gantt

import (
	"sort"

	"github.com/Dicklesworthstone/schedviz/internal/timeline"
)

// Tooltip is the hover payload for one interval.
type Tooltip struct {
	ProcessID string `json:"pid"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Burst     int    `json:"burst"`
}

// HitIndex resolves pixel positions to rendered intervals. It is rebuilt
// from scratch whenever the intervals change and never patched.
type HitIndex struct {
	intervals []RenderedInterval
	// ordered is true when intervals are sorted by X0 and do not overlap,
	// which allows a binary search.
	ordered bool
}

// NewHitIndex indexes a snapshot of intervals.
func NewHitIndex(intervals []RenderedInterval) *HitIndex {
	idx := &HitIndex{
		intervals: append([]RenderedInterval(nil), intervals...),
		ordered:   true,
	}
	for i := 1; i < len(idx.intervals); i++ {
		if idx.intervals[i].X0 < idx.intervals[i-1].X1 {
			idx.ordered = false
			break
		}
	}
	return idx
}

// Len returns the number of indexed intervals.
func (h *HitIndex) Len() int {
	return len(h.intervals)
}

// Lookup returns the interval containing (x, y).
func (h *HitIndex) Lookup(x, y float64) (RenderedInterval, bool) {
	if h == nil || len(h.intervals) == 0 {
		return RenderedInterval{}, false
	}
	if !h.ordered {
		for _, r := range h.intervals {
			if r.Contains(x, y) {
				return r, true
			}
		}
		return RenderedInterval{}, false
	}

	// First interval whose right edge lies beyond x.
	i := sort.Search(len(h.intervals), func(i int) bool {
		return h.intervals[i].X1 > x
	})
	if i < len(h.intervals) && h.intervals[i].Contains(x, y) {
		return h.intervals[i], true
	}
	return RenderedInterval{}, false
}

// Resolve turns a hit into a tooltip using the owning timeline's process
// record. It returns false if the process is unknown.
func Resolve(tl *timeline.Timeline, r RenderedInterval) (Tooltip, bool) {
	if r.Index < 0 || r.Index >= tl.Len() {
		return Tooltip{}, false
	}
	e := tl.At(r.Index)
	p, ok := tl.Process(e.ProcessID)
	if !ok {
		return Tooltip{}, false
	}
	return Tooltip{
		ProcessID: e.ProcessID,
		Start:     e.Start,
		End:       e.End,
		Burst:     p.Burst,
	}, true
}
