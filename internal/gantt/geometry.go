package gantt

import (
	"github.com/Dicklesworthstone/schedviz/internal/animation"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
)

// Band is the fixed vertical extent every bar is drawn in.
type Band struct {
	Top    float64
	Bottom float64
}

// DefaultBand returns the standard bar band.
func DefaultBand() Band {
	return Band{Top: DefaultBandTop, Bottom: DefaultBandBottom}
}

// RenderedInterval is the drawn rectangle of one timeline entry. Index refers
// back to the entry's position in the timeline.
type RenderedInterval struct {
	Index     int     `json:"index"`
	ProcessID string  `json:"pid"`
	Start     int     `json:"start"`
	End       int     `json:"end"`
	X0        float64 `json:"x0"`
	X1        float64 `json:"x1"`
	Y0        float64 `json:"y0"`
	Y1        float64 `json:"y1"`
	Color     string  `json:"color"`
	// Fraction is the revealed share of the entry, 1 for a complete bar.
	Fraction float64 `json:"fraction"`
}

// Contains reports whether (x, y) lies in the half-open rectangle
// [X0, X1) x [Y0, Y1].
func (r RenderedInterval) Contains(x, y float64) bool {
	return x >= r.X0 && x < r.X1 && y >= r.Y0 && y <= r.Y1
}

// Reveal describes how much of a timeline is visible: Count entries in full
// and entry Count grown to Partial.
type Reveal struct {
	Count   int
	Partial float64
}

// FullReveal shows every entry of tl.
func FullReveal(tl *timeline.Timeline) Reveal {
	return Reveal{Count: tl.Len()}
}

// RevealFromFrame converts animation progress to a reveal.
func RevealFromFrame(f animation.Frame) Reveal {
	if f.State == animation.Idle {
		return Reveal{}
	}
	return Reveal{Count: f.Index, Partial: f.Fraction}
}

// Build lays out the revealed entries of tl. Entries past the reveal are
// omitted; a partial entry is included only once it has grown.
func Build(tl *timeline.Timeline, legend *Legend, m Mapper, band Band, r Reveal) []RenderedInterval {
	count := r.Count
	if count > tl.Len() {
		count = tl.Len()
	}
	if count < 0 {
		count = 0
	}

	out := make([]RenderedInterval, 0, count+1)
	for i := 0; i < count; i++ {
		out = append(out, layout(tl.At(i), i, legend, m, band, 1))
	}
	if count < tl.Len() && r.Partial > 0 {
		frac := r.Partial
		if frac > 1 {
			frac = 1
		}
		out = append(out, layout(tl.At(count), count, legend, m, band, frac))
	}
	return out
}

func layout(e timeline.Entry, i int, legend *Legend, m Mapper, band Band, frac float64) RenderedInterval {
	x0, x1 := m.Bounds(e.Start, e.End)
	if frac < 1 {
		x1 = x0 + (x1-x0)*frac
	}
	return RenderedInterval{
		Index:     i,
		ProcessID: e.ProcessID,
		Start:     e.Start,
		End:       e.End,
		X0:        x0,
		X1:        x1,
		Y0:        band.Top,
		Y1:        band.Bottom,
		Color:     legend.Color(e.ProcessID),
		Fraction:  frac,
	}
}
