package gantt

// Chart layout defaults, in pixels.
const (
	DefaultMinWidth     = 1000
	DefaultMinUnitWidth = 50
	DefaultBandTop      = 40
	DefaultBandBottom   = 100
)

// Mapper converts time units to horizontal pixel positions. It is a pure
// function of duration and width.
type Mapper struct {
	duration int
	width    float64
	unit     float64
}

// NewMapper returns a mapper for a timeline of duration units drawn on a
// canvas at least minWidth wide. The canvas grows so that one unit is never
// narrower than minUnitWidth. A non-positive duration is treated as 1.
func NewMapper(duration int, minWidth, minUnitWidth float64) Mapper {
	if duration < 1 {
		duration = 1
	}
	if minWidth < 0 {
		minWidth = 0
	}
	if minUnitWidth < 0 {
		minUnitWidth = 0
	}
	width := minWidth
	if w := float64(duration) * minUnitWidth; w > width {
		width = w
	}
	if width == 0 {
		width = float64(duration)
	}
	return Mapper{
		duration: duration,
		width:    width,
		unit:     width / float64(duration),
	}
}

// Duration returns the mapped duration in time units.
func (m Mapper) Duration() int {
	return m.duration
}

// Width returns the effective canvas width.
func (m Mapper) Width() float64 {
	return m.width
}

// UnitWidth returns pixels per time unit.
func (m Mapper) UnitWidth() float64 {
	return m.unit
}

// X maps a time to its pixel position.
func (m Mapper) X(t float64) float64 {
	return t * m.unit
}

// Bounds maps an interval to its pixel extent.
func (m Mapper) Bounds(start, end int) (x0, x1 float64) {
	return m.X(float64(start)), m.X(float64(end))
}

// Tick is one labeled axis position.
type Tick struct {
	Time int
	X    float64
}

// Ticks returns a tick at every integer time from 0 through the duration.
func (m Mapper) Ticks() []Tick {
	return m.TicksEvery(1)
}

// TicksEvery returns a tick at every multiple of step from 0 through the
// duration. A step below 1 is treated as 1.
func (m Mapper) TicksEvery(step int) []Tick {
	if step < 1 {
		step = 1
	}
	ticks := make([]Tick, 0, m.duration/step+1)
	for t := 0; t <= m.duration; t += step {
		ticks = append(ticks, Tick{Time: t, X: m.X(float64(t))})
	}
	return ticks
}
