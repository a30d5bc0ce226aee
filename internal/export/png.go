package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Dicklesworthstone/schedviz/internal/gantt"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
)

const (
	margin       = 20
	legendSwatch = 12
	// MaxCanvasWidth caps the chart area of a Gantt PNG. Longer timelines
	// are squeezed below the configured minimum unit width.
	MaxCanvasWidth = 16000
	minTickSpacing = 4
)

// ImageOptions controls PNG rendering.
type ImageOptions struct {
	Chart      gantt.Options
	Background string
	Foreground string
	Title      string
}

// DefaultImageOptions returns the light chart style.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		Chart:      gantt.DefaultOptions(),
		Background: "#e6f0ff",
		Foreground: "#1a1a1a",
	}
}

// GanttPNG draws the complete timeline as a static chart: a title, the bar
// band with process labels, integer ticks, and a legend row.
func GanttPNG(w io.Writer, tl *timeline.Timeline, opts ImageOptions) error {
	img := RenderGantt(tl, opts)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding gantt png: %w", err)
	}
	return nil
}

// RenderGantt lays out tl with the chart geometry used everywhere else and
// rasterizes it.
func RenderGantt(tl *timeline.Timeline, opts ImageOptions) *image.RGBA {
	co := opts.Chart
	if co.Band == (gantt.Band{}) {
		co.Band = gantt.DefaultBand()
	}
	legend := gantt.NewLegend(tl.ProcessIDs(), co.Palette)
	m := gantt.NewMapper(tl.Duration(), co.MinWidth, co.MinUnitWidth)
	if m.Width() > MaxCanvasWidth {
		m = gantt.NewMapper(tl.Duration(), min(co.MinWidth, MaxCanvasWidth), MaxCanvasWidth/float64(tl.Duration()))
	}
	intervals := gantt.Build(tl, legend, m, co.Band, gantt.FullReveal(tl))

	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()
	axisY := int(co.Band.Bottom) + margin/2
	legendY := axisY + lineH*2 + margin/2
	width := int(m.Width()) + 2*margin
	height := legendY + lineH + margin

	bg := parseHex(opts.Background, color.RGBA{R: 0xe6, G: 0xf0, B: 0xff, A: 0xff})
	fg := parseHex(opts.Foreground, color.RGBA{A: 0xff})

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if opts.Title != "" {
		drawText(img, opts.Title, margin, margin, fg)
	}

	for _, r := range intervals {
		rect := image.Rect(margin+int(r.X0), int(r.Y0), margin+int(r.X1), int(r.Y1))
		fill := parseHex(r.Color, color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff})
		draw.Draw(img, rect, image.NewUniform(fill), image.Point{}, draw.Src)
		outline(img, rect, fg)

		tw := measure(r.ProcessID)
		if tw+4 <= rect.Dx() {
			x := rect.Min.X + (rect.Dx()-tw)/2
			y := rect.Min.Y + (rect.Dy()+face.Metrics().Ascent.Ceil())/2
			drawText(img, r.ProcessID, x, y, contrast(fill))
		}
	}

	// Axis line and integer ticks; labels are dropped where they would
	// collide with the previous one.
	hline(img, margin, margin+int(m.Width()), axisY, fg)
	lastRight := -1
	step := 1
	if u := m.UnitWidth(); u > 0 && u < minTickSpacing {
		step = int(math.Ceil(minTickSpacing / u))
	}
	for _, t := range m.TicksEvery(step) {
		x := margin + int(t.X)
		vline(img, x, axisY, axisY+4, fg)
		label := strconv.Itoa(t.Time)
		tw := measure(label)
		lx := x - tw/2
		if lx <= lastRight+2 {
			continue
		}
		drawText(img, label, lx, axisY+4+lineH, fg)
		lastRight = lx + tw
	}

	x := margin
	for _, e := range legend.Entries() {
		sw := image.Rect(x, legendY-legendSwatch+2, x+legendSwatch, legendY+2)
		draw.Draw(img, sw, image.NewUniform(parseHex(e.Color, fg)), image.Point{}, draw.Src)
		x += legendSwatch + 4
		drawText(img, e.ProcessID, x, legendY, fg)
		x += measure(e.ProcessID) + 12
	}
	return img
}

func drawText(img draw.Image, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

func measure(s string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(s).Ceil()
}

func hline(img draw.Image, x0, x1, y int, c color.Color) {
	for x := x0; x <= x1; x++ {
		img.Set(x, y, c)
	}
}

func vline(img draw.Image, x, y0, y1 int, c color.Color) {
	for y := y0; y <= y1; y++ {
		img.Set(x, y, c)
	}
}

func outline(img draw.Image, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	hline(img, r.Min.X, r.Max.X-1, r.Min.Y, c)
	hline(img, r.Min.X, r.Max.X-1, r.Max.Y-1, c)
	vline(img, r.Min.X, r.Min.Y, r.Max.Y-1, c)
	vline(img, r.Max.X-1, r.Min.Y, r.Max.Y-1, c)
}

// contrast picks black or white text for a fill color.
func contrast(c color.RGBA) color.RGBA {
	lum := 299*int(c.R) + 587*int(c.G) + 114*int(c.B)
	if lum > 128*1000 {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
}

// parseHex reads #RRGGBB, returning fallback for anything else.
func parseHex(s string, fallback color.RGBA) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
