package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Dicklesworthstone/schedviz/internal/compare"
	"github.com/Dicklesworthstone/schedviz/internal/gantt"
)

const (
	panelWidth  = 520
	panelHeight = 320
)

// metricPanel is one bar chart of the comparison image.
type metricPanel struct {
	title  string
	values func(compare.Result) float64
}

var comparisonPanels = []metricPanel{
	{"Average Waiting Time", func(r compare.Result) float64 { return r.Metrics.AverageWaiting }},
	{"Average Turnaround Time", func(r compare.Result) float64 { return r.Metrics.AverageTurnaround }},
	{"CPU Utilization (%)", func(r compare.Result) float64 { return r.Metrics.CPUUtilization }},
	{"Throughput (processes/unit)", func(r compare.Result) float64 { return r.Metrics.Throughput }},
}

// ComparisonPNG draws one bar chart per metric, arranged two by two, with
// one bar per algorithm in evaluation order.
func ComparisonPNG(w io.Writer, d *compare.Dataset, opts ImageOptions) error {
	img, err := RenderComparison(d, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding comparison png: %w", err)
	}
	return nil
}

// RenderComparison rasterizes the comparison panels.
func RenderComparison(d *compare.Dataset, opts ImageOptions) (*image.RGBA, error) {
	if d == nil || d.Len() == 0 {
		return nil, compare.ErrEmptyComparison
	}
	palette := opts.Chart.Palette
	if len(palette) == 0 {
		palette = gantt.DefaultPalette
	}

	out := image.NewRGBA(image.Rect(0, 0, 2*panelWidth, 2*panelHeight))
	bg := parseHex(opts.Background, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for i, p := range comparisonPanels {
		bars := make([]chart.Value, d.Len())
		maxV := 0.0
		for j, r := range d.Rows() {
			v := p.values(r)
			if v > maxV {
				maxV = v
			}
			bars[j] = chart.Value{
				Label: r.Algorithm,
				Value: v,
				Style: chart.Style{
					FillColor:   toDrawingColor(parseHex(palette[j%len(palette)], color.RGBA{A: 0xff})),
					StrokeColor: toDrawingColor(parseHex(opts.Foreground, color.RGBA{A: 0xff})),
					StrokeWidth: 1,
				},
			}
		}
		if maxV <= 0 {
			maxV = 1
		}

		bc := chart.BarChart{
			Title:      p.title,
			Width:      panelWidth,
			Height:     panelHeight,
			BarWidth:   40,
			BarSpacing: 20,
			Background: chart.Style{
				Padding:   chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
				FillColor: toDrawingColor(bg),
			},
			Canvas: chart.Style{FillColor: toDrawingColor(bg)},
			YAxis: chart.YAxis{
				Range: &chart.ContinuousRange{Min: 0, Max: maxV * 1.15},
				ValueFormatter: func(v interface{}) string {
					if f, ok := v.(float64); ok {
						return fmt.Sprintf("%.2f", f)
					}
					return ""
				},
			},
			Bars: bars,
		}

		var buf bytes.Buffer
		if err := bc.Render(chart.PNG, &buf); err != nil {
			return nil, fmt.Errorf("rendering %s chart: %w", p.title, err)
		}
		panel, err := png.Decode(&buf)
		if err != nil {
			return nil, fmt.Errorf("decoding %s chart: %w", p.title, err)
		}

		origin := image.Pt((i%2)*panelWidth, (i/2)*panelHeight)
		draw.Draw(out, panel.Bounds().Add(origin), panel, panel.Bounds().Min, draw.Src)
	}
	return out, nil
}

func toDrawingColor(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
