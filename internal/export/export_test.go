package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/schedviz/internal/compare"
	"github.com/Dicklesworthstone/schedviz/internal/gantt"
	"github.com/Dicklesworthstone/schedviz/internal/sched"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
)

func fcfsResult(t *testing.T) sched.Result {
	t.Helper()
	return sched.Run(sched.FCFS{}, []timeline.Process{
		{ID: "P1", Arrival: 0, Burst: 5, Priority: 2},
		{ID: "P2", Arrival: 1, Burst: 3, Priority: 1},
		{ID: "P3", Arrival: 2, Burst: 1, Priority: 3},
	})
}

func TestRecords(t *testing.T) {
	recs := Records(fcfsResult(t).Processes)
	require.Len(t, recs, 3)
	assert.Equal(t, Record{PID: "P2", Arrival: 1, Burst: 3, Priority: 1, Start: 5, End: 8, Waiting: 4, Turnaround: 7}, recs[1])
	assert.Equal(t, []string{"P2", "1", "3", "1", "5", "8", "4", "7"}, recs[1].Fields())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Records(fcfsResult(t).Processes)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"P3", "2", "1", "3", "8", "9", "6", "7"}, rows[3])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Records(fcfsResult(t).Processes)))

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "P1", got[0]["pid"])
	assert.EqualValues(t, 5, got[0]["turnaround"])
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, Records(fcfsResult(t).Processes)))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "turnaround")
	assert.True(t, strings.HasPrefix(lines[2], "  P1"))

	assert.Error(t, Write(&buf, FormatPNG, nil))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestGanttPNG(t *testing.T) {
	tl, err := fcfsResult(t).Timeline()
	require.NoError(t, err)

	opts := DefaultImageOptions()
	opts.Title = "FCFS"
	var buf bytes.Buffer
	require.NoError(t, GanttPNG(&buf, tl, opts))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	// 1000px canvas (9 units at 50px is narrower) plus margins.
	assert.Equal(t, 1000+2*margin, img.Bounds().Dx())

	// The middle of the first bar carries P1's palette color.
	m := gantt.NewMapper(tl.Duration(), opts.Chart.MinWidth, opts.Chart.MinUnitWidth)
	x0, _ := m.Bounds(0, 5)
	r, g, b, _ := img.At(margin+int(x0)+5, int(opts.Chart.Band.Top)+3).RGBA()
	want := parseHex(gantt.DefaultPalette[0], color.RGBA{})
	assert.Equal(t, [3]uint8{want.R, want.G, want.B}, [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)})
}

func TestRenderGantt_ClampsLongTimelines(t *testing.T) {
	// 100k units at 50px would need a 5M pixel wide canvas.
	tl, err := timeline.New(
		[]timeline.Entry{{ProcessID: "P1", Start: 0, End: 100000}},
		[]timeline.Process{{ID: "P1", Burst: 100000}},
	)
	require.NoError(t, err)

	img := RenderGantt(tl, DefaultImageOptions())
	assert.Equal(t, MaxCanvasWidth+2*margin, img.Bounds().Dx())

	var buf bytes.Buffer
	require.NoError(t, GanttPNG(&buf, tl, DefaultImageOptions()))
	assert.NotZero(t, buf.Len())
}

func TestComparisonPNG(t *testing.T) {
	d, err := compare.RunComparison(context.Background(), fcfsResult(t).Processes, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ComparisonPNG(&buf, d, DefaultImageOptions()))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2*panelWidth, img.Bounds().Dx())
	assert.Equal(t, 2*panelHeight, img.Bounds().Dy())

	err = ComparisonPNG(&buf, nil, DefaultImageOptions())
	assert.True(t, errors.Is(err, compare.ErrEmptyComparison))
}

func TestParseHexAndContrast(t *testing.T) {
	fb := color.RGBA{R: 1, A: 0xff}
	assert.Equal(t, color.RGBA{R: 0x3c, G: 0x3f, B: 0x41, A: 0xff}, parseHex("#3c3f41", fb))
	assert.Equal(t, fb, parseHex("blue", fb))
	assert.Equal(t, color.RGBA{A: 0xff}, contrast(color.RGBA{R: 0xff, G: 0xca, B: 0x28, A: 0xff}))
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, contrast(color.RGBA{R: 0x20, G: 0x20, B: 0x40, A: 0xff}))
}
