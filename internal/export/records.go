// Package export writes scheduling results as CSV, JSON, text tables and
// PNG charts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/schedviz/internal/output"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
)

// Format is an export encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatPNG   Format = "png"
)

// ParseFormat resolves a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatTable, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, json, table or png)", s)
	}
}

// Header is the column order of every tabular export.
var Header = []string{"pid", "arrival", "burst", "priority", "start", "end", "waiting", "turnaround"}

// Record is one exported process row.
type Record struct {
	PID        string `json:"pid"`
	Arrival    int    `json:"arrival"`
	Burst      int    `json:"burst"`
	Priority   int    `json:"priority"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Waiting    int    `json:"waiting"`
	Turnaround int    `json:"turnaround"`
}

// Records converts processes with computed fields into export rows, in
// input order.
func Records(procs []timeline.Process) []Record {
	out := make([]Record, len(procs))
	for i, p := range procs {
		out[i] = Record{
			PID:        p.ID,
			Arrival:    p.Arrival,
			Burst:      p.Burst,
			Priority:   p.Priority,
			Start:      p.Start,
			End:        p.End,
			Waiting:    p.Waiting,
			Turnaround: p.Turnaround,
		}
	}
	return out
}

// Fields returns r in Header order.
func (r Record) Fields() []string {
	return []string{
		r.PID,
		strconv.Itoa(r.Arrival),
		strconv.Itoa(r.Burst),
		strconv.Itoa(r.Priority),
		strconv.Itoa(r.Start),
		strconv.Itoa(r.End),
		strconv.Itoa(r.Waiting),
		strconv.Itoa(r.Turnaround),
	}
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.Fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteTable writes records as an aligned text table.
func WriteTable(w io.Writer, records []Record) error {
	tbl := output.NewTable(w, Header...)
	for _, r := range records {
		tbl.AddRow(r.Fields()...)
	}
	tbl.Render()
	return nil
}

// Write dispatches to the tabular writer for format. PNG is not tabular; use
// GanttPNG.
func Write(w io.Writer, format Format, records []Record) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatTable:
		return WriteTable(w, records)
	default:
		return fmt.Errorf("format %q is not a record format", format)
	}
}
