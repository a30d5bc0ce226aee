// Package output formats command results as aligned text or JSON.
package output

import (
	"encoding/json"
	"io"
)

// Format selects how results are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formatter writes results to a single writer in one format.
type Formatter struct {
	writer io.Writer
	format Format
}

// New creates a formatter. An unknown format falls back to text.
func New(w io.Writer, format Format) *Formatter {
	if format != FormatJSON {
		format = FormatText
	}
	return &Formatter{writer: w, format: format}
}

// IsJSON reports whether the formatter emits JSON.
func (f *Formatter) IsJSON() bool {
	return f.format == FormatJSON
}

// JSON writes v as indented JSON followed by a newline.
func (f *Formatter) JSON(v interface{}) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
