// Package compare assembles per-algorithm metric records into an ordered
// dataset for side-by-side presentation.
package compare

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/schedviz/internal/sched"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
)

// ErrEmptyComparison is returned when a comparison has no results.
var ErrEmptyComparison = errors.New("empty comparison")

// Result is one algorithm's run over its own copy of the process set.
type Result struct {
	Algorithm string             `json:"algorithm"`
	Timeline  *timeline.Timeline `json:"-"`
	Processes []timeline.Process `json:"processes"`
	Metrics   sched.Metrics      `json:"metrics"`
}

// FromRun converts a scheduler result, validating its timeline.
func FromRun(r sched.Result) (Result, error) {
	tl, err := r.Timeline()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", r.Algorithm, err)
	}
	return Result{
		Algorithm: r.Algorithm,
		Timeline:  tl,
		Processes: r.Processes,
		Metrics:   r.Metrics(),
	}, nil
}

// clone copies the process slice so callers cannot reach dataset rows,
// which may be shared through the comparison cache.
func (r Result) clone() Result {
	r.Processes = append([]timeline.Process(nil), r.Processes...)
	return r
}

// Dataset is an immutable, ordered set of results keyed by algorithm name.
// Row order is the order the algorithms were evaluated in.
type Dataset struct {
	rows  []Result
	index map[string]int
}

// Assemble builds a dataset from results in the order given. It fails with
// ErrEmptyComparison for zero results and rejects repeated algorithm names.
func Assemble(results ...Result) (*Dataset, error) {
	if len(results) == 0 {
		return nil, ErrEmptyComparison
	}
	d := &Dataset{
		rows:  make([]Result, 0, len(results)),
		index: make(map[string]int, len(results)),
	}
	for _, r := range results {
		if _, dup := d.index[r.Algorithm]; dup {
			return nil, fmt.Errorf("duplicate algorithm %q in comparison", r.Algorithm)
		}
		d.index[r.Algorithm] = len(d.rows)
		r.Processes = append([]timeline.Process(nil), r.Processes...)
		d.rows = append(d.rows, r)
	}
	return d, nil
}

// Len returns the number of algorithms.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// At returns a copy of row i.
func (d *Dataset) At(i int) Result {
	return d.rows[i].clone()
}

// Get returns the result for an algorithm.
func (d *Dataset) Get(algorithm string) (Result, bool) {
	i, ok := d.index[algorithm]
	if !ok {
		return Result{}, false
	}
	return d.rows[i].clone(), true
}

// Algorithms returns algorithm names in evaluation order.
func (d *Dataset) Algorithms() []string {
	names := make([]string, len(d.rows))
	for i, r := range d.rows {
		names[i] = r.Algorithm
	}
	return names
}

// Rows returns a copy of every row in evaluation order.
func (d *Dataset) Rows() []Result {
	rows := make([]Result, len(d.rows))
	for i, r := range d.rows {
		rows[i] = r.clone()
	}
	return rows
}

// Best returns the algorithm with the lowest average waiting time. Ties go
// to the earlier row.
func (d *Dataset) Best() string {
	best := 0
	for i, r := range d.rows {
		if r.Metrics.AverageWaiting < d.rows[best].Metrics.AverageWaiting {
			best = i
		}
	}
	return d.rows[best].Algorithm
}

type jsonRow struct {
	Algorithm string             `json:"algorithm"`
	Metrics   sched.Metrics      `json:"metrics"`
	Timeline  []timeline.Entry   `json:"timeline"`
	Processes []timeline.Process `json:"processes"`
}

// MarshalJSON encodes the dataset as an ordered array.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	rows := make([]jsonRow, len(d.rows))
	for i, r := range d.rows {
		rows[i] = jsonRow{
			Algorithm: r.Algorithm,
			Metrics:   r.Metrics,
			Processes: r.Processes,
		}
		if r.Timeline != nil {
			rows[i].Timeline = r.Timeline.Entries()
		}
	}
	return json.Marshal(rows)
}
