// Package workload loads process sets from YAML, TOML or JSON files and
// validates them before they reach the scheduler.
package workload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/schedviz/internal/timeline"
)

var (
	// ErrInvalidProcess is returned for a process that cannot be scheduled.
	ErrInvalidProcess = errors.New("invalid process")
	// ErrUnknownFormat is returned for an unrecognized file extension.
	ErrUnknownFormat = errors.New("unknown workload format")
)

// DefaultMaxHorizon bounds max(arrival) + Σburst, the latest time any
// schedule of the workload can end. Charts and exports allocate per time
// unit, so larger workloads are rejected at load.
const DefaultMaxHorizon = 2000

// Format is a workload encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Workload is a process set plus optional run settings.
type Workload struct {
	// Quantum overrides the configured round-robin quantum when positive.
	Quantum   int                `json:"quantum,omitempty" yaml:"quantum,omitempty" toml:"quantum,omitempty"`
	Processes []timeline.Process `json:"processes" yaml:"processes" toml:"processes"`
}

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Load reads the workload at path and validates it against maxHorizon
// (DefaultMaxHorizon when non-positive).
func Load(path string, maxHorizon int) (*Workload, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload: %w", err)
	}
	w, err := Parse(data, format, maxHorizon)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// Parse decodes and validates a workload.
func Parse(data []byte, format Format, maxHorizon int) (*Workload, error) {
	var w Workload
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&w); err != nil {
			return nil, fmt.Errorf("parsing yaml workload: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &w)
		if err != nil {
			return nil, fmt.Errorf("parsing toml workload: %w", err)
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return nil, fmt.Errorf("parsing toml workload: unknown key %q", undec[0].String())
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&w); err != nil {
			return nil, fmt.Errorf("parsing json workload: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := w.Validate(maxHorizon); err != nil {
		return nil, err
	}
	return &w, nil
}

// Validate checks every process: a unique non-empty identifier, a
// non-negative arrival and a positive burst. The quantum may not be negative,
// and the horizon may not exceed maxHorizon (DefaultMaxHorizon when
// non-positive).
func (w *Workload) Validate(maxHorizon int) error {
	if w.Quantum < 0 {
		return fmt.Errorf("quantum must be positive, got %d", w.Quantum)
	}
	if maxHorizon <= 0 {
		maxHorizon = DefaultMaxHorizon
	}
	seen := make(map[string]bool, len(w.Processes))
	lastArrival, work := 0, 0
	for i, p := range w.Processes {
		if p.ID == "" {
			return fmt.Errorf("%w: process %d has no pid", ErrInvalidProcess, i)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate pid %q", ErrInvalidProcess, p.ID)
		}
		seen[p.ID] = true
		if p.Arrival < 0 {
			return fmt.Errorf("%w: %s has negative arrival %d", ErrInvalidProcess, p.ID, p.Arrival)
		}
		if p.Burst <= 0 {
			return fmt.Errorf("%w: %s has non-positive burst %d", ErrInvalidProcess, p.ID, p.Burst)
		}
		// Checked before summing so work never overflows.
		if p.Burst > maxHorizon-work {
			return fmt.Errorf("%w: horizon exceeds %d time units at %s", ErrInvalidProcess, maxHorizon, p.ID)
		}
		work += p.Burst
		lastArrival = max(lastArrival, p.Arrival)
		if lastArrival > maxHorizon-work {
			return fmt.Errorf("%w: horizon exceeds %d time units at %s", ErrInvalidProcess, maxHorizon, p.ID)
		}
	}
	return nil
}

// QuantumOr returns the workload quantum, or fallback when unset.
func (w *Workload) QuantumOr(fallback int) int {
	if w.Quantum > 0 {
		return w.Quantum
	}
	return fallback
}

// Encode writes w in the given format.
func (w *Workload) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(w)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(w); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(w, "", "  ")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Sample returns the three-process demo workload.
func Sample() *Workload {
	return &Workload{
		Quantum: 2,
		Processes: []timeline.Process{
			{ID: "P1", Arrival: 0, Burst: 5, Priority: 2},
			{ID: "P2", Arrival: 1, Burst: 3, Priority: 1},
			{ID: "P3", Arrival: 2, Burst: 1, Priority: 3},
		},
	}
}
