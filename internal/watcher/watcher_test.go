package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workload.yaml")
	other := filepath.Join(dir, "other.yaml")
	if err := os.WriteFile(path, []byte("processes: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewFileWatcher(path, WithDebounce(20*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := w.Start(context.Background()); err != ErrAlreadyStarted {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}

	// Writes to siblings are ignored.
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-w.Changes():
		t.Fatalf("unexpected change for %s", got)
	case <-time.After(150 * time.Millisecond):
	}

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("processes: []\n# edit\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case got := <-w.Changes():
		if got != path {
			t.Errorf("change path = %s, want %s", got, path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
	t.Logf("WATCHER_TEST: change reported for %s", path)
}

func TestFileWatcher_StopIsIdempotent(t *testing.T) {
	w := NewFileWatcher(filepath.Join(t.TempDir(), "w.toml"))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	w.Stop()
	w.Stop()
}

func TestFileWatcher_MissingDirectory(t *testing.T) {
	w := NewFileWatcher(filepath.Join(t.TempDir(), "nope", "w.toml"))
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatal("expected error for missing directory")
	}
}

func TestNewWorkloadWatcherFromConfig(t *testing.T) {
	if w := NewWorkloadWatcherFromConfig(WorkloadWatchConfigValues{}, "a.yaml"); w != nil {
		t.Error("disabled config returned a watcher")
	}
	w := NewWorkloadWatcherFromConfig(WorkloadWatchConfigValues{Enabled: true, DebounceMS: 50}, "a.yaml")
	if w == nil || w.debounce != 50*time.Millisecond {
		t.Fatalf("watcher = %+v", w)
	}
	if d := DefaultWorkloadWatchConfigValues(); !d.Enabled || d.DebounceMS != 200 {
		t.Errorf("defaults = %+v", d)
	}
}
