// Package watcher provides file watching with debouncing using fsnotify.
// config.go provides helper functions to create watchers from config.
package watcher

import "time"

// WorkloadWatchConfigValues holds the values needed to configure a workload
// FileWatcher without importing the config package.
type WorkloadWatchConfigValues struct {
	Enabled    bool
	DebounceMS int
}

// DefaultWorkloadWatchConfigValues returns the default watch settings.
func DefaultWorkloadWatchConfigValues() WorkloadWatchConfigValues {
	return WorkloadWatchConfigValues{
		Enabled:    true,
		DebounceMS: int(DefaultDebounce / time.Millisecond),
	}
}

// NewWorkloadWatcherFromConfig creates a FileWatcher for path, or nil when
// watching is disabled.
func NewWorkloadWatcherFromConfig(cfg WorkloadWatchConfigValues, path string) *FileWatcher {
	if !cfg.Enabled || path == "" {
		return nil
	}

	var opts []FileWatcherOption
	if cfg.DebounceMS > 0 {
		opts = append(opts, WithDebounce(time.Duration(cfg.DebounceMS)*time.Millisecond))
	}
	return NewFileWatcher(path, opts...)
}
