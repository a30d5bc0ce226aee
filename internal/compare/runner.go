package compare

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	cache "github.com/Code-Hex/go-generics-cache"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/schedviz/internal/sched"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
)

// Runner runs the standard algorithms over a process set and memoizes the
// resulting datasets by process-set fingerprint.
type Runner struct {
	cache  *cache.Cache[string, *Dataset]
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

// NewRunner returns a runner whose cached datasets expire after ttl. A
// non-positive ttl disables caching.
func NewRunner(ttl time.Duration) *Runner {
	r := &Runner{ttl: ttl}
	if ttl > 0 {
		r.cache = cache.New[string, *Dataset]()
	}
	return r
}

// CacheHits returns how many comparisons were served from cache.
func (r *Runner) CacheHits() int64 { return r.hits.Load() }

// CacheMisses returns how many comparisons were computed.
func (r *Runner) CacheMisses() int64 { return r.misses.Load() }

// RunComparison evaluates the six standard algorithms over procs, each on
// its own copy, and assembles the dataset in standard order.
func (r *Runner) RunComparison(ctx context.Context, procs []timeline.Process, quantum int) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if quantum < 1 {
		quantum = sched.DefaultQuantum
	}

	var key string
	if r.cache != nil {
		key = Fingerprint(procs, quantum)
		if d, ok := r.cache.Get(key); ok {
			r.hits.Add(1)
			slog.Debug("comparison cache hit", "key", key[:12])
			return d, nil
		}
	}
	r.misses.Add(1)

	d, err := Run(ctx, sched.Standard(quantum), procs)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Set(key, d, cache.WithExpiration(r.ttl))
	}
	return d, nil
}

// RunComparison evaluates the standard algorithms without caching.
func RunComparison(ctx context.Context, procs []timeline.Process, quantum int) (*Dataset, error) {
	return NewRunner(0).RunComparison(ctx, procs, quantum)
}

// Run evaluates algs concurrently. Each algorithm receives a private copy of
// procs, and rows keep the order of algs regardless of completion order.
func Run(ctx context.Context, algs []sched.Algorithm, procs []timeline.Process) (*Dataset, error) {
	if len(algs) == 0 {
		return nil, ErrEmptyComparison
	}

	results := make([]Result, len(algs))
	g, ctx := errgroup.WithContext(ctx)
	for i, alg := range algs {
		own := sched.Clone(procs)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := FromRun(sched.Run(alg, own))
			if err != nil {
				return fmt.Errorf("run %s: %w", alg.Name(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("comparison complete", "algorithms", len(algs), "processes", len(procs))
	return Assemble(results...)
}

// Fingerprint identifies a process set and quantum. Process order matters
// because it breaks scheduling ties.
func Fingerprint(procs []timeline.Process, quantum int) string {
	h := sha256.New()
	fmt.Fprintf(h, "q=%d;", quantum)
	for _, p := range procs {
		fmt.Fprintf(h, "%q,%d,%d,%d;", p.ID, p.Arrival, p.Burst, p.Priority)
	}
	return hex.EncodeToString(h.Sum(nil))
}
