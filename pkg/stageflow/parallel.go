package stageflow

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/locsight/go-stageflow/internal/store"
	"github.com/locsight/go-stageflow/pkg/log"
)

// parallelRunner executes the fan-out group concurrently against one frozen
// snapshot of the blackboard. Members never write the live board directly:
// each runs against a private buffer that merges back in a single
// synchronized step on completion, so siblings cannot race the store.
type parallelRunner struct {
	stages  []*boundStage
	hooks   *HookRegistry
	logger  log.Logger
	limit   int
	timeout time.Duration
}

// run waits for all members regardless of individual failures, so
// independent outputs are not lost because one member failed. Member errors
// are recorded in the outcome, never re-thrown to cancel siblings.
func (r *parallelRunner) run(ctx context.Context, board *store.Blackboard, sinks func(stage string) ArtifactSink, rec *recorder, done func(StageOutcome)) {
	snap := board.Freeze()

	limit := r.limit
	if limit <= 0 || limit > len(r.stages) {
		limit = len(r.stages)
	}

	grp := errgroup.Group{}
	grp.SetLimit(limit)

	for _, bs := range r.stages {
		bs := bs
		grp.Go(func() error {
			if ctx.Err() != nil {
				// Cancelled before dispatch: the member keeps its skipped
				// entry, mirroring the sequential tail.
				return nil
			}

			buf := newBufferedState(snap)
			outcome := runLifecycle(ctx, bs, buf, sinks(bs.info.Name), r.hooks, r.logger, r.timeout)

			if outcome.Status == StatusOK {
				board.SetAll(buf.flush())
			}

			rec.record(outcome)
			done(outcome)

			return nil
		})
	}

	// Members intentionally return nil; Wait is a pure join.
	_ = grp.Wait()
}

// bufferedState reads through the fan-out snapshot and collects writes
// privately until the runner merges them.
type bufferedState struct {
	snap   View
	mu     sync.Mutex
	writes map[string]any
}

func newBufferedState(snap View) *bufferedState {
	return &bufferedState{
		snap:   snap,
		writes: make(map[string]any),
	}
}

func (b *bufferedState) Get(key string) (any, bool) {
	b.mu.Lock()
	v, ok := b.writes[key]
	b.mu.Unlock()

	if ok {
		return v, true
	}

	return b.snap.Get(key)
}

func (b *bufferedState) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.writes[key] = value
}

func (b *bufferedState) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[string]struct{})
	keys := make([]string, 0, len(b.writes))

	for _, k := range b.snap.Keys() {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	for k := range b.writes {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)

	return keys
}

func (b *bufferedState) Snapshot() View {
	merged := make(map[string]any)

	for _, k := range b.snap.Keys() {
		v, _ := b.snap.Get(k)
		merged[k] = v
	}

	b.mu.Lock()
	for k, v := range b.writes {
		merged[k] = v
	}
	b.mu.Unlock()

	return store.NewFrom(merged).Freeze()
}

// flush hands the buffered writes to the merge step.
func (b *bufferedState) flush() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]any, len(b.writes))
	for k, v := range b.writes {
		out[k] = v
	}

	return out
}
