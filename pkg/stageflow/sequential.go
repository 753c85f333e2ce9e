package stageflow

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/locsight/go-stageflow/pkg/log"
)

// sequentialRunner executes stages one at a time in declaration order,
// threading the live blackboard between them.
type sequentialRunner struct {
	stages  []*boundStage
	hooks   *HookRegistry
	logger  log.Logger
	timeout time.Duration
}

// run aborts on the first failure and leaves the tail recorded as skipped:
// every downstream stage implicitly depends on state produced earlier, so
// partial continuation cannot yield usable results. Transient collaborator
// errors are retried inside the stage, never here; the runner only sees
// success or terminal failure.
func (r *sequentialRunner) run(ctx context.Context, state State, sinks func(stage string) ArtifactSink, rec *recorder, done func(StageOutcome)) error {
	for _, bs := range r.stages {
		if err := ctx.Err(); err != nil {
			// Not-yet-started stages keep their skipped entries.
			return errors.Wrapf(err, "run cancelled before stage %q", bs.info.Name)
		}

		outcome := runLifecycle(ctx, bs, state, sinks(bs.info.Name), r.hooks, r.logger, r.timeout)
		rec.record(outcome)
		done(outcome)

		if outcome.Status == StatusFailed {
			return outcome.Err
		}
	}

	return nil
}
