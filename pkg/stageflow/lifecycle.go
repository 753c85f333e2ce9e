package stageflow

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/locsight/go-stageflow/pkg/log"
	"github.com/locsight/go-stageflow/pkg/stageflow/model"
)

// boundStage pairs a Stage with the metadata it was validated under.
type boundStage struct {
	stage Stage
	info  *model.StageInfo
}

// runLifecycle drives a single stage through
// Pending -> BeforeHook -> Executing -> AfterHook and returns its terminal
// outcome. state is the live blackboard during the sequential phase and a
// private write buffer during the fan-out phase. After-hooks always run,
// whether execution succeeded, failed, or was short-circuited.
func runLifecycle(ctx context.Context, bs *boundStage, state State, sink ArtifactSink, hooks *HookRegistry, logger log.Logger, timeout time.Duration) StageOutcome {
	name := bs.info.Name
	outcome := StageOutcome{Stage: name, Phase: bs.info.Type}
	start := time.Now()

	logger.Debug("stage starting", log.String("stage", name), log.String("phase", string(bs.info.Type)))

	decided := false

	for _, hook := range hooks.beforeHooks(name) {
		res := hook(ctx, state)
		if res.decision == decisionContinue {
			continue
		}

		if res.decision == decisionOverride {
			if bs.info.Produces != "" {
				state.Set(bs.info.Produces, res.value)
			}

			outcome.Status = StatusOK
		} else {
			outcome.Status = StatusFailed
			outcome.Err = &StageError{Stage: name, Err: errors.Wrap(res.err, "aborted by before-hook")}
		}

		decided = true

		break
	}

	if !decided {
		value, err := executeStage(ctx, bs, state, sink, timeout)
		if err != nil {
			outcome.Status = StatusFailed
			outcome.Err = &StageError{Stage: name, Err: err}
		} else {
			if bs.info.Produces != "" {
				state.Set(bs.info.Produces, value)
			}

			outcome.Status = StatusOK
		}
	}

	outcome.Duration = time.Since(start)

	for _, hook := range hooks.afterHooks(name) {
		hook(ctx, state, outcome)
	}

	if outcome.Err != nil {
		logger.Error("stage failed", log.String("stage", name), log.Err(outcome.Err), log.Duration("duration", outcome.Duration))
	} else {
		logger.Info("stage completed", log.String("stage", name), log.Duration("duration", outcome.Duration))
	}

	return outcome
}

func executeStage(ctx context.Context, bs *boundStage, state State, sink ArtifactSink, timeout time.Duration) (any, error) {
	runCtx := ctx

	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)

		defer cancel()
	}

	if producer, ok := bs.stage.(ArtifactProducer); ok {
		return producer.RunArtifacts(runCtx, state, sink)
	}

	return bs.stage.Run(runCtx, state)
}
