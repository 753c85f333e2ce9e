package stageflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsight/go-stageflow/pkg/log"
	"github.com/locsight/go-stageflow/pkg/stageflow/model"
)

func bindStage(st Stage, typ model.StageType) *boundStage {
	_, artifact := st.(ArtifactProducer)

	return &boundStage{
		stage: st,
		info: &model.StageInfo{
			Type:     typ,
			Name:     st.Name(),
			Requires: st.Requires(),
			Produces: st.Produces(),
			Artifact: artifact,
		},
	}
}

func TestRunLifecycleSuccessWritesOutput(t *testing.T) {
	t.Parallel()

	bs := bindStage(NewStage("a", nil, "x", func(_ context.Context, _ View) (any, error) {
		return "value", nil
	}), model.SequentialStageType)

	state := NewState()
	reg := newArtifactRegistry()

	outcome := runLifecycle(context.Background(), bs, state, &stageSink{reg: reg, stage: "a"}, NewHookRegistry(), log.NewNoop(), 0)

	assert.Equal(t, StatusOK, outcome.Status)
	assert.NoError(t, outcome.Err)

	v, ok := state.Get("x")
	require.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestRunLifecycleFailureLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	bs := bindStage(NewStage("a", nil, "x", func(_ context.Context, _ View) (any, error) {
		return nil, assert.AnError
	}), model.SequentialStageType)

	state := NewState()

	outcome := runLifecycle(context.Background(), bs, state, nil, NewHookRegistry(), log.NewNoop(), 0)

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.ErrorIs(t, outcome.Err, assert.AnError)

	var stageErr *StageError
	require.ErrorAs(t, outcome.Err, &stageErr)
	assert.Equal(t, "a", stageErr.Stage)

	_, ok := state.Get("x")
	assert.False(t, ok)
}

func TestRunLifecycleBeforeHookOrder(t *testing.T) {
	t.Parallel()

	var calls []string

	hooks := NewHookRegistry()
	hooks.Before("a", func(_ context.Context, _ State) HookResult {
		calls = append(calls, "first")

		return Continue()
	})
	hooks.Before("a", func(_ context.Context, _ State) HookResult {
		calls = append(calls, "second")

		return Override("forced")
	})
	hooks.Before("a", func(_ context.Context, _ State) HookResult {
		calls = append(calls, "third")

		return Continue()
	})

	bs := bindStage(NewStage("a", nil, "x", func(_ context.Context, _ View) (any, error) {
		calls = append(calls, "stage")

		return "computed", nil
	}), model.SequentialStageType)

	state := NewState()

	outcome := runLifecycle(context.Background(), bs, state, nil, hooks, log.NewNoop(), 0)

	assert.Equal(t, StatusOK, outcome.Status)
	// the first non-Continue result wins: neither the third hook nor the
	// stage body runs
	assert.Equal(t, []string{"first", "second"}, calls)

	v, ok := state.Get("x")
	require.True(t, ok)
	assert.Equal(t, "forced", v)
}

func TestRunLifecycleAfterHookAlwaysRuns(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		stage      Stage
		before     BeforeHook
		wantStatus Status
	}{
		"completed": {
			stage: NewStage("a", nil, "x", func(_ context.Context, _ View) (any, error) {
				return "value", nil
			}),
			wantStatus: StatusOK,
		},
		"failed": {
			stage: NewStage("a", nil, "x", func(_ context.Context, _ View) (any, error) {
				return nil, assert.AnError
			}),
			wantStatus: StatusFailed,
		},
		"aborted by before-hook": {
			stage: NewStage("a", nil, "x", func(_ context.Context, _ View) (any, error) {
				return "value", nil
			}),
			before: func(_ context.Context, _ State) HookResult {
				return Abort(assert.AnError)
			},
			wantStatus: StatusFailed,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var observed *StageOutcome

			hooks := NewHookRegistry()
			if tc.before != nil {
				hooks.Before("a", tc.before)
			}
			hooks.After("a", func(_ context.Context, _ State, outcome StageOutcome) {
				observed = &outcome
			})

			bs := bindStage(tc.stage, model.SequentialStageType)
			outcome := runLifecycle(context.Background(), bs, NewState(), nil, hooks, log.NewNoop(), 0)

			require.NotNil(t, observed)
			assert.Equal(t, tc.wantStatus, outcome.Status)
			assert.Equal(t, outcome.Status, observed.Status)
		})
	}
}

func TestRunLifecycleArtifactProducerReceivesSink(t *testing.T) {
	t.Parallel()

	bs := bindStage(NewArtifactStage("report", nil, "report_result", func(_ context.Context, _ View, sink ArtifactSink) (any, error) {
		if err := sink.Register(Artifact{Name: "report.html", MIME: "text/html", Data: []byte("<html>")}); err != nil {
			return nil, err
		}

		return "done", nil
	}), model.ParallelStageType)

	state := NewState()
	reg := newArtifactRegistry()

	outcome := runLifecycle(context.Background(), bs, state, &stageSink{reg: reg, stage: "report"}, NewHookRegistry(), log.NewNoop(), 0)

	assert.Equal(t, StatusOK, outcome.Status)

	v, ok := state.Get("report_result")
	require.True(t, ok)
	assert.Equal(t, "done", v)

	list := reg.list()
	require.Len(t, list, 1)
	assert.Equal(t, "report.html", list[0].Name)
	assert.Equal(t, "report", list[0].Stage)
}
