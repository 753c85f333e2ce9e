package stageflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsight/go-stageflow/pkg/stageflow/model"
)

func testInfos(names ...string) []*model.StageInfo {
	infos := make([]*model.StageInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, &model.StageInfo{Type: model.SequentialStageType, Name: name})
	}

	return infos
}

func TestRecorderPrePopulatesSkippedEntries(t *testing.T) {
	t.Parallel()

	rec := newRecorder("run-1", testInfos("a", "b", "c"))

	require.Len(t, rec.outcome.Stages, 3)
	assert.Equal(t, "run-1", rec.outcome.RunID)

	for _, outcome := range rec.outcome.Stages {
		assert.Equal(t, StatusSkipped, outcome.Status, outcome.Stage)
	}
}

func TestRecorderKeepsDeclarationOrder(t *testing.T) {
	t.Parallel()

	rec := newRecorder("run-1", testInfos("a", "b", "c"))

	// completion order differs from declaration order
	rec.record(StageOutcome{Stage: "c", Status: StatusOK})
	rec.record(StageOutcome{Stage: "a", Status: StatusFailed, Err: assert.AnError})

	assert.Equal(t, "a", rec.outcome.Stages[0].Stage)
	assert.Equal(t, StatusFailed, rec.outcome.Stages[0].Status)
	assert.Equal(t, "b", rec.outcome.Stages[1].Stage)
	assert.Equal(t, StatusSkipped, rec.outcome.Stages[1].Status)
	assert.Equal(t, "c", rec.outcome.Stages[2].Stage)
	assert.Equal(t, StatusOK, rec.outcome.Stages[2].Status)

	got := rec.get("a")
	assert.ErrorIs(t, got.Err, assert.AnError)
}

func TestRunOutcomePartial(t *testing.T) {
	t.Parallel()

	seq := func(status Status) StageOutcome {
		return StageOutcome{Stage: "s", Phase: model.SequentialStageType, Status: status}
	}
	par := func(name string, status Status) StageOutcome {
		return StageOutcome{Stage: name, Phase: model.ParallelStageType, Status: status}
	}

	tests := map[string]struct {
		stages []StageOutcome
		want   bool
	}{
		"one member failed, one completed": {
			stages: []StageOutcome{seq(StatusOK), par("c1", StatusFailed), par("c2", StatusOK)},
			want:   true,
		},
		"all members completed": {
			stages: []StageOutcome{seq(StatusOK), par("c1", StatusOK), par("c2", StatusOK)},
			want:   false,
		},
		"all members failed": {
			stages: []StageOutcome{seq(StatusOK), par("c1", StatusFailed), par("c2", StatusFailed)},
			want:   false,
		},
		"sequential failure is never partial": {
			stages: []StageOutcome{seq(StatusFailed), par("c1", StatusFailed), par("c2", StatusOK)},
			want:   false,
		},
		"no fan-out": {
			stages: []StageOutcome{seq(StatusOK)},
			want:   false,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			outcome := &RunOutcome{RunID: "run-1", Stages: tc.stages}
			assert.Equal(t, tc.want, outcome.Partial())
		})
	}
}
