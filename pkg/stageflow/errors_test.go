package stageflow_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsight/go-stageflow/pkg/stageflow"
)

func TestIsConfig(t *testing.T) {
	t.Parallel()

	p, err := stageflow.New()
	require.NoError(t, err)

	configErr := p.Append(textStage("a", []string{"never-produced"}, "x", "v"))
	require.Error(t, configErr)

	assert.True(t, stageflow.IsConfig(configErr))
	assert.True(t, stageflow.IsConfig(errors.Wrap(configErr, "assembling")))
	assert.False(t, stageflow.IsConfig(assert.AnError))

	var ce *stageflow.ConfigError
	require.ErrorAs(t, configErr, &ce)
	assert.Equal(t, "a", ce.Stage)
}

func TestStageErrorUnwraps(t *testing.T) {
	t.Parallel()

	err := &stageflow.StageError{Stage: "a", Err: assert.AnError}

	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), `stage "a"`)

	var stageErr *stageflow.StageError
	assert.ErrorAs(t, errors.Wrap(err, "running"), &stageErr)
}

func TestIsTimeout(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want bool
	}{
		"deadline exceeded":       {err: context.DeadlineExceeded, want: true},
		"cancelled":               {err: context.Canceled, want: true},
		"wrapped deadline":        {err: errors.Wrap(context.DeadlineExceeded, "stage"), want: true},
		"inside stage error":      {err: &stageflow.StageError{Stage: "a", Err: context.Canceled}, want: true},
		"collaborator error":      {err: assert.AnError, want: false},
		"nil error is no timeout": {err: nil, want: false},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, stageflow.IsTimeout(tc.err))
		})
	}
}
