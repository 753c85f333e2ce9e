package locintel_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsight/go-stageflow/pkg/locintel"
)

type flakyGenerator struct {
	failures int
	calls    int
}

func (g *flakyGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	if g.calls <= g.failures {
		return "", assert.AnError
	}

	return "recovered", nil
}

func TestRetryingGeneratorRecovers(t *testing.T) {
	t.Parallel()

	flaky := &flakyGenerator{failures: 2}
	gen := locintel.NewRetryingGenerator(flaky, 3, time.Millisecond, 10*time.Millisecond)

	out, err := gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, 3, flaky.calls)
}

func TestRetryingGeneratorExhaustsAttempts(t *testing.T) {
	t.Parallel()

	flaky := &flakyGenerator{failures: 5}
	gen := locintel.NewRetryingGenerator(flaky, 3, time.Millisecond, 10*time.Millisecond)

	_, err := gen.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, flaky.calls)
}

func TestRetryingGeneratorStopsOnCancel(t *testing.T) {
	t.Parallel()

	flaky := &flakyGenerator{failures: 100}
	gen := locintel.NewRetryingGenerator(flaky, 50, 10*time.Millisecond, 100*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	_, err := gen.Generate(ctx, "prompt")
	require.Error(t, err)
	assert.Less(t, flaky.calls, 50)
}
