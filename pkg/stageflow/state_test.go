package stageflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsight/go-stageflow/pkg/stageflow"
)

func TestStateSetGet(t *testing.T) {
	t.Parallel()

	state := stageflow.NewState()

	_, ok := state.Get("missing")
	assert.False(t, ok)

	state.Set("location", "harbor district")
	state.Set("competitors", []string{"alpha", "beta"})

	v, ok := state.Get("location")
	require.True(t, ok)
	assert.Equal(t, "harbor district", v)

	assert.Equal(t, []string{"competitors", "location"}, state.Keys())
}

func TestStateFromCopiesSeed(t *testing.T) {
	t.Parallel()

	seed := map[string]any{"location": "harbor district"}
	state := stageflow.NewStateFrom(seed)

	seed["location"] = "mutated"
	seed["extra"] = "value"

	v, ok := stageflow.TextValue(state, "location")
	require.True(t, ok)
	assert.Equal(t, "harbor district", v)

	_, ok = state.Get("extra")
	assert.False(t, ok)
}

func TestSnapshotIsImmutable(t *testing.T) {
	t.Parallel()

	state := stageflow.NewState()
	state.Set("location", "harbor district")

	snap := state.Snapshot()
	state.Set("location", "changed")
	state.Set("later", "value")

	v, ok := stageflow.TextValue(snap, "location")
	require.True(t, ok)
	assert.Equal(t, "harbor district", v)

	_, ok = snap.Get("later")
	assert.False(t, ok)
}

func TestTextValue(t *testing.T) {
	t.Parallel()

	state := stageflow.NewState()
	state.Set("text", "value")
	state.Set("number", 42)

	tests := map[string]struct {
		key    string
		want   string
		wantOK bool
	}{
		"present text":   {key: "text", want: "value", wantOK: true},
		"absent key":     {key: "missing"},
		"non-text value": {key: "number"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := stageflow.TextValue(state, tc.key)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestListValue(t *testing.T) {
	t.Parallel()

	state := stageflow.NewState()
	state.Set("list", []string{"a", "b"})
	state.Set("text", "value")

	list, ok := stageflow.ListValue(state, "list")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, list)

	_, ok = stageflow.ListValue(state, "text")
	assert.False(t, ok)

	_, ok = stageflow.ListValue(state, "missing")
	assert.False(t, ok)
}
