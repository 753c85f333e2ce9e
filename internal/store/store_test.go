package store_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsight/go-stageflow/internal/store"
)

func TestGetSet(t *testing.T) {
	t.Parallel()

	b := store.New()

	_, ok := b.Get("missing")
	assert.False(t, ok)

	b.Set("x", "value")
	got, ok := b.Get("x")
	require.True(t, ok)
	assert.Equal(t, "value", got)

	b.Set("x", "overwritten")
	got, _ = b.Get("x")
	assert.Equal(t, "overwritten", got)
}

func TestNewFromCopiesInit(t *testing.T) {
	t.Parallel()

	init := map[string]any{"a": 1}
	b := store.NewFrom(init)

	init["b"] = 2
	_, ok := b.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 1, b.Len())
}

func TestFreezeIsolation(t *testing.T) {
	t.Parallel()

	b := store.New()
	b.Set("x", "before")
	b.Set("list", []string{"a"})

	frozen := b.Freeze()

	b.Set("x", "after")
	b.Set("y", "new")
	if list, ok := b.Get("list"); ok {
		b.Set("list", append(list.([]string), "b"))
	}

	got, ok := frozen.Get("x")
	require.True(t, ok)
	assert.Equal(t, "before", got)

	_, ok = frozen.Get("y")
	assert.False(t, ok)

	list, ok := frozen.Get("list")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, list)
}

func TestSetAllSingleMerge(t *testing.T) {
	t.Parallel()

	b := store.New()
	b.Set("kept", true)
	b.SetAll(map[string]any{"a": 1, "b": 2})
	b.SetAll(nil)

	assert.Equal(t, []string{"a", "b", "kept"}, b.Keys())
}

func TestConcurrentWritersDistinctKeys(t *testing.T) {
	t.Parallel()

	b := store.New()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.SetAll(map[string]any{"key-" + strconv.Itoa(i): i})
		}()
	}
	wg.Wait()

	assert.Equal(t, 32, b.Len())
	for i := 0; i < 32; i++ {
		v, ok := b.Get("key-" + strconv.Itoa(i))
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}
