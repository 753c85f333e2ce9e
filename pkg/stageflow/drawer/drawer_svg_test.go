package drawer_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsight/go-stageflow/pkg/stageflow/drawer"
)

func TestSetOutcomeConcurrent(t *testing.T) {
	t.Parallel()

	const stages = 16

	file := filepath.Join(t.TempDir(), "run.gv")
	d := drawer.NewSVGDrawer(file)

	names := make([]string, 0, stages)
	for i := 0; i < stages; i++ {
		name := fmt.Sprintf("member-%d", i)
		names = append(names, name)
		require.NoError(t, d.AddStage(name))
	}

	// outcomes arrive from parallel stages in completion order
	errs := make(chan error, stages)

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			errs <- d.SetOutcome(name, "ok", time.Duration(i+1)*time.Millisecond)
		}(i, name)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	require.NoError(t, d.Draw())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "member-0")
	assert.Contains(t, string(data), "member-15")
}

func TestSetOutcomeUnknownStage(t *testing.T) {
	t.Parallel()

	d := drawer.NewSVGDrawer(filepath.Join(t.TempDir(), "run.gv"))

	err := d.SetOutcome("never-added", "ok", time.Millisecond)
	require.Error(t, err)
}
