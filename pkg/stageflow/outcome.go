package stageflow

import (
	"sync"
	"time"

	"github.com/locsight/go-stageflow/pkg/stageflow/model"
)

// Status is the terminal state of one stage within a run.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StageOutcome records the terminal status of a single stage.
type StageOutcome struct {
	Stage    string
	Phase    model.StageType
	Status   Status
	Err      error
	Duration time.Duration
}

// RunOutcome is the ordered per-stage report of one pipeline execution.
// Every stage declared in the pipeline has exactly one entry, whether the
// run completed or aborted.
type RunOutcome struct {
	RunID  string
	Stages []StageOutcome
}

// Stage returns the outcome entry for the named stage.
func (o *RunOutcome) Stage(name string) (StageOutcome, bool) {
	for _, s := range o.Stages {
		if s.Stage == name {
			return s, true
		}
	}

	return StageOutcome{}, false
}

// Failed reports whether any stage failed.
func (o *RunOutcome) Failed() bool {
	for _, s := range o.Stages {
		if s.Status == StatusFailed {
			return true
		}
	}

	return false
}

// Partial reports whether the run completed with partial artifacts: the
// sequential phase succeeded, at least one fan-out member failed and at
// least one completed. A partial run is not a pipeline failure.
func (o *RunOutcome) Partial() bool {
	var parallelFailed, parallelOK bool

	for _, s := range o.Stages {
		switch s.Phase {
		case model.SequentialStageType:
			if s.Status == StatusFailed {
				return false
			}
		case model.ParallelStageType:
			switch s.Status {
			case StatusFailed:
				parallelFailed = true
			case StatusOK:
				parallelOK = true
			case StatusSkipped:
			}
		}
	}

	return parallelFailed && parallelOK
}

// recorder assembles a RunOutcome. Entries are pre-populated as skipped in
// declaration order so an aborted run still reports every stage; record
// overwrites the entry in place, keeping the order stable no matter when
// parallel members finish.
type recorder struct {
	mu      sync.Mutex
	index   map[string]int
	outcome *RunOutcome
}

func newRecorder(runID string, infos []*model.StageInfo) *recorder {
	rec := &recorder{
		index: make(map[string]int, len(infos)),
		outcome: &RunOutcome{
			RunID:  runID,
			Stages: make([]StageOutcome, len(infos)),
		},
	}

	for i, info := range infos {
		rec.index[info.Name] = i
		rec.outcome.Stages[i] = StageOutcome{
			Stage:  info.Name,
			Phase:  info.Type,
			Status: StatusSkipped,
		}
	}

	return rec
}

func (r *recorder) record(o StageOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.index[o.Stage]; ok {
		r.outcome.Stages[i] = o
	}
}

func (r *recorder) get(name string) StageOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.index[name]; ok {
		return r.outcome.Stages[i]
	}

	return StageOutcome{}
}
