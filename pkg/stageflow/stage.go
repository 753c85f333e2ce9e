package stageflow

import (
	"context"
)

// Stage is the atomic unit of pipeline work. A stage reads its declared
// required keys from the view it receives, performs collaborator work, and
// returns the value for its declared output key. The engine validates the
// declared contract before the stage is ever invoked: required keys are
// guaranteed present, and the output key is written by the engine after Run
// returns.
//
// A stage must not assume any ordering relative to concurrent siblings and
// must not keep a reference to the view beyond Run.
type Stage interface {
	Name() string
	Requires() []string
	// Produces returns the state key this stage writes, or "" for
	// artifact-only stages.
	Produces() string
	Run(ctx context.Context, view View) (any, error)
}

// ArtifactProducer marks a stage that registers named byte payloads against
// the run in addition to (or instead of) writing its output key. Only
// stages implementing this interface receive a sink; all other stages are
// confined to their declared output key.
type ArtifactProducer interface {
	Stage
	RunArtifacts(ctx context.Context, view View, sink ArtifactSink) (any, error)
}

// RunFunc adapts a function to the Stage execution contract.
type RunFunc func(ctx context.Context, view View) (any, error)

// NewStage returns a stage with a free-form collaborator result. The
// returned value is written to produces verbatim.
func NewStage(name string, requires []string, produces string, fn RunFunc) Stage {
	return &funcStage{name: name, requires: requires, produces: produces, fn: fn}
}

// NewStructuredStage returns a stage whose result is the typed record T.
// The structured and free-form variants are distinct by construction:
// choosing one is an explicit pipeline-definition decision, never an
// implicit interaction between flags.
func NewStructuredStage[T any](name string, requires []string, produces string, fn func(ctx context.Context, view View) (T, error)) Stage {
	return &funcStage{
		name:     name,
		requires: requires,
		produces: produces,
		fn: func(ctx context.Context, view View) (any, error) {
			out, err := fn(ctx, view)
			if err != nil {
				return nil, err
			}

			return out, nil
		},
	}
}

// ArtifactRunFunc adapts a function to the artifact-producing execution
// contract.
type ArtifactRunFunc func(ctx context.Context, view View, sink ArtifactSink) (any, error)

// NewArtifactStage returns an artifact-producing stage. produces may be ""
// when the stage's only deliverable is its registered artifacts.
func NewArtifactStage(name string, requires []string, produces string, fn ArtifactRunFunc) Stage {
	return &artifactFuncStage{
		funcStage: funcStage{name: name, requires: requires, produces: produces},
		fn:        fn,
	}
}

type funcStage struct {
	name     string
	requires []string
	produces string
	fn       RunFunc
}

func (s *funcStage) Name() string { return s.name }

func (s *funcStage) Requires() []string { return s.requires }

func (s *funcStage) Produces() string { return s.produces }

func (s *funcStage) Run(ctx context.Context, view View) (any, error) {
	return s.fn(ctx, view)
}

type artifactFuncStage struct {
	funcStage
	fn ArtifactRunFunc
}

func (s *artifactFuncStage) Run(ctx context.Context, view View) (any, error) {
	return nil, ErrArtifactSinkRequired
}

func (s *artifactFuncStage) RunArtifacts(ctx context.Context, view View, sink ArtifactSink) (any, error) {
	return s.fn(ctx, view, sink)
}
