package stageflow

import (
	"time"

	"github.com/pkg/errors"

	"github.com/locsight/go-stageflow/pkg/stageflow/model"
)

// PathStep is one stage on the critical path of a run.
type PathStep struct {
	Stage    string
	Duration time.Duration
}

// SlowestPath walks the validated stage graph from start to end and returns
// the duration-weighted critical path of the most recent run: the chain of
// stages that bounded the run's wall-clock time. Useful for deciding which
// collaborator to speed up first.
func (p *Pipeline) SlowestPath() ([]PathStep, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	if err := p.finalize(); err != nil {
		return nil, err
	}

	adjacency, err := p.graph.AdjacencyMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read stage graph")
	}

	p.durMu.Lock()
	durations := make(map[string]time.Duration, len(p.durations))
	for name, d := range p.durations {
		durations[name] = d
	}
	p.durMu.Unlock()

	type walk struct {
		total time.Duration
		path  []string
	}

	memo := make(map[string]walk)

	var longest func(vertex string) walk
	longest = func(vertex string) walk {
		if w, ok := memo[vertex]; ok {
			return w
		}

		best := walk{}

		for next := range adjacency[vertex] {
			if w := longest(next); w.total >= best.total {
				best = w
			}
		}

		w := walk{
			total: best.total + durations[vertex],
			path:  append([]string{vertex}, best.path...),
		}
		memo[vertex] = w

		return w
	}

	full := longest(model.Start.Name)

	steps := make([]PathStep, 0, len(full.path))

	for _, name := range full.path {
		if name == model.Start.Name || name == model.End.Name {
			continue
		}

		steps = append(steps, PathStep{Stage: name, Duration: durations[name]})
	}

	return steps, nil
}
