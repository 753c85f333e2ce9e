package stageflow

import (
	"time"

	"github.com/locsight/go-stageflow/pkg/log"
	"github.com/locsight/go-stageflow/pkg/stageflow/model"
)

// Option configures a pipeline at construction time.
type Option func(p *Pipeline) error

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			return configErrorf("", "logger must not be nil")
		}

		p.logger = logger

		return nil
	}
}

// WithHooks attaches a hook registry. The default registry is empty but
// usable; use this when hooks are shared across pipelines.
func WithHooks(hooks *HookRegistry) Option {
	return func(p *Pipeline) error {
		if hooks == nil {
			return configErrorf("", "hook registry must not be nil")
		}

		p.hooks = hooks

		return nil
	}
}

// WithReporters attaches run observers such as the drawer or measure.
func WithReporters(reporters ...model.Reporter) Option {
	return func(p *Pipeline) error {
		for _, rep := range reporters {
			if rep == nil {
				return configErrorf("", "reporter must not be nil")
			}
		}

		p.reporters = append(p.reporters, reporters...)

		return nil
	}
}

// WithFanOutLimit caps how many fan-out members run at once. The default is
// the group width, which is small and known at definition time.
func WithFanOutLimit(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return configErrorf("", "fan-out limit must be at least 1")
		}

		p.fanOutLimit = n

		return nil
	}
}

// WithStageTimeout bounds every stage's execution. A stage exceeding the
// deadline fails with a timeout outcome; it sequences exactly like any
// other stage failure.
func WithStageTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d <= 0 {
			return configErrorf("", "stage timeout must be positive")
		}

		p.stageTimeout = d

		return nil
	}
}
