package stageflow

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet     = errors.New("pipeline must be set")
	ErrStageMustBeSet        = errors.New("stage must be set")
	ErrFanOutSealed          = errors.New("fan-out group already set")
	ErrArtifactExists        = errors.New("artifact already registered")
	ErrArtifactNameMustBeSet = errors.New("artifact name must be set")
	ErrArtifactSinkRequired  = errors.New("artifact stage requires a sink")
)

// ConfigError reports a malformed pipeline: a required key without an
// earlier producer, a duplicate output key, a duplicate stage name, or an
// initial state missing a declared input. Configuration errors surface at
// assembly time, or at the very start of Run for caller-supplied inputs,
// never mid-run.
type ConfigError struct {
	Stage  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Stage == "" {
		return "invalid pipeline: " + e.Reason
	}

	return fmt.Sprintf("invalid pipeline: stage %q: %s", e.Stage, e.Reason)
}

func configErrorf(stage, format string, args ...any) error {
	return &ConfigError{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

// IsConfig reports whether err is a pipeline configuration error.
func IsConfig(err error) bool {
	var ce *ConfigError

	return errors.As(err, &ce)
}

// StageError reports a collaborator failure inside a stage. In the
// sequential phase it aborts the run; in the fan-out phase it is confined
// to its member and aggregated into the RunOutcome.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err stems from an exceeded deadline or a
// cancelled run. Timeouts sequence identically to stage failures.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
