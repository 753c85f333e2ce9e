package stageflow

import (
	"context"
	"sync"
)

type hookDecision int

const (
	decisionContinue hookDecision = iota
	decisionOverride
	decisionAbort
)

// HookResult is the explicit tri-state outcome of a before-hook. Control
// flow is always a typed value: Continue proceeds to execution, Override
// supplies a substitute result and skips execution, Abort fails the stage
// without executing it.
type HookResult struct {
	decision hookDecision
	value    any
	err      error
}

// Continue proceeds to normal stage execution.
func Continue() HookResult {
	return HookResult{decision: decisionContinue}
}

// Override short-circuits the stage: value is written to the stage's output
// key and the stage completes without executing.
func Override(value any) HookResult {
	return HookResult{decision: decisionOverride, value: value}
}

// Abort fails the stage before it executes.
func Abort(err error) HookResult {
	return HookResult{decision: decisionAbort, err: err}
}

// BeforeHook runs before a stage executes, with a mutable view of the
// state. It may write additional keys, short-circuit the stage, or abort
// it.
type BeforeHook func(ctx context.Context, state State) HookResult

// AfterHook runs after a stage reaches a terminal status, whether it
// completed or failed, and receives the outcome for bookkeeping. After-
// hooks are pure side-effect points: they cannot alter the outcome or the
// shape of the pipeline. List-typed bookkeeping writes read-modify-write
// the state and are therefore only safe on sequential stages.
type AfterHook func(ctx context.Context, state State, outcome StageOutcome)

// HookRegistry binds lifecycle callbacks to stage names. Registration is
// expected to finish before the pipeline runs; hooks registered mid-run are
// not picked up by stages already dispatched.
type HookRegistry struct {
	mu     sync.RWMutex
	before map[string][]BeforeHook
	after  map[string][]AfterHook
}

func NewHookRegistry() *HookRegistry {
	return &HookRegistry{
		before: make(map[string][]BeforeHook),
		after:  make(map[string][]AfterHook),
	}
}

// Before registers hook to run before the named stage. Hooks run in
// registration order; the first non-Continue result wins and later
// before-hooks are not invoked.
func (r *HookRegistry) Before(stage string, hook BeforeHook) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.before[stage] = append(r.before[stage], hook)
}

// After registers hook to run after the named stage.
func (r *HookRegistry) After(stage string, hook AfterHook) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.after[stage] = append(r.after[stage], hook)
}

func (r *HookRegistry) beforeHooks(stage string) []BeforeHook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.before[stage]
}

func (r *HookRegistry) afterHooks(stage string) []AfterHook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.after[stage]
}
