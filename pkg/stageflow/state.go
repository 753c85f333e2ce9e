package stageflow

import (
	"github.com/locsight/go-stageflow/internal/store"
)

// View is a read-only window on pipeline state. Stages receive a View:
// their writes travel through the returned result value, never through the
// state directly.
type View interface {
	// Get returns the value stored under key, if any.
	Get(key string) (any, bool)
	// Keys returns every stored key in lexical order.
	Keys() []string
}

// State is the mutable blackboard threaded through a pipeline run. Values
// are free text, structured records, or ordered lists of text. Set is
// immediately visible to every holder of the same State; concurrent
// read-modify-write is not atomic.
type State interface {
	View

	Set(key string, value any)

	// Snapshot returns an immutable copy of the current state. The fan-out
	// phase reads snapshots so concurrent members never race the live
	// blackboard.
	Snapshot() View
}

// NewState returns an empty State.
func NewState() State {
	return boardState{Blackboard: store.New()}
}

// NewStateFrom returns a State seeded with a copy of init.
func NewStateFrom(init map[string]any) State {
	return boardState{Blackboard: store.NewFrom(init)}
}

type boardState struct {
	*store.Blackboard
}

func (s boardState) Snapshot() View {
	return s.Blackboard.Freeze()
}

// TextValue reads a string value from a view. It returns false when the key
// is absent or holds a non-text value.
func TextValue(view View, key string) (string, bool) {
	v, ok := view.Get(key)
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// ListValue reads an ordered list of text from a view.
func ListValue(view View, key string) ([]string, bool) {
	v, ok := view.Get(key)
	if !ok {
		return nil, false
	}

	list, ok := v.([]string)

	return list, ok
}
