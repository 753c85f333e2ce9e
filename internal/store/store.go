// Package store holds the synchronized blackboard backing a pipeline run.
//
// The blackboard is the only shared mutable resource of a run. During the
// sequential phase it has a single writer, so readers never contend; during
// the fan-out phase stages read frozen snapshots and write through private
// buffers that merge back in a single critical section.
package store

import (
	"sort"
	"sync"
)

// Blackboard is a mutex-guarded key/value store. Keys are unique; a later
// writer may overwrite, but concurrent read-modify-write against the live
// board is not atomic and callers must not rely on it being so.
type Blackboard struct {
	mu      sync.RWMutex
	entries map[string]any
}

func New() *Blackboard {
	return &Blackboard{entries: make(map[string]any)}
}

// NewFrom seeds a blackboard with a copy of init. The caller keeps ownership
// of init; later mutations of it are not observed.
func NewFrom(init map[string]any) *Blackboard {
	entries := make(map[string]any, len(init))
	for k, v := range init {
		entries[k] = v
	}

	return &Blackboard{entries: entries}
}

func (b *Blackboard) Get(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.entries[key]

	return v, ok
}

func (b *Blackboard) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[key] = value
}

// SetAll merges every entry of values into the board under a single lock
// acquisition. This is the merge point for fan-out write buffers.
func (b *Blackboard) SetAll(values map[string]any) {
	if len(values) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for k, v := range values {
		b.entries[k] = v
	}
}

func (b *Blackboard) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func (b *Blackboard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries)
}

// Freeze returns an immutable copy of the board. List-typed values are
// copied as well so a snapshot holder cannot observe in-place appends made
// by after-hooks on the live board.
func (b *Blackboard) Freeze() *Frozen {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := make(map[string]any, len(b.entries))
	for k, v := range b.entries {
		if list, ok := v.([]string); ok {
			cp := make([]string, len(list))
			copy(cp, list)
			entries[k] = cp

			continue
		}
		entries[k] = v
	}

	return &Frozen{entries: entries}
}

// Frozen is a read-only snapshot of a Blackboard.
type Frozen struct {
	entries map[string]any
}

func (f *Frozen) Get(key string) (any, bool) {
	v, ok := f.entries[key]

	return v, ok
}

func (f *Frozen) Keys() []string {
	keys := make([]string, 0, len(f.entries))
	for k := range f.entries {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func (f *Frozen) Len() int {
	return len(f.entries)
}
