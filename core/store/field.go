package store

import "sync"

// Field is an editable value with a committed (server confirmed) value and a draft (what the
// user typed). A failed write reverts the draft so the screen shows the confirmed value again.
type Field[V comparable] struct {
	mu        sync.Mutex
	committed V
	draft     V
}

func NewField[V comparable](committed V) *Field[V] {
	return &Field[V]{committed: committed, draft: committed}
}

// Value is what the edit control renders.
func (f *Field[V]) Value() V {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

func (f *Field[V]) Committed() V {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.committed
}

func (f *Field[V]) Edit(v V) {
	f.mu.Lock()
	f.draft = v
	f.mu.Unlock()
}

func (f *Field[V]) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft != f.committed
}

// Commit makes the draft the confirmed value.
func (f *Field[V]) Commit() V {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = f.draft
	return f.committed
}

// Revert drops the draft.
func (f *Field[V]) Revert() V {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = f.committed
	return f.draft
}

// Reset sets both values, e.g. after a reload.
func (f *Field[V]) Reset(v V) {
	f.mu.Lock()
	f.committed = v
	f.draft = v
	f.mu.Unlock()
}
