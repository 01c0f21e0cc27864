// Package store keeps a local copy of a server collection consistent with the server,
// following the load / mutate / reconcile-or-rollback protocol every list screen uses.
package store

import (
	"context"
	"sync"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/mathbombs/core/client"
)

var (
	// ErrPending is returned when a change is attempted while a conflicting one is in flight.
	ErrPending = errors.New("another change is still in progress")
	// ErrStaleLoad is returned when a load response was superseded by a newer load or a committed change.
	ErrStaleLoad = errors.New("load superseded by a newer state")
	ErrNotFound  = errors.New("item not found")
)

// Entity is an item of a collection, identified by a server-assigned id.
type Entity interface {
	EntityID() int
}

// Confirmer asks the user a blocking yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

type State int

const (
	Idle State = iota
	Loading
	Mutating
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Mutating:
		return "mutating"
	default:
		return "idle"
	}
}

// Snapshot is a copy of the store state, safe to render.
type Snapshot[T Entity] struct {
	Items        []T
	Loading      bool
	Pending      bool
	ErrorMessage string
}

// Store holds the authoritative local copy of one collection.
//
// Every Load takes a generation number and every committed change advances the generation,
// so a Load response that resolves after a newer Load started, or after a change committed,
// is discarded instead of overwriting fresher state.
type Store[T Entity] struct {
	mu         sync.Mutex
	items      []T
	gen        uint64
	loadGen    uint64
	loading    bool
	pending    bool
	rowPending map[int]bool
	errMsg     string
}

func New[T Entity]() *Store[T] {
	return &Store[T]{rowPending: make(map[int]bool)}
}

// Load replaces the items wholesale, in server order. On failure the last known items are kept.
func (s *Store[T]) Load(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loadGen = gen
	s.loading = true
	s.mu.Unlock()

	items, err := fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadGen == gen {
		s.loading = false
	}
	if s.gen != gen {
		return ErrStaleLoad
	}
	if err != nil {
		s.fail(err)
		return err
	}
	s.items = uniqueByID(items)
	s.errMsg = ""
	return nil
}

// Create appends the server's canonical entity; no temporary id is ever issued locally.
func (s *Store[T]) Create(ctx context.Context, create func(context.Context) (T, error)) (T, error) {
	var zero T
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return zero, ErrPending
	}
	s.pending = true
	s.errMsg = ""
	s.mu.Unlock()

	item, err := create(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	if err != nil {
		s.fail(err)
		return zero, err
	}
	s.upsert(item)
	s.commit()
	return item, nil
}

// Update replaces one row with the entity returned by `update`. Only that row is marked pending;
// the row keeps its previous value until the change is confirmed.
func (s *Store[T]) Update(ctx context.Context, id int, update func(ctx context.Context, current T) (T, error)) (T, error) {
	var zero T
	s.mu.Lock()
	current, ok := s.find(id)
	if !ok {
		s.mu.Unlock()
		return zero, ErrNotFound
	}
	if s.rowPending[id] {
		s.mu.Unlock()
		return zero, ErrPending
	}
	s.rowPending[id] = true
	s.errMsg = ""
	s.mu.Unlock()

	item, err := update(ctx, current)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rowPending, id)
	if err != nil {
		s.fail(err)
		return zero, err
	}
	s.replace(id, item)
	s.commit()
	return item, nil
}

// Remove asks for confirmation, then deletes the item. Declining is a no-op (false, nil).
func (s *Store[T]) Remove(
	ctx context.Context,
	id int,
	prompt string,
	confirm Confirmer,
	remove func(ctx context.Context, current T) error,
) (bool, error) {
	vala.BeginValidation().Validate(
		vala.IsNotNil(confirm, "confirm"),
	).CheckAndPanic()

	s.mu.Lock()
	current, ok := s.find(id)
	busy := s.pending
	s.mu.Unlock()
	if !ok {
		return false, ErrNotFound
	}
	if busy {
		return false, ErrPending
	}

	if !confirm.Confirm(prompt) {
		return false, nil
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return false, ErrPending
	}
	s.pending = true
	s.errMsg = ""
	s.mu.Unlock()

	err := remove(ctx, current)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	if err != nil {
		s.fail(err)
		return false, err
	}
	s.drop(id)
	s.commit()
	return true, nil
}

// Items returns a copy of the items in order.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}

func (s *Store[T]) Get(id int) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(id)
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Pending reports whether a create or a delete is in flight.
func (s *Store[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// RowPending reports whether an update of the row is in flight.
func (s *Store[T]) RowPending(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowPending[id]
}

func (s *Store[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.pending || len(s.rowPending) > 0:
		return Mutating
	case s.loading:
		return Loading
	default:
		return Idle
	}
}

// ErrorMessage is the message of the most recent failed operation, or "".
func (s *Store[T]) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *Store[T]) DismissError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot[T]{
		Items:        append([]T(nil), s.items...),
		Loading:      s.loading,
		Pending:      s.pending || len(s.rowPending) > 0,
		ErrorMessage: s.errMsg,
	}
}

// helpers; callers hold s.mu

func (s *Store[T]) fail(err error) {
	s.errMsg = client.Message(err)
}

func (s *Store[T]) commit() {
	s.gen++
	s.errMsg = ""
}

func (s *Store[T]) index(id int) int {
	for i, item := range s.items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) find(id int) (T, bool) {
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

func (s *Store[T]) upsert(item T) {
	if i := s.index(item.EntityID()); i >= 0 {
		s.items[i] = item
		return
	}
	s.items = append(s.items, item)
}

// replace does not resurrect a row removed while its update was in flight.
func (s *Store[T]) replace(id int, item T) {
	if i := s.index(id); i >= 0 {
		s.items[i] = item
	}
}

func (s *Store[T]) drop(id int) {
	if i := s.index(id); i >= 0 {
		s.items = append(s.items[:i:i], s.items[i+1:]...)
	}
}

// uniqueByID keeps the first position of every id and the last value seen for it.
func uniqueByID[T Entity](items []T) []T {
	out := make([]T, 0, len(items))
	pos := make(map[int]int, len(items))
	for _, item := range items {
		if i, ok := pos[item.EntityID()]; ok {
			out[i] = item
			continue
		}
		pos[item.EntityID()] = len(out)
		out = append(out, item)
	}
	return out
}
