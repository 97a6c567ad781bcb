// Package optimistic implements a client-side collection cache with
// optimistic mutations: every change is applied locally first, then committed
// or rolled back when the remote call settles. Rollback always restores the
// full pre-mutation snapshot, never a partial undo.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrBusy is returned when a mutation is issued while another one on the
	// same collection is still in flight.
	ErrBusy = errors.New("optimistic: collection busy")
	// ErrNotFound is returned when a mutation targets an id that is not in
	// the collection.
	ErrNotFound = errors.New("optimistic: record not in collection")
)

// Result is the normalized outcome of a remote call.
type Result[T any] struct {
	Success bool
	Data    T
	Message string
}

// MutationError carries the failure message after a rollback has completed.
// The collection is guaranteed to be back in its pre-mutation state by the
// time the caller observes this error.
type MutationError struct {
	Message string
	Cause   error
}

func (e *MutationError) Error() string {
	if e.Message != "" {
		return "optimistic: mutation failed: " + e.Message
	}
	return "optimistic: mutation failed"
}

func (e *MutationError) Unwrap() error { return e.Cause }

// Record wraps one entity with the store-managed flags.
type Record[T any] struct {
	Value T
	// TempID is set on created-but-unconfirmed records and never reused as
	// a real identifier.
	TempID     string
	Optimistic bool
}

// Config supplies the entity accessors the store cannot derive itself.
type Config[T any] struct {
	// ID extracts the server-assigned identifier. Required.
	ID func(T) int64
	// ToggleActive returns a copy with the active flag flipped. Required
	// only when ToggleStatus is used.
	ToggleActive func(T) T
}

// Store holds one page's entity collection. All methods are safe for
// concurrent use; overlapping mutations on the same collection are rejected
// with ErrBusy rather than raced.
type Store[T any] struct {
	cfg Config[T]

	mu      sync.Mutex
	records []Record[T]
	loading bool
	lastErr string
	busy    bool
}

// NewStore constructs an empty collection store.
func NewStore[T any](cfg Config[T]) *Store[T] {
	if cfg.ID == nil {
		panic("optimistic: Config.ID is required")
	}
	return &Store[T]{cfg: cfg}
}

// Items returns a copy of the current entity values in display order.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.records))
	for i, r := range s.records {
		out[i] = r.Value
	}
	return out
}

// Records returns a copy of the current records including store flags.
func (s *Store[T]) Records() []Record[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record[T](nil), s.records...)
}

// Loading reports whether a mutation or reload is outstanding.
func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the message of the last failed operation, empty after a
// successful one.
func (s *Store[T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// begin snapshots the collection and marks it busy.
func (s *Store[T]) begin() ([]Record[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return nil, ErrBusy
	}
	s.busy = true
	s.loading = true
	s.lastErr = ""
	return append([]Record[T](nil), s.records...), nil
}

// finish clears the loading flag. Runs on every exit path.
func (s *Store[T]) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.loading = false
}

// rollback restores the pre-mutation snapshot and records the failure.
func (s *Store[T]) rollback(snapshot []Record[T], message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = snapshot
	s.lastErr = message
}

func failureMessage(res interface{ message() string }, err error) string {
	if err != nil {
		return err.Error()
	}
	return res.message()
}

func (r Result[T]) message() string { return r.Message }

// Create appends the item with a temporary identifier, then invokes the
// remote call. On success the temporary record is replaced by the
// server-returned one, matched by temporary id. On failure the collection is
// restored to its exact pre-call snapshot.
func (s *Store[T]) Create(ctx context.Context, item T, call func(context.Context, T) (Result[T], error)) error {
	snapshot, err := s.begin()
	if err != nil {
		return err
	}
	defer s.finish()

	tempID := uuid.NewString()
	s.mu.Lock()
	s.records = append(s.records, Record[T]{Value: item, TempID: tempID, Optimistic: true})
	s.mu.Unlock()

	res, err := call(ctx, item)
	if err != nil || !res.Success {
		msg := failureMessage(res, err)
		s.rollback(snapshot, msg)
		return &MutationError{Message: msg, Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.TempID == tempID {
			s.records[i] = Record[T]{Value: res.Data}
			break
		}
	}
	return nil
}

// Update patches the record matching the item's id in place, then invokes
// the remote call. On failure the full pre-call snapshot is restored.
func (s *Store[T]) Update(ctx context.Context, item T, call func(ctx context.Context, id int64, item T) (Result[T], error)) error {
	snapshot, err := s.begin()
	if err != nil {
		return err
	}
	defer s.finish()

	id := s.cfg.ID(item)
	if !s.apply(id, func(r *Record[T]) {
		r.Value = item
		r.Optimistic = true
	}) {
		s.rollback(snapshot, ErrNotFound.Error())
		return fmt.Errorf("update id %d: %w", id, ErrNotFound)
	}

	res, err := call(ctx, id, item)
	if err != nil || !res.Success {
		msg := failureMessage(res, err)
		s.rollback(snapshot, msg)
		return &MutationError{Message: msg, Cause: err}
	}

	s.apply(id, func(r *Record[T]) {
		r.Value = res.Data
		r.Optimistic = false
	})
	return nil
}

// Delete removes the record matching the item's id, then invokes the remote
// call. On failure the full snapshot is re-inserted, restoring the original
// contents and order.
func (s *Store[T]) Delete(ctx context.Context, item T, call func(ctx context.Context, id int64) (Result[struct{}], error)) error {
	snapshot, err := s.begin()
	if err != nil {
		return err
	}
	defer s.finish()

	id := s.cfg.ID(item)
	s.mu.Lock()
	found := false
	kept := s.records[:0:0]
	for _, r := range s.records {
		if !r.Optimistic && s.cfg.ID(r.Value) == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	s.mu.Unlock()
	if !found {
		s.rollback(snapshot, ErrNotFound.Error())
		return fmt.Errorf("delete id %d: %w", id, ErrNotFound)
	}

	res, err := call(ctx, id)
	if err != nil || !res.Success {
		msg := failureMessage(res, err)
		s.rollback(snapshot, msg)
		return &MutationError{Message: msg, Cause: err}
	}
	return nil
}

// ToggleStatus flips the active flag on the record matching the item's id,
// then invokes the remote call. On success the record is replaced with the
// server data; on failure the full snapshot is restored.
func (s *Store[T]) ToggleStatus(ctx context.Context, item T, call func(ctx context.Context, id int64) (Result[T], error)) error {
	if s.cfg.ToggleActive == nil {
		panic("optimistic: Config.ToggleActive is required for ToggleStatus")
	}
	snapshot, err := s.begin()
	if err != nil {
		return err
	}
	defer s.finish()

	id := s.cfg.ID(item)
	if !s.apply(id, func(r *Record[T]) {
		r.Value = s.cfg.ToggleActive(r.Value)
		r.Optimistic = true
	}) {
		s.rollback(snapshot, ErrNotFound.Error())
		return fmt.Errorf("toggle id %d: %w", id, ErrNotFound)
	}

	res, err := call(ctx, id)
	if err != nil || !res.Success {
		msg := failureMessage(res, err)
		s.rollback(snapshot, msg)
		return &MutationError{Message: msg, Cause: err}
	}

	s.apply(id, func(r *Record[T]) {
		r.Value = res.Data
		r.Optimistic = false
	})
	return nil
}

// Reload replaces the whole collection with the remote result. On failure
// the existing collection is left untouched.
func (s *Store[T]) Reload(ctx context.Context, call func(context.Context) (Result[[]T], error)) error {
	if _, err := s.begin(); err != nil {
		return err
	}
	defer s.finish()

	res, err := call(ctx)
	if err != nil || !res.Success {
		msg := failureMessage(Result[T]{Message: res.Message}, err)
		s.mu.Lock()
		s.lastErr = msg
		s.mu.Unlock()
		return &MutationError{Message: msg, Cause: err}
	}

	records := make([]Record[T], len(res.Data))
	for i, v := range res.Data {
		records[i] = Record[T]{Value: v}
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}

// apply runs fn against the confirmed record with the given id. Reports
// whether a record matched.
func (s *Store[T]) apply(id int64, fn func(*Record[T])) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].TempID == "" && s.cfg.ID(s.records[i].Value) == id {
			fn(&s.records[i])
			return true
		}
	}
	return false
}
