package form

import (
	"context"
	"sync"
)

// Store holds the state of one form.
//
// Update applies fn to a private copy of the latest state and commits it
// atomically. Implementations may call fn more than once (optimistic
// retries), so fn must only mutate the state it is given. Returning an error
// from fn aborts the update and leaves the stored state untouched.
type Store interface {
	Get(ctx context.Context) (State, error)
	Update(ctx context.Context, fn func(*State) error) (State, error)
}

// MemoryStore is a process-local Store guarded by a mutex.
type MemoryStore struct {
	mu    sync.Mutex
	state State
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: NewState()}
}

func (s *MemoryStore) Get(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, fn func(*State) error) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	next.normalize()
	if err := fn(&next); err != nil {
		return State{}, err
	}
	s.state = next
	return next.Clone(), nil
}
