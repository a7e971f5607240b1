// Package store holds the client-side copy of the branch collection. It is
// the only mutable shared state in the console; the coordinator writes,
// everyone else reads.
package store

import (
	"sync"

	"tablero/internal/model"
)

// Store is an in-memory branch collection keyed by id, preserving the
// upstream listing order. All accessors deal in deep copies so callers can
// never mutate held state through a returned pointer.
type Store struct {
	mu       sync.RWMutex
	branches map[string]*model.Branch
	order    []string
}

func New() *Store {
	return &Store{branches: make(map[string]*model.Branch)}
}

// SetAll replaces the whole collection.
func (s *Store) SetAll(branches []*model.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.branches = make(map[string]*model.Branch, len(branches))
	s.order = s.order[:0]
	for _, b := range branches {
		if _, seen := s.branches[b.ID]; !seen {
			s.order = append(s.order, b.ID)
		}
		s.branches[b.ID] = b.Clone()
	}
}

// Get returns a copy of the branch with the given id.
func (s *Store) Get(id string) (*model.Branch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.branches[id]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// List returns copies of all branches in listing order.
func (s *Store) List() []*model.Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Branch, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.branches[id].Clone())
	}
	return out
}

// Replace swaps in a new value for an already-held branch. Unknown ids are
// ignored; the collection membership only changes through SetAll.
func (s *Store) Replace(b *model.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.branches[b.ID]; !ok {
		return
	}
	s.branches[b.ID] = b.Clone()
}

// Snapshot returns pre-mutation copies of the given ids, skipping unknown
// ones. The result is the rollback set for an optimistic mutation.
func (s *Store) Snapshot(ids []string) map[string]*model.Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*model.Branch, len(ids))
	for _, id := range ids {
		if b, ok := s.branches[id]; ok {
			out[id] = b.Clone()
		}
	}
	return out
}

// Len reports how many branches are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.branches)
}
