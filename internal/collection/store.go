package collection

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("entity not found in collection")

// Entity is anything with a stable identity.
type Entity interface {
	Identity() uuid.UUID
}

// Store is an ordered, in-memory view of one user's entities. The head of the list is the newest entity.
type Store[T Entity] struct {
	mu       sync.RWMutex
	entities []T
}

func NewStore[T Entity](initial []T) *Store[T] {
	s := &Store[T]{}
	s.Reload(initial)
	return s
}

// List returns a copy of the current contents, newest first.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, len(s.entities))
	copy(result, s.entities)
	return result
}

func (s *Store[T]) Get(id uuid.UUID) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.entities[i], true
	}
	var zero T
	return zero, false
}

// Add inserts the entity at the head.
func (s *Store[T]) Add(entity T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities = append(s.entities, entity)
	copy(s.entities[1:], s.entities[:len(s.entities)-1])
	s.entities[0] = entity
}

// Update replaces the entity with the same identity in place. Returns ErrNotFound when it is absent.
func (s *Store[T]) Update(entity T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(entity.Identity())
	if i < 0 {
		return ErrNotFound
	}
	s.entities[i] = entity
	return nil
}

// Remove drops the entity with the given id. Removing an absent id is a no-op and reports false.
func (s *Store[T]) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.entities = append(s.entities[:i], s.entities[i+1:]...)
	return true
}

// Reload replaces the whole contents. The given slice must already be ordered newest first.
func (s *Store[T]) Reload(entities []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities = make([]T, len(entities))
	copy(s.entities, entities)
}

func (s *Store[T]) indexOf(id uuid.UUID) int {
	for i, e := range s.entities {
		if e.Identity() == id {
			return i
		}
	}
	return -1
}
