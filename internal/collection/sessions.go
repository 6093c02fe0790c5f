package collection

import (
	"context"
	"sync"
	"time"

	"github.com/cofrinho/cofrinho/internal/event_bus"
	"github.com/cofrinho/cofrinho/internal/utils"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultIdleTimeout = 30 * time.Minute
	sweepInterval      = time.Minute
	maxLoadAttempts    = 3
)

// Loader fetches a user's full collection, newest first.
type Loader[T Entity] func(ctx context.Context, userId int) ([]T, error)

type userSession[T Entity] struct {
	store    *Store[T]
	version  uint64
	lastUsed time.Time
}

// Sessions keeps one lazily loaded Store per user.
// Every mutation bumps the user's version; a load that raced with a mutation is not cached.
// Sessions idle for longer than the idle timeout are dropped and reloaded on next access.
type Sessions[T Entity] struct {
	mu          sync.Mutex
	users       map[int]*userSession[T]
	tick        uint64
	lastSweep   time.Time
	loader      Loader[T]
	clock       utils.Clock
	idleTimeout time.Duration
}

func NewSessions[T Entity](loader Loader[T], clock utils.Clock) *Sessions[T] {
	return &Sessions[T]{
		users:       make(map[int]*userSession[T]),
		loader:      loader,
		clock:       clock,
		idleTimeout: DefaultIdleTimeout,
		lastSweep:   clock.Now(),
	}
}

// Load returns the user's Store, calling the loader on first access.
// A failed load leaves no session behind, so the next call retries.
func (s *Sessions[T]) Load(ctx context.Context, userId int) (*Store[T], error) {
	for attempt := 1; ; attempt++ {
		s.mu.Lock()
		s.sweep()
		if store, ok := s.active(userId); ok {
			s.mu.Unlock()
			return store, nil
		}
		version := s.versionOf(userId)
		s.mu.Unlock()

		entities, err := s.loader(ctx, userId)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if store, ok := s.active(userId); ok {
			s.mu.Unlock()
			return store, nil
		}
		if s.versionOf(userId) == version {
			store := NewStore(entities)
			s.session(userId).store = store
			s.mu.Unlock()
			log.Tracef("loaded session for user %d with %d entities", userId, len(entities))
			return store, nil
		}
		s.mu.Unlock()

		if attempt == maxLoadAttempts {
			log.Debugf("collection of user %d kept changing while loading, serving it uncached", userId)
			return NewStore(entities), nil
		}
	}
}

// Peek returns the user's Store only if it is already loaded.
func (s *Sessions[T]) Peek(userId int) (*Store[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active(userId)
}

// Mutate records that the user's persisted collection changed and applies the change to the
// loaded Store, if any. When apply fails the Store is dropped and reloaded on next access.
func (s *Sessions[T]) Mutate(userId int, apply func(store *Store[T]) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, loaded := s.active(userId)
	s.bump(userId)
	if !loaded {
		return
	}
	if err := apply(store); err != nil {
		log.Debugf("session of user %d out of sync (%v), reloading on next read", userId, err)
		s.session(userId).store = nil
	}
}

func (s *Sessions[T]) Invalidate(userId int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bump(userId)
	s.session(userId).store = nil
}

// InvalidateOnSignOut drops a user's session when they sign out.
func (s *Sessions[T]) InvalidateOnSignOut(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.UserSignedOutType, func(e event_bus.EventT[event_bus.UserSignedOut]) error {
		s.Invalidate(e.Data.UserId)
		return nil
	})
}

// active returns the loaded, non-expired Store of the user and marks it used. Caller holds mu.
func (s *Sessions[T]) active(userId int) (*Store[T], bool) {
	sess, ok := s.users[userId]
	if !ok || sess.store == nil {
		return nil, false
	}
	now := s.clock.Now()
	if now.Sub(sess.lastUsed) > s.idleTimeout {
		sess.store = nil
		return nil, false
	}
	sess.lastUsed = now
	return sess.store, true
}

func (s *Sessions[T]) session(userId int) *userSession[T] {
	sess, ok := s.users[userId]
	if !ok {
		sess = &userSession[T]{}
		s.users[userId] = sess
	}
	sess.lastUsed = s.clock.Now()
	return sess
}

func (s *Sessions[T]) versionOf(userId int) uint64 {
	if sess, ok := s.users[userId]; ok {
		return sess.version
	}
	return 0
}

// bump assigns a fresh version from a global counter, so a version is never reused even after eviction.
func (s *Sessions[T]) bump(userId int) {
	s.tick++
	s.session(userId).version = s.tick
}

func (s *Sessions[T]) sweep() {
	now := s.clock.Now()
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for userId, sess := range s.users {
		if now.Sub(sess.lastUsed) > s.idleTimeout {
			delete(s.users, userId)
			log.Tracef("evicted idle session of user %d", userId)
		}
	}
}
