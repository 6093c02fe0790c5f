package collection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cofrinho/cofrinho/internal/event_bus"
	"github.com/cofrinho/cofrinho/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	id   uuid.UUID
	text string
}

func (n note) Identity() uuid.UUID { return n.id }

func testClock() *utils.MockClock {
	return &utils.MockClock{FixedNow: time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)}
}

func newNote(text string) note {
	return note{id: uuid.New(), text: text}
}

func TestStore_Add(t *testing.T) {
	// given
	store := NewStore[note](nil)
	first, second := newNote("first"), newNote("second")

	// when
	store.Add(first)
	store.Add(second)

	// then
	assert.Equal(t, []note{second, first}, store.List())
}

func TestStore_List(t *testing.T) {
	t.Run("should return a copy", func(t *testing.T) {
		// given
		store := NewStore([]note{newNote("a")})

		// when
		listed := store.List()
		listed[0].text = "changed"

		// then
		assert.Equal(t, "a", store.List()[0].text)
	})

	t.Run("should return empty slice for empty store", func(t *testing.T) {
		store := NewStore[note](nil)
		assert.NotNil(t, store.List())
		assert.Empty(t, store.List())
	})
}

func TestStore_Update(t *testing.T) {
	t.Run("should replace in place", func(t *testing.T) {
		// given
		a, b, c := newNote("a"), newNote("b"), newNote("c")
		store := NewStore([]note{a, b, c})

		// when
		err := store.Update(note{id: b.id, text: "b2"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b2", "c"}, texts(store.List()))
	})

	t.Run("should report missing entity", func(t *testing.T) {
		// given
		store := NewStore([]note{newNote("a")})

		// when
		err := store.Update(newNote("ghost"))

		// then
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, []string{"a"}, texts(store.List()))
	})
}

func TestStore_Remove(t *testing.T) {
	t.Run("should remove existing entity", func(t *testing.T) {
		// given
		a, b := newNote("a"), newNote("b")
		store := NewStore([]note{a, b})

		// when
		removed := store.Remove(a.id)

		// then
		assert.True(t, removed)
		assert.Equal(t, []note{b}, store.List())
	})

	t.Run("should be a no-op for absent id", func(t *testing.T) {
		// given
		a := newNote("a")
		store := NewStore([]note{a})

		// when
		removed := store.Remove(uuid.New())

		// then
		assert.False(t, removed)
		assert.Equal(t, []note{a}, store.List())
	})
}

func TestStore_Get(t *testing.T) {
	a := newNote("a")
	store := NewStore([]note{a})

	found, ok := store.Get(a.id)
	assert.True(t, ok)
	assert.Equal(t, a, found)

	_, ok = store.Get(uuid.New())
	assert.False(t, ok)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore[note](nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := newNote("n")
			store.Add(n)
			_ = store.List()
			store.Remove(n.id)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, len(store.List()))
}

func TestSessions_Load(t *testing.T) {
	t.Run("should call loader once per user", func(t *testing.T) {
		// given
		calls := map[int]int{}
		sessions := NewSessions(func(ctx context.Context, userId int) ([]note, error) {
			calls[userId]++
			return []note{newNote("loaded")}, nil
		}, testClock())

		// when
		_, err := sessions.Load(context.Background(), 1)
		require.NoError(t, err)
		store, err := sessions.Load(context.Background(), 1)
		require.NoError(t, err)
		_, err = sessions.Load(context.Background(), 2)
		require.NoError(t, err)

		// then
		assert.Equal(t, 1, calls[1])
		assert.Equal(t, 1, calls[2])
		assert.Equal(t, 1, len(store.List()))
	})

	t.Run("should not keep session when loader fails", func(t *testing.T) {
		// given
		failure := errors.New("db down")
		sessions := NewSessions(func(ctx context.Context, userId int) ([]note, error) {
			return nil, failure
		}, testClock())

		// when
		_, err := sessions.Load(context.Background(), 1)

		// then
		assert.ErrorIs(t, err, failure)
		_, ok := sessions.Peek(1)
		assert.False(t, ok)
	})
}

func TestSessions_InvalidateOnSignOut(t *testing.T) {
	// given
	bus := event_bus.NewEventBus()
	sessions := NewSessions(func(ctx context.Context, userId int) ([]note, error) {
		return nil, nil
	}, testClock())
	sessions.InvalidateOnSignOut(bus)
	_, err := sessions.Load(context.Background(), 5)
	require.NoError(t, err)

	// when
	err = bus.Publish(event_bus.NewEvent(context.Background(), event_bus.UserSignedOutType, event_bus.UserSignedOut{UserId: 5}))

	// then
	require.NoError(t, err)
	_, ok := sessions.Peek(5)
	assert.False(t, ok)
}

// fakeTable is a persisted collection whose first read can be paused after the snapshot is taken.
type fakeTable struct {
	mu       sync.Mutex
	rows     []note
	calls    int
	snapshot chan struct{}
	release  chan struct{}
}

func newFakeTable(rows ...note) *fakeTable {
	return &fakeTable{rows: rows, snapshot: make(chan struct{}), release: make(chan struct{})}
}

func (f *fakeTable) load(ctx context.Context, userId int) ([]note, error) {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	rows := make([]note, len(f.rows))
	copy(rows, f.rows)
	f.mu.Unlock()

	if first {
		close(f.snapshot)
		<-f.release
	}
	return rows, nil
}

func (f *fakeTable) insert(n note) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append([]note{n}, f.rows...)
}

func (f *fakeTable) delete(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.rows {
		if n.id == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return
		}
	}
}

// loadDuring starts a Load, runs write once the loader holds its snapshot, then lets the load finish.
func loadDuring(t *testing.T, sessions *Sessions[note], table *fakeTable, write func()) {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		_, err := sessions.Load(context.Background(), 1)
		done <- err
	}()
	<-table.snapshot
	write()
	close(table.release)
	require.NoError(t, <-done)
}

func TestSessions_ConcurrentMutation(t *testing.T) {
	t.Run("should keep an entity created while the first load is in flight", func(t *testing.T) {
		// given
		existing := newNote("existing")
		table := newFakeTable(existing)
		sessions := NewSessions(table.load, testClock())
		created := newNote("created")

		// when
		loadDuring(t, sessions, table, func() {
			table.insert(created)
			sessions.Mutate(1, func(store *Store[note]) error {
				store.Add(created)
				return nil
			})
		})

		// then
		store, err := sessions.Load(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"created", "existing"}, texts(store.List()))
	})

	t.Run("should drop an entity deleted while the first load is in flight", func(t *testing.T) {
		// given
		kept, deleted := newNote("kept"), newNote("deleted")
		table := newFakeTable(deleted, kept)
		sessions := NewSessions(table.load, testClock())

		// when
		loadDuring(t, sessions, table, func() {
			table.delete(deleted.id)
			sessions.Mutate(1, func(store *Store[note]) error {
				store.Remove(deleted.id)
				return nil
			})
		})

		// then
		store, err := sessions.Load(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"kept"}, texts(store.List()))
	})

	t.Run("should drop the store when a mirrored change does not apply", func(t *testing.T) {
		// given
		sessions := NewSessions(func(ctx context.Context, userId int) ([]note, error) {
			return []note{newNote("a")}, nil
		}, testClock())
		_, err := sessions.Load(context.Background(), 1)
		require.NoError(t, err)

		// when
		sessions.Mutate(1, func(store *Store[note]) error {
			return store.Update(newNote("unknown"))
		})

		// then
		_, ok := sessions.Peek(1)
		assert.False(t, ok)
	})
}

func TestSessions_IdleTimeout(t *testing.T) {
	t.Run("should reload a session idle longer than the timeout", func(t *testing.T) {
		// given
		clock := testClock()
		calls := 0
		sessions := NewSessions(func(ctx context.Context, userId int) ([]note, error) {
			calls++
			return nil, nil
		}, clock)
		_, err := sessions.Load(context.Background(), 1)
		require.NoError(t, err)

		// when
		clock.Advance(DefaultIdleTimeout + time.Second)
		_, peeked := sessions.Peek(1)
		_, err = sessions.Load(context.Background(), 1)

		// then
		require.NoError(t, err)
		assert.False(t, peeked)
		assert.Equal(t, 2, calls)
	})

	t.Run("should keep a session that is used within the timeout", func(t *testing.T) {
		// given
		clock := testClock()
		sessions := NewSessions(func(ctx context.Context, userId int) ([]note, error) {
			return nil, nil
		}, clock)
		_, err := sessions.Load(context.Background(), 1)
		require.NoError(t, err)

		// when
		clock.Advance(DefaultIdleTimeout - time.Minute)
		_, first := sessions.Peek(1)
		clock.Advance(DefaultIdleTimeout - time.Minute)
		_, second := sessions.Peek(1)

		// then
		assert.True(t, first)
		assert.True(t, second)
	})

	t.Run("should evict idle users when another user loads", func(t *testing.T) {
		// given
		clock := testClock()
		sessions := NewSessions(func(ctx context.Context, userId int) ([]note, error) {
			return nil, nil
		}, clock)
		_, err := sessions.Load(context.Background(), 1)
		require.NoError(t, err)

		// when
		clock.Advance(DefaultIdleTimeout + time.Minute)
		_, err = sessions.Load(context.Background(), 2)

		// then
		require.NoError(t, err)
		sessions.mu.Lock()
		defer sessions.mu.Unlock()
		assert.NotContains(t, sessions.users, 1)
		assert.Contains(t, sessions.users, 2)
	})
}

func texts(notes []note) []string {
	result := make([]string, 0, len(notes))
	for _, n := range notes {
		result = append(result, n.text)
	}
	return result
}
