package notification

import (
	"context"
	"sync"
)

const defaultInboxSize = 50

// Inbox keeps the latest notifications per user in memory.
// When a user's inbox is full the oldest notification is dropped.
type Inbox struct {
	mu     sync.Mutex
	size   int
	byUser map[int][]Notification
}

func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = defaultInboxSize
	}
	return &Inbox{
		size:   size,
		byUser: make(map[int][]Notification),
	}
}

func (i *Inbox) Send(ctx context.Context, n Notification) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	pending := append(i.byUser[n.UserId], n)
	if len(pending) > i.size {
		pending = append([]Notification(nil), pending[len(pending)-i.size:]...)
	}
	i.byUser[n.UserId] = pending
	return nil
}

// Drain returns the user's pending notifications, oldest first, and empties the inbox.
func (i *Inbox) Drain(userId int) []Notification {
	i.mu.Lock()
	defer i.mu.Unlock()

	pending := i.byUser[userId]
	delete(i.byUser, userId)
	if pending == nil {
		return []Notification{}
	}
	return pending
}

func (i *Inbox) Len(userId int) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.byUser[userId])
}
