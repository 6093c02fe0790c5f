package auth

import (
	"sync"
	"time"

	"github.com/cofrinho/cofrinho/internal/utils"
)

// RevocationList remembers signed-out token ids until the tokens would have expired anyway.
type RevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	clock   utils.Clock
}

func NewRevocationList(clock utils.Clock) *RevocationList {
	return &RevocationList{
		revoked: make(map[string]time.Time),
		clock:   clock,
	}
}

func (r *RevocationList) Revoke(tokenId string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	r.revoked[tokenId] = expiresAt
}

func (r *RevocationList) IsRevoked(tokenId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	expiresAt, ok := r.revoked[tokenId]
	if !ok {
		return false
	}
	if !r.clock.Now().Before(expiresAt) {
		delete(r.revoked, tokenId)
		return false
	}
	return true
}

func (r *RevocationList) prune() {
	now := r.clock.Now()
	for id, expiresAt := range r.revoked {
		if !now.Before(expiresAt) {
			delete(r.revoked, id)
		}
	}
}
