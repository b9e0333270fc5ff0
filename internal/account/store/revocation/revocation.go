// Package revocation tracks refresh tokens that have been invalidated
// before their natural expiry, either by logout or by rotation on refresh.
package revocation

import (
	"context"
	"sync"
	"time"
)

//go:generate mockgen -source=revocation.go -destination=mocks/mocks.go -package=mocks

// Store is a revocation list keyed by token ID (jti). Entries expire on
// their own once the underlying token would have expired anyway.
type Store interface {
	// Revoke marks a token ID as revoked for the given TTL.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked reports whether a token ID is on the list.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type memoryEntry struct {
	expiresAt time.Time
}

// MemoryStore is an in-process revocation list for tests and single-node
// deployments without Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[jti] = memoryEntry{expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	m.mu.RLock()
	entry, ok := m.entries[jti]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, jti)
		m.mu.Unlock()
		return false, nil
	}
	return true, nil
}
