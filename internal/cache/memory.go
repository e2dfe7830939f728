package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
)

type memoryEntry struct {
	state     domain.StrategyState
	expiresAt time.Time
}

type memoryStateCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]memoryEntry
	now     func() time.Time
}

// NewMemoryStateCache is the in-process StateCache used by tests and
// single-node deployments without redis. Same TTL and invalidation contract.
func NewMemoryStateCache() StateCache {
	return &memoryStateCache{
		entries: make(map[uuid.UUID]memoryEntry),
		now:     time.Now,
	}
}

func (c *memoryStateCache) Get(_ context.Context, personaID uuid.UUID) (*domain.StrategyState, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[personaID]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false, nil
	}
	state := entry.state
	return &state, true, nil
}

func (c *memoryStateCache) Set(_ context.Context, state *domain.StrategyState) error {
	if state == nil {
		return nil
	}
	c.mu.Lock()
	c.entries[state.PersonaID] = memoryEntry{
		state:     *state,
		expiresAt: c.now().Add(StateTTL),
	}
	c.mu.Unlock()
	return nil
}

func (c *memoryStateCache) Invalidate(_ context.Context, personaID uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, personaID)
	c.mu.Unlock()
	return nil
}

func (c *memoryStateCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[uuid.UUID]memoryEntry)
	c.mu.Unlock()
	return nil
}
