package cache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
)

// StateTTL bounds staleness for readers that bypass invalidation (other
// processes). Within one process every write path invalidates explicitly;
// the TTL is never the mechanism that makes writes visible.
const StateTTL = 5 * time.Minute

// StateCache fronts StrategyState lookups. The contract is read-your-writes:
// Invalidate must be called synchronously by any write path before the next
// read is served, and by after-post handling unconditionally.
type StateCache interface {
	Get(ctx context.Context, personaID uuid.UUID) (*domain.StrategyState, bool, error)
	Set(ctx context.Context, state *domain.StrategyState) error
	Invalidate(ctx context.Context, personaID uuid.UUID) error
	// InvalidateAll exists for bulk admin operations.
	InvalidateAll(ctx context.Context) error
}
