package strategy

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/timlawrenz/fluffy-train-sub000/internal/data/repos"
	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

// historyWindow is the posting-history lookback used for frequency and
// recency checks.
const historyWindow = 7 * 24 * time.Hour

// StateStore is the slice of the state service strategies depend on. Every
// mutating method persists durably and invalidates the cache entry before
// returning.
type StateStore interface {
	Load(dbc dbctx.Context, personaID uuid.UUID) (*domain.StrategyState, error)
	Update(dbc dbctx.Context, personaID uuid.UUID, partial map[string]any) error
	// Mutate applies fn to a fresh state_data snapshot under the store's
	// lost-update guard; fn returning nil skips the write.
	Mutate(dbc dbctx.Context, personaID uuid.UUID, fn func(data map[string]any) (map[string]any, error)) error
	// IncrementKey atomically advances a numeric state key, returning the
	// new value.
	IncrementKey(dbc dbctx.Context, personaID uuid.UUID, key string, delta int) (int, error)
	StampStartedAt(dbc dbctx.Context, personaID uuid.UUID, at time.Time) error
	Invalidate(ctx context.Context, personaID uuid.UUID) error
}

// Deps are the collaborators a strategy needs. Constructed once at wiring
// time and shared by all strategy instances.
type Deps struct {
	Log      *logger.Logger
	Clusters repos.ClusterRepo
	Photos   repos.PhotoRepo
	History  repos.HistoryRepo
	State    StateStore
}

// Context is the short-lived per-selection aggregate. It resolves the
// active pillar, available clusters, the recent history window, and state,
// memoizing each. Never persisted, never shared across selections, not safe
// for concurrent use.
type Context struct {
	DBC            dbctx.Context
	Persona        *domain.Persona
	Now            time.Time
	Config         *Config
	SelectedPillar *domain.Pillar
	Rand           *rand.Rand

	deps Deps

	history       []*domain.HistoryRecord
	historyLoaded bool

	state *domain.StrategyState

	clusters       []*domain.Cluster
	clustersLoaded bool
}

type ContextParams struct {
	DBC            dbctx.Context
	Persona        *domain.Persona
	Now            time.Time
	Config         *Config
	SelectedPillar *domain.Pillar
	Rand           *rand.Rand
	Deps           Deps
}

func NewContext(params ContextParams) *Context {
	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	rng := params.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Context{
		DBC:            params.DBC,
		Persona:        params.Persona,
		Now:            now,
		Config:         params.Config,
		SelectedPillar: params.SelectedPillar,
		Rand:           rng,
		deps:           params.Deps,
	}
}

// PostingHistory returns the persona's history records from the last 7
// days, newest first.
func (c *Context) PostingHistory() ([]*domain.HistoryRecord, error) {
	if c.historyLoaded {
		return c.history, nil
	}
	rows, err := c.deps.History.RecentByPersona(c.DBC, c.Persona.ID, c.Now.Add(-historyWindow))
	if err != nil {
		return nil, err
	}
	c.history = rows
	c.historyLoaded = true
	return c.history, nil
}

// State returns the persona's strategy state, creating the row on first
// access.
func (c *Context) State() (*domain.StrategyState, error) {
	if c.state != nil {
		return c.state, nil
	}
	state, err := c.deps.State.Load(c.DBC, c.Persona.ID)
	if err != nil {
		return nil, err
	}
	c.state = state
	return c.state, nil
}

// RefreshState drops the memoized state so the next State call observes
// writes made during this selection.
func (c *Context) RefreshState() {
	c.state = nil
}

// AvailableClusters returns clusters with at least one unposted photo,
// scoped to the selected pillar when one is resolved, alphabetically
// ordered.
func (c *Context) AvailableClusters() ([]*domain.Cluster, error) {
	if c.clustersLoaded {
		return c.clusters, nil
	}
	var (
		rows []*domain.Cluster
		err  error
	)
	if c.SelectedPillar != nil {
		rows, err = c.deps.Clusters.AvailableByPillar(c.DBC, c.SelectedPillar.ID)
	} else {
		rows, err = c.deps.Clusters.AvailableByPersona(c.DBC, c.Persona.ID)
	}
	if err != nil {
		return nil, err
	}
	c.clusters = rows
	c.clustersLoaded = true
	return c.clusters, nil
}

// RecentClusterIDs returns the distinct cluster ids appearing in the
// 7-day history window, newest first.
func (c *Context) RecentClusterIDs() ([]uuid.UUID, error) {
	history, err := c.PostingHistory()
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, record := range history {
		if record.ClusterID == nil || seen[*record.ClusterID] {
			continue
		}
		seen[*record.ClusterID] = true
		out = append(out, *record.ClusterID)
	}
	return out, nil
}

// PostsThisWeek counts selections recorded in the 7-day window.
func (c *Context) PostsThisWeek() (int, error) {
	history, err := c.PostingHistory()
	if err != nil {
		return 0, err
	}
	return len(history), nil
}
