package strategy

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/timlawrenz/fluffy-train-sub000/internal/data/repos"
	"github.com/timlawrenz/fluffy-train-sub000/internal/data/repos/testutil"
	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
)

// storeBackedState implements StateStore directly over the repo, tracking
// cache invalidations so tests can assert write-then-invalidate ordering.
type storeBackedState struct {
	repo          repos.StrategyStateRepo
	invalidations int
}

func (s *storeBackedState) Load(dbc dbctx.Context, personaID uuid.UUID) (*domain.StrategyState, error) {
	return s.repo.FindOrCreate(dbc, personaID)
}

func (s *storeBackedState) Update(dbc dbctx.Context, personaID uuid.UUID, partial map[string]any) error {
	return s.Mutate(dbc, personaID, func(data map[string]any) (map[string]any, error) {
		for k, v := range partial {
			data[k] = v
		}
		return data, nil
	})
}

func (s *storeBackedState) Mutate(dbc dbctx.Context, personaID uuid.UUID, fn func(data map[string]any) (map[string]any, error)) error {
	state, err := s.repo.FindOrCreate(dbc, personaID)
	if err != nil {
		return err
	}
	data, err := fn(state.Data())
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.repo.UpdateFields(dbc, personaID, state.LockVersion, map[string]any{
		"state_data": datatypes.JSON(raw),
	})
}

func (s *storeBackedState) IncrementKey(dbc dbctx.Context, personaID uuid.UUID, key string, delta int) (int, error) {
	var next int
	err := s.Mutate(dbc, personaID, func(data map[string]any) (map[string]any, error) {
		cur := 0
		if n, ok := data[key].(float64); ok {
			cur = int(n)
		}
		next = cur + delta
		data[key] = next
		return data, nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *storeBackedState) StampStartedAt(dbc dbctx.Context, personaID uuid.UUID, at time.Time) error {
	state, err := s.repo.FindOrCreate(dbc, personaID)
	if err != nil {
		return err
	}
	return s.repo.UpdateFields(dbc, personaID, state.LockVersion, map[string]any{"started_at": at.UTC()})
}

func (s *storeBackedState) Invalidate(_ context.Context, _ uuid.UUID) error {
	s.invalidations++
	return nil
}

type strategyHarness struct {
	dbc   dbctx.Context
	tx    *gorm.DB
	deps  Deps
	state *storeBackedState
}

func newStrategyHarness(t *testing.T) *strategyHarness {
	t.Helper()
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)

	state := &storeBackedState{repo: repos.NewStrategyStateRepo(db, log)}
	return &strategyHarness{
		dbc: dbc,
		tx:  tx,
		state: state,
		deps: Deps{
			Log:      log,
			Clusters: repos.NewClusterRepo(db, log),
			Photos:   repos.NewPhotoRepo(db, log),
			History:  repos.NewHistoryRepo(db, log),
			State:    state,
		},
	}
}

func (h *strategyHarness) context(t *testing.T, persona *domain.Persona, now time.Time, seed int64) *Context {
	t.Helper()
	return NewContext(ContextParams{
		DBC:     h.dbc,
		Persona: persona,
		Now:     now,
		Config:  testConfig(),
		Rand:    rand.New(rand.NewSource(seed)),
		Deps:    h.deps,
	})
}

func testConfig() *Config {
	return &Config{
		PostingFrequency: FrequencyConfig{Min: 3, Max: 5},
		Timing: TimingConfig{
			Optimal:     Window{StartHour: 5, EndHour: 8},
			Alternative: Window{StartHour: 10, EndHour: 15},
			Timezone:    "UTC",
		},
		Variety:  VarietyConfig{MinDaysGap: 2, MaxSameCluster: 2},
		Hashtags: HashtagConfig{Min: 5, Max: 12},
		Format:   FormatConfig{PreferCarousels: true, PreferReels: true},
	}
}
