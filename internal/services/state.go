package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"

	"github.com/timlawrenz/fluffy-train-sub000/internal/cache"
	"github.com/timlawrenz/fluffy-train-sub000/internal/data/repos"
	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
	pkgerrors "github.com/timlawrenz/fluffy-train-sub000/internal/pkg/errors"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

// stateWriteAttempts bounds optimistic-lock retries before a guarded write
// gives up.
const stateWriteAttempts = 3

// StateService owns StrategyState access. Reads go through the cache;
// every mutation persists durably and then synchronously invalidates the
// cache entry, so a read immediately following a write never observes
// stale data.
type StateService interface {
	// Load returns the persona's state via the read-through cache,
	// creating the row on first access.
	Load(dbc dbctx.Context, personaID uuid.UUID) (*domain.StrategyState, error)
	// GetKey reads one key out of state_data.
	GetKey(dbc dbctx.Context, personaID uuid.UUID, key string) (any, bool, error)
	// SetKey writes one key into state_data.
	SetKey(dbc dbctx.Context, personaID uuid.UUID, key string, value any) error
	// Update shallow-merges partial into state_data.
	Update(dbc dbctx.Context, personaID uuid.UUID, partial map[string]any) error
	// Mutate runs fn against a fresh state_data snapshot and persists the
	// returned map under the optimistic lock, reloading and retrying when
	// a concurrent writer got there first. fn returning nil skips the
	// write.
	Mutate(dbc dbctx.Context, personaID uuid.UUID, fn func(data map[string]any) (map[string]any, error)) error
	// IncrementKey atomically advances a numeric state key by delta,
	// returning the new value. Racing increments never lose a step.
	IncrementKey(dbc dbctx.Context, personaID uuid.UUID, key string, delta int) (int, error)
	// SetActiveStrategy persists the persona's selected strategy name.
	SetActiveStrategy(dbc dbctx.Context, personaID uuid.UUID, name string) error
	// StampStartedAt records when the current strategy state began.
	StampStartedAt(dbc dbctx.Context, personaID uuid.UUID, at time.Time) error
	// Reset clears state_data and started_at.
	Reset(dbc dbctx.Context, personaID uuid.UUID) error
	Invalidate(ctx context.Context, personaID uuid.UUID) error
	InvalidateAll(ctx context.Context) error
}

type stateService struct {
	log    *logger.Logger
	states repos.StrategyStateRepo
	cache  cache.StateCache
	group  singleflight.Group
}

func NewStateService(log *logger.Logger, states repos.StrategyStateRepo, stateCache cache.StateCache) StateService {
	return &stateService{
		log:    log.With("service", "StateService"),
		states: states,
		cache:  stateCache,
	}
}

func (s *stateService) Load(dbc dbctx.Context, personaID uuid.UUID) (*domain.StrategyState, error) {
	if personaID == uuid.Nil {
		return nil, fmt.Errorf("persona id required")
	}

	// Transactional reads bypass the cache in both directions: the caller
	// must observe its own uncommitted writes, never a committed snapshot
	// another reader refilled, and uncommitted state must never end up in
	// the shared cache.
	if dbc.Tx != nil {
		return s.loadFromStore(dbc, personaID)
	}

	cached, hit, err := s.cache.Get(dbc.Ctx, personaID)
	if err != nil {
		// A broken cache degrades to direct reads; selection must not fail
		// because redis is down.
		s.log.Warn("State cache read failed, falling back to store", "error", err)
	} else if hit {
		return cached, nil
	}

	v, err, _ := s.group.Do(personaID.String(), func() (any, error) {
		return s.loadFromStore(dbc, personaID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.StrategyState), nil
}

func (s *stateService) loadFromStore(dbc dbctx.Context, personaID uuid.UUID) (*domain.StrategyState, error) {
	state, err := s.states.FindOrCreate(dbc, personaID)
	if err != nil {
		return nil, fmt.Errorf("load strategy state: %w", err)
	}
	if dbc.Tx == nil {
		if err := s.cache.Set(dbc.Ctx, state); err != nil {
			s.log.Warn("State cache write failed", "error", err)
		}
	}
	return state, nil
}

func (s *stateService) GetKey(dbc dbctx.Context, personaID uuid.UUID, key string) (any, bool, error) {
	state, err := s.Load(dbc, personaID)
	if err != nil {
		return nil, false, err
	}
	v, ok := state.Data()[key]
	return v, ok, nil
}

func (s *stateService) SetKey(dbc dbctx.Context, personaID uuid.UUID, key string, value any) error {
	return s.Update(dbc, personaID, map[string]any{key: value})
}

func (s *stateService) Update(dbc dbctx.Context, personaID uuid.UUID, partial map[string]any) error {
	if len(partial) == 0 {
		return nil
	}
	return s.Mutate(dbc, personaID, func(data map[string]any) (map[string]any, error) {
		for k, v := range partial {
			data[k] = v
		}
		return data, nil
	})
}

func (s *stateService) Mutate(dbc dbctx.Context, personaID uuid.UUID, fn func(data map[string]any) (map[string]any, error)) error {
	if personaID == uuid.Nil {
		return fmt.Errorf("persona id required")
	}
	var lastErr error
	for attempt := 0; attempt < stateWriteAttempts; attempt++ {
		state, err := s.loadFromStore(dbc, personaID)
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
			return fmt.Errorf("marshal state data: %w", err)
		}
		err = s.states.UpdateFields(dbc, personaID, state.LockVersion, map[string]any{
			"state_data": datatypes.JSON(raw),
		})
		if errors.Is(err, pkgerrors.ErrStaleState) {
			lastErr = err
			continue
		}
		if err != nil {
			return fmt.Errorf("persist state data: %w", err)
		}
		return s.Invalidate(dbc.Ctx, personaID)
	}
	return fmt.Errorf("mutate strategy state for %s: %w", personaID, lastErr)
}

func (s *stateService) IncrementKey(dbc dbctx.Context, personaID uuid.UUID, key string, delta int) (int, error) {
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

func (s *stateService) SetActiveStrategy(dbc dbctx.Context, personaID uuid.UUID, name string) error {
	if err := s.updateColumns(dbc, personaID, map[string]any{
		"active_strategy": name,
	}); err != nil {
		return fmt.Errorf("persist active strategy: %w", err)
	}
	return s.Invalidate(dbc.Ctx, personaID)
}

func (s *stateService) StampStartedAt(dbc dbctx.Context, personaID uuid.UUID, at time.Time) error {
	if err := s.updateColumns(dbc, personaID, map[string]any{
		"started_at": at.UTC(),
	}); err != nil {
		return fmt.Errorf("persist started_at: %w", err)
	}
	return s.Invalidate(dbc.Ctx, personaID)
}

func (s *stateService) Reset(dbc dbctx.Context, personaID uuid.UUID) error {
	if err := s.updateColumns(dbc, personaID, map[string]any{
		"state_data": datatypes.JSON([]byte(`{}`)),
		"started_at": nil,
	}); err != nil {
		return fmt.Errorf("reset state: %w", err)
	}
	return s.Invalidate(dbc.Ctx, personaID)
}

// updateColumns applies a guarded column update, reloading the version and
// retrying when a concurrent writer won the race.
func (s *stateService) updateColumns(dbc dbctx.Context, personaID uuid.UUID, updates map[string]any) error {
	var lastErr error
	for attempt := 0; attempt < stateWriteAttempts; attempt++ {
		state, err := s.loadFromStore(dbc, personaID)
		if err != nil {
			return err
		}
		err = s.states.UpdateFields(dbc, personaID, state.LockVersion, updates)
		if errors.Is(err, pkgerrors.ErrStaleState) {
			lastErr = err
			continue
		}
		return err
	}
	return lastErr
}

func (s *stateService) Invalidate(ctx context.Context, personaID uuid.UUID) error {
	if err := s.cache.Invalidate(ctx, personaID); err != nil {
		return fmt.Errorf("invalidate state cache: %w", err)
	}
	return nil
}

func (s *stateService) InvalidateAll(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}
