package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/envutil"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

const stateKeyPrefix = "strategy:state:"

type redisStateCache struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewRedisStateCache connects to REDIS_ADDR and pings before returning, so
// wiring fails at startup rather than on the first selection.
func NewRedisStateCache(log *logger.Logger) (StateCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(envutil.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStateCache{
		log: log.With("service", "RedisStateCache"),
		rdb: rdb,
	}, nil
}

func stateKey(personaID uuid.UUID) string {
	return stateKeyPrefix + personaID.String()
}

func (c *redisStateCache) Get(ctx context.Context, personaID uuid.UUID) (*domain.StrategyState, bool, error) {
	raw, err := c.rdb.Get(ctx, stateKey(personaID)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var state domain.StrategyState
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt entry behaves like a miss; the read-through path will
		// overwrite it.
		c.log.Warn("Dropping undecodable cached state", "persona_id", personaID, "error", err)
		return nil, false, nil
	}
	return &state, true, nil
}

func (c *redisStateCache) Set(ctx context.Context, state *domain.StrategyState) error {
	if state == nil {
		return nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, stateKey(state.PersonaID), raw, StateTTL).Err()
}

func (c *redisStateCache) Invalidate(ctx context.Context, personaID uuid.UUID) error {
	return c.rdb.Del(ctx, stateKey(personaID)).Err()
}

func (c *redisStateCache) InvalidateAll(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, stateKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
