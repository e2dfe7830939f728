package app

import (
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/envutil"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

type Config struct {
	HTTPAddr         string
	CronSpec         string
	SchedulerEnabled bool
	CacheBackend     string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		HTTPAddr:         envutil.GetEnv("HTTP_ADDR", ":8080", log),
		CronSpec:         envutil.GetEnv("SCHEDULER_CRON", "0 * * * *", log),
		SchedulerEnabled: envutil.GetEnv("SCHEDULER_ENABLED", "true", log) == "true",
		CacheBackend:     envutil.GetEnv("STATE_CACHE_BACKEND", "redis", log),
	}
}
