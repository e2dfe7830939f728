package app

import (
	"gorm.io/gorm"

	"github.com/timlawrenz/fluffy-train-sub000/internal/cache"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
	"github.com/timlawrenz/fluffy-train-sub000/internal/scheduler"
	"github.com/timlawrenz/fluffy-train-sub000/internal/services"
	"github.com/timlawrenz/fluffy-train-sub000/internal/strategy"
)

type Services struct {
	Config    services.ConfigService
	State     services.StateService
	Rotation  services.RotationService
	Gaps      services.GapAnalyzer
	Selection services.SelectionService
	Scheduler *scheduler.Scheduler
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	stateCache, err := wireStateCache(log, cfg)
	if err != nil {
		return Services{}, err
	}

	configService := services.NewConfigService(log)
	if _, err := configService.Load(); err != nil {
		return Services{}, err
	}

	stateService := services.NewStateService(log, reposet.StrategyState, stateCache)
	rotationService := services.NewRotationService(log, reposet.Pillar, reposet.Photo, reposet.History)
	gapAnalyzer := services.NewGapAnalyzer(log, reposet.Pillar, reposet.Photo)

	generator, err := services.NewOpenAICaptionService(log)
	if err != nil {
		log.Warn("Caption generation unavailable, captions fall back to photo descriptions", "error", err)
		generator = services.NewDisabledTextGenerator()
	}

	deps := strategy.Deps{
		Log:      log,
		Clusters: reposet.Cluster,
		Photos:   reposet.Photo,
		History:  reposet.History,
		State:    stateService,
	}

	selectionService := services.NewSelectionService(services.SelectionServiceParams{
		Log:       log,
		DB:        db,
		Registry:  strategy.NewDefaultRegistry(),
		Deps:      deps,
		Config:    configService,
		Rotation:  rotationService,
		State:     stateService,
		Posts:     reposet.Post,
		Generator: generator,
		Publisher: services.NewLogPublisher(log),
	})

	sched := scheduler.New(log, reposet.Persona, selectionService, cfg.CronSpec)

	return Services{
		Config:    configService,
		State:     stateService,
		Rotation:  rotationService,
		Gaps:      gapAnalyzer,
		Selection: selectionService,
		Scheduler: sched,
	}, nil
}

// wireStateCache picks the cache backend; the in-memory cache keeps
// single-process deployments free of a Redis dependency.
func wireStateCache(log *logger.Logger, cfg Config) (cache.StateCache, error) {
	if cfg.CacheBackend == "memory" {
		log.Info("Using in-memory state cache")
		return cache.NewMemoryStateCache(), nil
	}
	return cache.NewRedisStateCache(log)
}
