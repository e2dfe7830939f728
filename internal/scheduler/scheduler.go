package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/timlawrenz/fluffy-train-sub000/internal/data/repos"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
	"github.com/timlawrenz/fluffy-train-sub000/internal/services"
)

// tickTimeout bounds one full scheduling pass across all personas.
const tickTimeout = 5 * time.Minute

// Scheduler runs the posting pipeline on a cron cadence: each tick walks
// every persona and attempts one publish. Declines are routine (frequency
// cap, exhausted inventory) and logged at info; only faults are errors.
type Scheduler struct {
	log       *logger.Logger
	cron      *cron.Cron
	personas  repos.PersonaRepo
	selection services.SelectionService
	spec      string
}

func New(log *logger.Logger, personas repos.PersonaRepo, selection services.SelectionService, spec string) *Scheduler {
	return &Scheduler{
		log:       log.With("service", "Scheduler"),
		cron:      cron.New(),
		personas:  personas,
		selection: selection,
		spec:      spec,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("Scheduler started", "cron", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	personas, err := s.personas.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		s.log.Error("Scheduler tick failed to list personas", "error", err)
		return
	}

	// Personas are processed serially; the engine does not introduce
	// intra-persona concurrency (state writes race otherwise).
	for _, persona := range personas {
		result, err := s.selection.PublishNext(ctx, persona)
		if err != nil {
			s.log.Error("Publish failed", "persona", persona.Name, "error", err)
			continue
		}
		if result.Declined() {
			s.log.Info("No selection this tick",
				"persona", persona.Name,
				"kind", string(result.Decline.Kind),
				"reason", result.Decline.Reason,
			)
			continue
		}
		s.log.Info("Published post",
			"persona", persona.Name,
			"post_id", result.Post.ID,
			"cluster", result.Selection.Cluster.Name,
			"strategy", result.StrategyName,
		)
	}
}
