package app

import (
	"github.com/timlawrenz/fluffy-train-sub000/internal/http/handlers"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

type Handlers struct {
	Health  *handlers.HealthHandler
	Persona *handlers.PersonaHandler
	Config  *handlers.ConfigHandler
}

func wireHandlers(log *logger.Logger, reposet Repos, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: handlers.NewHealthHandler(),
		Persona: handlers.NewPersonaHandler(
			log,
			reposet.Persona,
			serviceset.Selection,
			serviceset.Gaps,
			serviceset.State,
		),
		Config: handlers.NewConfigHandler(log, serviceset.Config),
	}
}
