package app

import (
	"gorm.io/gorm"

	"github.com/timlawrenz/fluffy-train-sub000/internal/data/repos"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

type Repos struct {
	Persona       repos.PersonaRepo
	Pillar        repos.PillarRepo
	Cluster       repos.ClusterRepo
	Photo         repos.PhotoRepo
	Post          repos.PostRepo
	StrategyState repos.StrategyStateRepo
	History       repos.HistoryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Persona:       repos.NewPersonaRepo(db, log),
		Pillar:        repos.NewPillarRepo(db, log),
		Cluster:       repos.NewClusterRepo(db, log),
		Photo:         repos.NewPhotoRepo(db, log),
		Post:          repos.NewPostRepo(db, log),
		StrategyState: repos.NewStrategyStateRepo(db, log),
		History:       repos.NewHistoryRepo(db, log),
	}
}
