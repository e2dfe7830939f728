package services

import (
	"time"

	"github.com/timlawrenz/fluffy-train-sub000/internal/data/repos"
	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

// rotationLookback is the history window deficit scoring is computed over.
const rotationLookback = 30 * 24 * time.Hour

// starvedPillarScore keeps a pillar with zero available photos from winning
// rotation only to fail immediately at photo selection. Large and negative
// so any pillar with inventory outranks it; ties among starved pillars
// resolve by priority like any other tie.
const starvedPillarScore = -1e6

// RotationService computes which pillar is most under-served relative to
// its target weight. Pure reads; calling it repeatedly without intervening
// history changes returns the same pillar.
type RotationService interface {
	SelectNextPillar(dbc dbctx.Context, persona *domain.Persona) (*domain.Pillar, error)
	// PillarScores exposes the deficit computation for reporting.
	PillarScores(dbc dbctx.Context, persona *domain.Persona) ([]PillarScore, error)
}

type PillarScore struct {
	Pillar          *domain.Pillar
	Score           float64
	ActualPercent   float64
	PhotosAvailable int64
}

type rotationService struct {
	log     *logger.Logger
	pillars repos.PillarRepo
	photos  repos.PhotoRepo
	history repos.HistoryRepo
	now     func() time.Time
}

func NewRotationService(log *logger.Logger, pillars repos.PillarRepo, photos repos.PhotoRepo, history repos.HistoryRepo) RotationService {
	return &rotationService{
		log:     log.With("service", "RotationService"),
		pillars: pillars,
		photos:  photos,
		history: history,
		now:     time.Now,
	}
}

func (s *rotationService) SelectNextPillar(dbc dbctx.Context, persona *domain.Persona) (*domain.Pillar, error) {
	scores, err := s.PillarScores(dbc, persona)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, nil
	}

	best := scores[0]
	for _, candidate := range scores[1:] {
		if candidate.Score > best.Score {
			best = candidate
			continue
		}
		// Lower priority value is more urgent on a tie.
		if candidate.Score == best.Score && candidate.Pillar.Priority < best.Pillar.Priority {
			best = candidate
		}
	}
	return best.Pillar, nil
}

func (s *rotationService) PillarScores(dbc dbctx.Context, persona *domain.Persona) ([]PillarScore, error) {
	now := s.now().UTC()
	pillars, err := s.pillars.ActiveByPersona(dbc, persona.ID, now)
	if err != nil {
		return nil, err
	}
	if len(pillars) == 0 {
		return nil, nil
	}

	since := now.Add(-rotationLookback)
	total, err := s.history.CountByPersonaSince(dbc, persona.ID, since)
	if err != nil {
		return nil, err
	}
	perPillar, err := s.history.CountByPillarSince(dbc, persona.ID, since)
	if err != nil {
		return nil, err
	}

	scores := make([]PillarScore, 0, len(pillars))
	for _, pillar := range pillars {
		available, err := s.photos.CountUnpostedByPillar(dbc, pillar.ID)
		if err != nil {
			return nil, err
		}

		score := PillarScore{Pillar: pillar, PhotosAvailable: available}
		switch {
		case available == 0:
			score.Score = starvedPillarScore
		case total == 0:
			// No recent history: bootstrap toward higher-weight pillars.
			score.Score = pillar.Weight
		default:
			score.ActualPercent = float64(perPillar[pillar.ID]) / float64(total) * 100
			score.Score = pillar.Weight - score.ActualPercent
		}
		scores = append(scores, score)
	}
	return scores, nil
}
