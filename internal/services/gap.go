package services

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/timlawrenz/fluffy-train-sub000/internal/data/repos"
	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

// defaultWeeklyCadence is the assumed posting rate when pillars have no
// explicit weekly target.
const defaultWeeklyCadence = 3.0

const (
	GapStatusExhausted = "exhausted"
	GapStatusCritical  = "critical"
	GapStatusLow       = "low"
	GapStatusReady     = "ready"
	GapStatusMinimal   = "minimal"
)

// GapAnalyzer produces the forward-looking inventory report consumed by
// dashboards. Read-only; never part of the selection path.
type GapAnalyzer interface {
	TotalPostsNeeded(daysAhead int) int
	// TotalPhotosAvailable counts the persona's unposted photos across all
	// clusters, linked to a pillar or not.
	TotalPhotosAvailable(dbc dbctx.Context, personaID uuid.UUID) (int64, error)
	Report(dbc dbctx.Context, persona *domain.Persona, daysAhead int) ([]PillarGap, error)
}

type PillarGap struct {
	Pillar          *domain.Pillar `json:"pillar"`
	PostsNeeded     int            `json:"posts_needed"`
	PhotosAvailable int64          `json:"photos_available"`
	Gap             int64          `json:"gap"`
	Status          string         `json:"status"`
}

type gapAnalyzer struct {
	log     *logger.Logger
	pillars repos.PillarRepo
	photos  repos.PhotoRepo
	now     func() time.Time
}

func NewGapAnalyzer(log *logger.Logger, pillars repos.PillarRepo, photos repos.PhotoRepo) GapAnalyzer {
	return &gapAnalyzer{
		log:     log.With("service", "GapAnalyzer"),
		pillars: pillars,
		photos:  photos,
		now:     time.Now,
	}
}

func (g *gapAnalyzer) TotalPostsNeeded(daysAhead int) int {
	if daysAhead <= 0 {
		return 0
	}
	return int(math.Ceil(defaultWeeklyCadence * float64(daysAhead) / 7))
}

func (g *gapAnalyzer) TotalPhotosAvailable(dbc dbctx.Context, personaID uuid.UUID) (int64, error) {
	return g.photos.CountUnpostedByPersona(dbc, personaID)
}

func (g *gapAnalyzer) Report(dbc dbctx.Context, persona *domain.Persona, daysAhead int) ([]PillarGap, error) {
	pillars, err := g.pillars.ActiveByPersona(dbc, persona.ID, g.now().UTC())
	if err != nil {
		return nil, err
	}

	total := g.TotalPostsNeeded(daysAhead)
	rows := make([]PillarGap, 0, len(pillars))
	for _, pillar := range pillars {
		var needed int
		if pillar.TargetPostsPerWeek != nil {
			needed = int(math.Ceil(*pillar.TargetPostsPerWeek * float64(daysAhead) / 7))
		} else {
			needed = int(math.Ceil(float64(total) * pillar.Weight / 100))
		}

		available, err := g.photos.CountUnpostedByPillar(dbc, pillar.ID)
		if err != nil {
			return nil, err
		}

		gap := int64(needed) - available
		rows = append(rows, PillarGap{
			Pillar:          pillar,
			PostsNeeded:     needed,
			PhotosAvailable: available,
			Gap:             gap,
			Status:          classifyGap(gap, available),
		})
	}

	// Most urgent shortages surface first.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Gap != rows[j].Gap {
			return rows[i].Gap > rows[j].Gap
		}
		return rows[i].Pillar.Priority > rows[j].Pillar.Priority
	})
	return rows, nil
}

func classifyGap(gap, available int64) string {
	switch {
	case available == 0:
		return GapStatusExhausted
	case gap > 5:
		return GapStatusCritical
	case gap > 0:
		return GapStatusLow
	case available >= 3:
		return GapStatusReady
	default:
		return GapStatusMinimal
	}
}
