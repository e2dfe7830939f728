package strategy

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
)

const ThemeOfWeekName = "theme_of_week"

const (
	stateKeyWeek    = "week"
	stateKeyCluster = "cluster_id"
)

// themeOfWeek commits to one cluster per ISO week. Once committed the
// cluster is reused for every selection in that week, even after its photos
// run out; the strategy only re-rolls at the week boundary.
type themeOfWeek struct {
	baseStrategy
}

func NewThemeOfWeekStrategy(deps Deps) Strategy {
	return &themeOfWeek{baseStrategy{name: ThemeOfWeekName, deps: deps}}
}

func (s *themeOfWeek) SelectNextPhoto(sctx *Context) (*Result, error) {
	if declined, err := s.validatePostingFrequency(sctx); declined != nil || err != nil {
		return declined, err
	}

	cluster, result, err := s.resolveCluster(sctx)
	if result != nil || err != nil {
		return result, err
	}

	photo, declined, err := s.pickPhoto(sctx, cluster)
	if declined != nil || err != nil {
		return declined, err
	}
	return s.buildSelection(sctx, cluster, photo)
}

func (s *themeOfWeek) AfterPost(sctx *Context, post *domain.Post, photo *domain.Photo, cluster *domain.Cluster) error {
	extra := map[string]any{"week": isoWeek(sctx)}
	return s.recordHistory(sctx, post, photo, cluster, extra)
}

// resolveCluster returns the committed cluster for the current week,
// committing to a new one when the week rolled over or nothing is stored.
func (s *themeOfWeek) resolveCluster(sctx *Context) (*domain.Cluster, *Result, error) {
	state, err := sctx.State()
	if err != nil {
		return nil, nil, err
	}
	data := state.Data()
	week := isoWeek(sctx)

	if storedWeek, ok := stateString(data, stateKeyWeek); ok && storedWeek == week {
		if rawID, ok := stateString(data, stateKeyCluster); ok {
			clusterID, err := uuid.Parse(rawID)
			if err == nil {
				cluster, err := s.deps.Clusters.GetByID(sctx.DBC, clusterID)
				if err != nil {
					return nil, nil, err
				}
				if cluster != nil {
					return cluster, nil, nil
				}
				// Committed cluster was deleted; fall through to re-roll.
			}
		}
	}

	candidates, err := sctx.AvailableClusters()
	if err != nil {
		return nil, nil, err
	}
	if len(candidates) == 0 {
		return nil, Declined(DeclineNoClusters, "no clusters available for %s", sctx.Persona.Name), nil
	}

	filtered, err := sctx.FilterByVariety(candidates)
	if err != nil {
		return nil, nil, err
	}
	if len(filtered) == 0 {
		filtered = candidates
	}

	cluster := filtered[sctx.Rand.Intn(len(filtered))]

	// Commit under the state store's lost-update guard. When a concurrent
	// selection committed this week first, adopt its cluster instead of
	// overwriting the commitment.
	winnerID := cluster.ID
	err = s.deps.State.Mutate(sctx.DBC, sctx.Persona.ID, func(data map[string]any) (map[string]any, error) {
		if storedWeek, ok := stateString(data, stateKeyWeek); ok && storedWeek == week {
			if rawID, ok := stateString(data, stateKeyCluster); ok {
				if id, parseErr := uuid.Parse(rawID); parseErr == nil {
					winnerID = id
					return nil, nil
				}
			}
		}
		data[stateKeyWeek] = week
		data[stateKeyCluster] = cluster.ID.String()
		return data, nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("commit weekly cluster: %w", err)
	}
	if winnerID != cluster.ID {
		winner, err := s.deps.Clusters.GetByID(sctx.DBC, winnerID)
		if err != nil {
			return nil, nil, err
		}
		if winner != nil {
			sctx.RefreshState()
			return winner, nil, nil
		}
	}
	if err := s.deps.State.StampStartedAt(sctx.DBC, sctx.Persona.ID, sctx.Now); err != nil {
		return nil, nil, err
	}
	sctx.RefreshState()
	return cluster, nil, nil
}

func isoWeek(sctx *Context) string {
	year, week := sctx.Now.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
