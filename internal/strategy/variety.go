package strategy

import (
	"time"

	"github.com/google/uuid"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
)

// FilterByVariety removes clusters that would violate the variety rules:
// used within the minimum day gap, or used at least the weekly maximum
// since the start of the current calendar week. Variety is a soft
// preference; callers fall back to the unfiltered list when filtering
// empties it.
func (c *Context) FilterByVariety(clusters []*domain.Cluster) ([]*domain.Cluster, error) {
	if len(clusters) == 0 {
		return clusters, nil
	}

	gapSince := c.Now.AddDate(0, 0, -c.Config.Variety.MinDaysGap)
	recent, err := c.deps.History.RecentByPersona(c.DBC, c.Persona.ID, gapSince)
	if err != nil {
		return nil, err
	}
	withinGap := make(map[uuid.UUID]bool)
	for _, record := range recent {
		if record.ClusterID != nil {
			withinGap[*record.ClusterID] = true
		}
	}

	loc, err := c.Config.Location()
	if err != nil {
		return nil, err
	}
	weekStart := startOfWeek(c.Now.In(loc))

	var out []*domain.Cluster
	for _, cluster := range clusters {
		if withinGap[cluster.ID] {
			continue
		}
		uses, err := c.deps.History.CountByClusterSince(c.DBC, c.Persona.ID, cluster.ID, weekStart)
		if err != nil {
			return nil, err
		}
		if uses >= int64(c.Config.Variety.MaxSameCluster) {
			continue
		}
		out = append(out, cluster)
	}
	return out, nil
}

// startOfWeek returns Monday 00:00 of t's calendar week.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	day := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}
