package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/timlawrenz/fluffy-train-sub000/internal/data/repos/testutil"
)

func TestFilterByVarietyExcludesClustersWithinMinDaysGap(t *testing.T) {
	ctx := context.Background()
	h := newStrategyHarness(t)

	persona := testutil.SeedPersona(t, ctx, h.tx, "xena")
	recent := testutil.SeedCluster(t, ctx, h.tx, persona.ID, "Recent")
	stale := testutil.SeedCluster(t, ctx, h.tx, persona.ID, "Stale")
	testutil.SeedPhoto(t, ctx, h.tx, persona.ID, &recent.ID, "r1.jpg")
	testutil.SeedPhoto(t, ctx, h.tx, persona.ID, &stale.ID, "s1.jpg")

	now := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	// Used yesterday: inside the 2-day gap. The other used 5 days ago.
	testutil.SeedHistory(t, ctx, h.tx, persona.ID, &recent.ID, nil, ThemeOfWeekName, now.AddDate(0, 0, -1))
	testutil.SeedHistory(t, ctx, h.tx, persona.ID, &stale.ID, nil, ThemeOfWeekName, now.AddDate(0, 0, -5))

	sctx := h.context(t, persona, now, 1)
	candidates, err := sctx.AvailableClusters()
	if err != nil {
		t.Fatalf("AvailableClusters: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("candidates: want=2 got=%d", len(candidates))
	}

	filtered, err := sctx.FilterByVariety(candidates)
	if err != nil {
		t.Fatalf("FilterByVariety: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("filtered: want=1 got=%d", len(filtered))
	}
	if filtered[0].ID != stale.ID {
		t.Fatalf("surviving cluster: want=Stale got=%s", filtered[0].Name)
	}
}

func TestFilterByVarietyBoundaryAtExactMinDaysGap(t *testing.T) {
	ctx := context.Background()
	h := newStrategyHarness(t)

	persona := testutil.SeedPersona(t, ctx, h.tx, "xiu")
	edge := testutil.SeedCluster(t, ctx, h.tx, persona.ID, "Edge")
	older := testutil.SeedCluster(t, ctx, h.tx, persona.ID, "Older")
	testutil.SeedPhoto(t, ctx, h.tx, persona.ID, &edge.ID, "e1.jpg")
	testutil.SeedPhoto(t, ctx, h.tx, persona.ID, &older.ID, "o1.jpg")

	now := time.Date(2026, 9, 6, 6, 0, 0, 0, time.UTC)
	// Exactly min_days_gap days ago is still within the gap and excluded;
	// one day older is allowed.
	testutil.SeedHistory(t, ctx, h.tx, persona.ID, &edge.ID, nil, ThematicRotationName, now.AddDate(0, 0, -2))
	testutil.SeedHistory(t, ctx, h.tx, persona.ID, &older.ID, nil, ThematicRotationName, now.AddDate(0, 0, -3))

	sctx := h.context(t, persona, now, 1)
	candidates, err := sctx.AvailableClusters()
	if err != nil {
		t.Fatalf("AvailableClusters: %v", err)
	}
	filtered, err := sctx.FilterByVariety(candidates)
	if err != nil {
		t.Fatalf("FilterByVariety: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("filtered: want=1 got=%d", len(filtered))
	}
	if filtered[0].ID != older.ID {
		t.Fatalf("surviving cluster: want=Older got=%s", filtered[0].Name)
	}
}

func TestFilterByVarietyExcludesClustersAtWeeklyMax(t *testing.T) {
	ctx := context.Background()
	h := newStrategyHarness(t)

	persona := testutil.SeedPersona(t, ctx, h.tx, "yuri")
	heavy := testutil.SeedCluster(t, ctx, h.tx, persona.ID, "Heavy")
	light := testutil.SeedCluster(t, ctx, h.tx, persona.ID, "Light")
	testutil.SeedPhoto(t, ctx, h.tx, persona.ID, &heavy.ID, "h1.jpg")
	testutil.SeedPhoto(t, ctx, h.tx, persona.ID, &light.ID, "l1.jpg")

	// Thursday; the calendar week started Monday Aug 31.
	now := time.Date(2026, 9, 3, 12, 0, 0, 0, time.UTC)
	// Two uses this week, both outside the 2-day recency gap.
	testutil.SeedHistory(t, ctx, h.tx, persona.ID, &heavy.ID, nil, ThematicRotationName, time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC))
	testutil.SeedHistory(t, ctx, h.tx, persona.ID, &heavy.ID, nil, ThematicRotationName, time.Date(2026, 8, 31, 20, 0, 0, 0, time.UTC))

	sctx := h.context(t, persona, now, 1)
	candidates, err := sctx.AvailableClusters()
	if err != nil {
		t.Fatalf("AvailableClusters: %v", err)
	}
	out, err := sctx.FilterByVariety(candidates)
	if err != nil {
		t.Fatalf("FilterByVariety: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("filtered: want=1 got=%d", len(out))
	}
	if out[0].ID != light.ID {
		t.Fatalf("surviving cluster: want=Light got=%s", out[0].Name)
	}
}

func TestFilterByVarietyEmptyResultFallsBackToCandidatesInStrategies(t *testing.T) {
	ctx := context.Background()
	h := newStrategyHarness(t)
	strat := NewThematicRotationStrategy(h.deps)

	persona := testutil.SeedPersona(t, ctx, h.tx, "zoe")
	only := testutil.SeedCluster(t, ctx, h.tx, persona.ID, "Solo")
	testutil.SeedPhoto(t, ctx, h.tx, persona.ID, &only.ID, "s1.jpg")

	now := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	// The single cluster was used yesterday, so variety filters everything.
	testutil.SeedHistory(t, ctx, h.tx, persona.ID, &only.ID, nil, ThematicRotationName, now.AddDate(0, 0, -1))

	result, err := strat.SelectNextPhoto(h.context(t, persona, now, 1))
	if err != nil {
		t.Fatalf("SelectNextPhoto: %v", err)
	}
	if result.Declined() {
		t.Fatalf("variety preference must not block the only cluster: %s", result.Decline.Reason)
	}
	if result.Selection.Cluster.ID != only.ID {
		t.Fatalf("fallback cluster: want=Solo got=%s", result.Selection.Cluster.Name)
	}
}
