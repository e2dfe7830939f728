package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/timlawrenz/fluffy-train-sub000/internal/data/repos/testutil"
	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
)

func seedRotationClusters(t *testing.T, h *strategyHarness, persona *domain.Persona, names []string) map[string]uuid.UUID {
	t.Helper()
	ctx := context.Background()
	out := make(map[string]uuid.UUID, len(names))
	for _, name := range names {
		cluster := testutil.SeedCluster(t, ctx, h.tx, persona.ID, name)
		testutil.SeedPhoto(t, ctx, h.tx, persona.ID, &cluster.ID, name+"-1.jpg")
		testutil.SeedPhoto(t, ctx, h.tx, persona.ID, &cluster.ID, name+"-2.jpg")
		out[name] = cluster.ID
	}
	return out
}

func TestThematicRotationSelectsClusterAtStoredIndexModulo(t *testing.T) {
	ctx := context.Background()
	h := newStrategyHarness(t)
	strat := NewThematicRotationStrategy(h.deps)

	persona := testutil.SeedPersona(t, ctx, h.tx, "tara")
	// Candidates come back alphabetically: Alpha, Bravo, Charlie.
	ids := seedRotationClusters(t, h, persona, []string{"Bravo", "Alpha", "Charlie"})

	now := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	if err := h.state.Update(h.dbc, persona.ID, map[string]any{"rotation_index": 2}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	result, err := strat.SelectNextPhoto(h.context(t, persona, now, 1))
	if err != nil {
		t.Fatalf("SelectNextPhoto: %v", err)
	}
	if result.Declined() {
		t.Fatalf("unexpected decline: %s", result.Decline.Reason)
	}
	if result.Selection.Cluster.ID != ids["Charlie"] {
		t.Fatalf("cluster at index 2: want=Charlie got=%s", result.Selection.Cluster.Name)
	}
}

func TestThematicRotationIndexWrapsViaModulo(t *testing.T) {
	ctx := context.Background()
	h := newStrategyHarness(t)
	strat := NewThematicRotationStrategy(h.deps)

	persona := testutil.SeedPersona(t, ctx, h.tx, "uma")
	ids := seedRotationClusters(t, h, persona, []string{"Alpha", "Bravo", "Charlie"})

	now := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	if err := h.state.Update(h.dbc, persona.ID, map[string]any{"rotation_index": 3}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	result, err := strat.SelectNextPhoto(h.context(t, persona, now, 1))
	if err != nil {
		t.Fatalf("SelectNextPhoto: %v", err)
	}
	if result.Declined() {
		t.Fatalf("unexpected decline: %s", result.Decline.Reason)
	}
	if result.Selection.Cluster.ID != ids["Alpha"] {
		t.Fatalf("wrapped cluster: want=Alpha got=%s", result.Selection.Cluster.Name)
	}
}

func TestThematicRotationAfterPostIncrementsStoredIndex(t *testing.T) {
	ctx := context.Background()
	h := newStrategyHarness(t)
	strat := NewThematicRotationStrategy(h.deps)

	persona := testutil.SeedPersona(t, ctx, h.tx, "vera")
	cluster := testutil.SeedCluster(t, ctx, h.tx, persona.ID, "Docks")
	photo := testutil.SeedPhoto(t, ctx, h.tx, persona.ID, &cluster.ID, "d1.jpg")
	post := testutil.SeedPost(t, ctx, h.tx, persona.ID, photo.ID)

	now := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	if err := h.state.Update(h.dbc, persona.ID, map[string]any{"rotation_index": 6}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	sctx := h.context(t, persona, now, 1)
	if err := strat.AfterPost(sctx, post, photo, cluster); err != nil {
		t.Fatalf("AfterPost: %v", err)
	}

	state, err := h.state.Load(h.dbc, persona.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	index, ok := state.Data()["rotation_index"].(float64)
	if !ok || int(index) != 7 {
		t.Fatalf("rotation index: want=7 got=%v", state.Data()["rotation_index"])
	}
}

func TestThematicRotationConcurrentAfterPostsKeepEveryIncrement(t *testing.T) {
	ctx := context.Background()
	h := newStrategyHarness(t)
	strat := NewThematicRotationStrategy(h.deps)

	persona := testutil.SeedPersona(t, ctx, h.tx, "wim")
	cluster := testutil.SeedCluster(t, ctx, h.tx, persona.ID, "Piers")
	photo := testutil.SeedPhoto(t, ctx, h.tx, persona.ID, &cluster.ID, "p1.jpg")
	post := testutil.SeedPost(t, ctx, h.tx, persona.ID, photo.ID)

	now := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	if err := h.state.Update(h.dbc, persona.ID, map[string]any{"rotation_index": 4}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	// This selection memoized index 4; an overlapped selection advances
	// the stored index before our AfterPost lands.
	sctx := h.context(t, persona, now, 1)
	if _, err := sctx.State(); err != nil {
		t.Fatalf("memoize state: %v", err)
	}
	if _, err := h.state.IncrementKey(h.dbc, persona.ID, "rotation_index", 1); err != nil {
		t.Fatalf("concurrent increment: %v", err)
	}

	if err := strat.AfterPost(sctx, post, photo, cluster); err != nil {
		t.Fatalf("AfterPost: %v", err)
	}

	state, err := h.state.Load(h.dbc, persona.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	index, ok := state.Data()["rotation_index"].(float64)
	if !ok || int(index) != 6 {
		t.Fatalf("rotation index after two posts: want=6 got=%v", state.Data()["rotation_index"])
	}
}

func TestThematicRotationMissingIndexStartsAtZero(t *testing.T) {
	ctx := context.Background()
	h := newStrategyHarness(t)
	strat := NewThematicRotationStrategy(h.deps)

	persona := testutil.SeedPersona(t, ctx, h.tx, "wes")
	ids := seedRotationClusters(t, h, persona, []string{"Alpha", "Bravo"})

	result, err := strat.SelectNextPhoto(h.context(t, persona, time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC), 1))
	if err != nil {
		t.Fatalf("SelectNextPhoto: %v", err)
	}
	if result.Declined() {
		t.Fatalf("unexpected decline: %s", result.Decline.Reason)
	}
	if result.Selection.Cluster.ID != ids["Alpha"] {
		t.Fatalf("fresh state cluster: want=Alpha got=%s", result.Selection.Cluster.Name)
	}
}
