package repos

import (
	"context"
	"testing"
	"time"

	"github.com/timlawrenz/fluffy-train-sub000/internal/data/repos/testutil"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
)

func TestPillarRepoActiveByPersonaFiltersDateRange(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPillarRepo(db, testutil.Logger(t))

	persona := testutil.SeedPersona(t, ctx, tx, "lena")
	now := time.Now().UTC()

	active := testutil.SeedPillar(t, ctx, tx, persona.ID, "Evergreen", 50, 1)
	expired := testutil.SeedPillar(t, ctx, tx, persona.ID, "Expired", 30, 2)
	future := testutil.SeedPillar(t, ctx, tx, persona.ID, "Upcoming", 20, 3)

	past := now.AddDate(0, 0, -1)
	later := now.AddDate(0, 0, 1)
	if err := tx.Model(expired).Update("active_until", past).Error; err != nil {
		t.Fatalf("expire pillar: %v", err)
	}
	if err := tx.Model(future).Update("active_from", later).Error; err != nil {
		t.Fatalf("defer pillar: %v", err)
	}

	rows, err := repo.ActiveByPersona(dbc, persona.ID, now)
	if err != nil {
		t.Fatalf("ActiveByPersona: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("active pillars: want=1 got=%d", len(rows))
	}
	if rows[0].ID != active.ID {
		t.Fatalf("active pillar: want=%s got=%s", active.Name, rows[0].Name)
	}
}

func TestPillarRepoActiveByPersonaOrdersByPriority(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPillarRepo(db, testutil.Logger(t))

	persona := testutil.SeedPersona(t, ctx, tx, "milo")
	low := testutil.SeedPillar(t, ctx, tx, persona.ID, "Background", 20, 9)
	high := testutil.SeedPillar(t, ctx, tx, persona.ID, "Flagship", 60, 1)

	rows, err := repo.ActiveByPersona(dbc, persona.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("ActiveByPersona: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("active pillars: want=2 got=%d", len(rows))
	}
	if rows[0].ID != high.ID || rows[1].ID != low.ID {
		t.Fatalf("priority ordering: want=[Flagship Background] got=[%s %s]", rows[0].Name, rows[1].Name)
	}
}
