package repos

import (
	"context"
	"testing"

	"github.com/timlawrenz/fluffy-train-sub000/internal/data/repos/testutil"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
)

func TestPhotoRepoUnpostedByClusterExcludesPostedPhotos(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPhotoRepo(db, testutil.Logger(t))

	persona := testutil.SeedPersona(t, ctx, tx, "dana")
	cluster := testutil.SeedCluster(t, ctx, tx, persona.ID, "Forest")
	fresh := testutil.SeedPhoto(t, ctx, tx, persona.ID, &cluster.ID, "a_fresh.jpg")
	used := testutil.SeedPhoto(t, ctx, tx, persona.ID, &cluster.ID, "b_used.jpg")
	testutil.SeedPost(t, ctx, tx, persona.ID, used.ID)

	rows, err := repo.UnpostedByCluster(dbc, cluster.ID)
	if err != nil {
		t.Fatalf("UnpostedByCluster: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("unposted photos: want=1 got=%d", len(rows))
	}
	if rows[0].ID != fresh.ID {
		t.Fatalf("unposted photo: want=%s got=%s", fresh.Filename, rows[0].Filename)
	}
}

func TestPhotoRepoUnpostedByClusterOrdersByFilename(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPhotoRepo(db, testutil.Logger(t))

	persona := testutil.SeedPersona(t, ctx, tx, "eli")
	cluster := testutil.SeedCluster(t, ctx, tx, persona.ID, "City")
	testutil.SeedPhoto(t, ctx, tx, persona.ID, &cluster.ID, "b.jpg")
	testutil.SeedPhoto(t, ctx, tx, persona.ID, &cluster.ID, "a.jpg")

	rows, err := repo.UnpostedByCluster(dbc, cluster.ID)
	if err != nil {
		t.Fatalf("UnpostedByCluster: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("unposted photos: want=2 got=%d", len(rows))
	}
	if rows[0].Filename != "a.jpg" || rows[1].Filename != "b.jpg" {
		t.Fatalf("ordering: want=[a.jpg b.jpg] got=[%s %s]", rows[0].Filename, rows[1].Filename)
	}
}

func TestPhotoRepoCountUnpostedByPillar(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPhotoRepo(db, testutil.Logger(t))

	persona := testutil.SeedPersona(t, ctx, tx, "finn")
	pillar := testutil.SeedPillar(t, ctx, tx, persona.ID, "Food", 30, 2)
	cluster := testutil.SeedCluster(t, ctx, tx, persona.ID, "Brunch")
	other := testutil.SeedCluster(t, ctx, tx, persona.ID, "Hiking")
	testutil.LinkPillarCluster(t, ctx, tx, pillar.ID, cluster.ID)

	testutil.SeedPhoto(t, ctx, tx, persona.ID, &cluster.ID, "p1.jpg")
	testutil.SeedPhoto(t, ctx, tx, persona.ID, &cluster.ID, "p2.jpg")
	posted := testutil.SeedPhoto(t, ctx, tx, persona.ID, &cluster.ID, "p3.jpg")
	testutil.SeedPost(t, ctx, tx, persona.ID, posted.ID)
	testutil.SeedPhoto(t, ctx, tx, persona.ID, &other.ID, "unlinked.jpg")

	count, err := repo.CountUnpostedByPillar(dbc, pillar.ID)
	if err != nil {
		t.Fatalf("CountUnpostedByPillar: %v", err)
	}
	if count != 2 {
		t.Fatalf("unposted count: want=2 got=%d", count)
	}
}

func TestPhotoRepoCountUnpostedByPersona(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPhotoRepo(db, testutil.Logger(t))

	persona := testutil.SeedPersona(t, ctx, tx, "gil")
	stranger := testutil.SeedPersona(t, ctx, tx, "hope")
	cluster := testutil.SeedCluster(t, ctx, tx, persona.ID, "Dunes")

	testutil.SeedPhoto(t, ctx, tx, persona.ID, &cluster.ID, "d1.jpg")
	testutil.SeedPhoto(t, ctx, tx, persona.ID, nil, "loose.jpg")
	posted := testutil.SeedPhoto(t, ctx, tx, persona.ID, &cluster.ID, "d2.jpg")
	testutil.SeedPost(t, ctx, tx, persona.ID, posted.ID)
	testutil.SeedPhoto(t, ctx, tx, stranger.ID, nil, "theirs.jpg")

	count, err := repo.CountUnpostedByPersona(dbc, persona.ID)
	if err != nil {
		t.Fatalf("CountUnpostedByPersona: %v", err)
	}
	if count != 2 {
		t.Fatalf("unposted count: want=2 got=%d", count)
	}
}
