package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
)

func SeedPersona(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *domain.Persona {
	tb.Helper()
	p := &domain.Persona{
		ID:   uuid.New(),
		Name: name,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed persona: %v", err)
	}
	return p
}

func SeedPillar(tb testing.TB, ctx context.Context, tx *gorm.DB, personaID uuid.UUID, name string, weight float64, priority int) *domain.Pillar {
	tb.Helper()
	p := &domain.Pillar{
		ID:        uuid.New(),
		PersonaID: personaID,
		Name:      name,
		Weight:    weight,
		Priority:  priority,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed pillar: %v", err)
	}
	return p
}

func SeedCluster(tb testing.TB, ctx context.Context, tx *gorm.DB, personaID uuid.UUID, name string) *domain.Cluster {
	tb.Helper()
	c := &domain.Cluster{
		ID:        uuid.New(),
		PersonaID: personaID,
		Name:      name,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed cluster: %v", err)
	}
	return c
}

func LinkPillarCluster(tb testing.TB, ctx context.Context, tx *gorm.DB, pillarID, clusterID uuid.UUID) {
	tb.Helper()
	if err := tx.WithContext(ctx).
		Exec(`INSERT INTO pillar_clusters (pillar_id, cluster_id) VALUES (?, ?)`, pillarID, clusterID).Error; err != nil {
		tb.Fatalf("link pillar cluster: %v", err)
	}
}

func SeedPhoto(tb testing.TB, ctx context.Context, tx *gorm.DB, personaID uuid.UUID, clusterID *uuid.UUID, filename string) *domain.Photo {
	tb.Helper()
	p := &domain.Photo{
		ID:        uuid.New(),
		PersonaID: personaID,
		ClusterID: clusterID,
		Filename:  filename,
		Metadata:  []byte(`{}`),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed photo: %v", err)
	}
	return p
}

func SeedPhotoWithAnalysis(tb testing.TB, ctx context.Context, tx *gorm.DB, personaID uuid.UUID, clusterID *uuid.UUID, filename string, analysis domain.PhotoAnalysis) *domain.Photo {
	tb.Helper()
	raw, err := json.Marshal(analysis)
	if err != nil {
		tb.Fatalf("marshal photo analysis: %v", err)
	}
	p := &domain.Photo{
		ID:        uuid.New(),
		PersonaID: personaID,
		ClusterID: clusterID,
		Filename:  filename,
		Metadata:  raw,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed photo: %v", err)
	}
	return p
}

// SeedPost marks a photo as posted.
func SeedPost(tb testing.TB, ctx context.Context, tx *gorm.DB, personaID, photoID uuid.UUID) *domain.Post {
	tb.Helper()
	now := time.Now().UTC()
	p := &domain.Post{
		ID:        uuid.New(),
		PersonaID: personaID,
		PhotoID:   photoID,
		Format:    domain.FormatStatic,
		Status:    domain.PostStatusPublished,
		PostedAt:  &now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed post: %v", err)
	}
	return p
}

// SeedHistory inserts a history record backdated to at.
func SeedHistory(tb testing.TB, ctx context.Context, tx *gorm.DB, personaID uuid.UUID, clusterID, pillarID *uuid.UUID, strategyName string, at time.Time) *domain.HistoryRecord {
	tb.Helper()
	h := &domain.HistoryRecord{
		ID:           uuid.New(),
		PersonaID:    personaID,
		ClusterID:    clusterID,
		PillarID:     pillarID,
		StrategyName: strategyName,
		CreatedAt:    at,
	}
	if err := tx.WithContext(ctx).Create(h).Error; err != nil {
		tb.Fatalf("seed history: %v", err)
	}
	return h
}
