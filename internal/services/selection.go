package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
	"github.com/timlawrenz/fluffy-train-sub000/internal/strategy"
)

// SelectionResult is the uniform outcome of a selection attempt: either a
// selection plus its parameters, or a soft decline explaining why nothing
// was selected.
type SelectionResult struct {
	StrategyName string
	Pillar       *domain.Pillar
	Selection    *strategy.Selection
	Decline      *strategy.Decline
}

func (r *SelectionResult) Declined() bool {
	return r != nil && r.Decline != nil
}

// PreparedContent is a caption with hashtags appended, tagged with which
// generation path produced it.
type PreparedContent struct {
	Caption       string
	CaptionSource string
}

// PublishResult reports one full pipeline run for a persona.
type PublishResult struct {
	SelectionResult
	Post *domain.Post
}

// SelectionService is the orchestration entry point: it resolves the
// active strategy, builds the per-selection context, and invokes the
// strategy; PublishNext completes the pipeline through caption generation,
// publishing, and after-post recording.
type SelectionService interface {
	SelectNextPost(dbc dbctx.Context, persona *domain.Persona, strategyName string) (*SelectionResult, error)
	PreparePostContent(ctx context.Context, persona *domain.Persona, sel *strategy.Selection) (*PreparedContent, error)
	PublishNext(ctx context.Context, persona *domain.Persona) (*PublishResult, error)
}

type selectionService struct {
	log       *logger.Logger
	db        *gorm.DB
	registry  *strategy.Registry
	deps      strategy.Deps
	config    ConfigService
	rotation  RotationService
	state     StateService
	posts     PostRepoWriter
	generator TextGenerator
	publisher Publisher
	now       func() time.Time
}

// PostRepoWriter is the slice of PostRepo the orchestrator needs.
type PostRepoWriter interface {
	Create(dbc dbctx.Context, posts []*domain.Post) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
}

type SelectionServiceParams struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Registry  *strategy.Registry
	Deps      strategy.Deps
	Config    ConfigService
	Rotation  RotationService
	State     StateService
	Posts     PostRepoWriter
	Generator TextGenerator
	Publisher Publisher
}

func NewSelectionService(params SelectionServiceParams) SelectionService {
	return &selectionService{
		log:       params.Log.With("service", "SelectionService"),
		db:        params.DB,
		registry:  params.Registry,
		deps:      params.Deps,
		config:    params.Config,
		rotation:  params.Rotation,
		state:     params.State,
		posts:     params.Posts,
		generator: params.Generator,
		publisher: params.Publisher,
		now:       time.Now,
	}
}

func (s *selectionService) SelectNextPost(dbc dbctx.Context, persona *domain.Persona, strategyName string) (*SelectionResult, error) {
	result, _, _, err := s.selectWithContext(dbc, persona, strategyName)
	return result, err
}

// selectWithContext also returns the strategy instance and its context so
// PublishNext can drive after-post handling.
func (s *selectionService) selectWithContext(dbc dbctx.Context, persona *domain.Persona, strategyName string) (*SelectionResult, strategy.Strategy, *strategy.Context, error) {
	if persona == nil || persona.ID == uuid.Nil {
		return nil, nil, nil, fmt.Errorf("persona required")
	}

	name, err := s.resolveStrategyName(dbc, persona, strategyName)
	if err != nil {
		return nil, nil, nil, err
	}
	factory, err := s.registry.Get(name)
	if err != nil {
		return nil, nil, nil, err
	}

	cfg, err := s.config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	var pillar *domain.Pillar
	if persona.UsesPillars() {
		pillar, err = s.rotation.SelectNextPillar(dbc, persona)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("resolve pillar: %w", err)
		}
	}

	sctx := strategy.NewContext(strategy.ContextParams{
		DBC:            dbc,
		Persona:        persona,
		Now:            s.now().UTC(),
		Config:         cfg,
		SelectedPillar: pillar,
		Deps:           s.deps,
	})

	strat := factory(s.deps)
	outcome, err := strat.SelectNextPhoto(sctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("strategy %s: %w", name, err)
	}

	result := &SelectionResult{
		StrategyName: name,
		Pillar:       pillar,
		Selection:    outcome.Selection,
		Decline:      outcome.Decline,
	}
	return result, strat, sctx, nil
}

// resolveStrategyName applies the resolution order: explicit argument, the
// persona's persisted active strategy, then the process default.
func (s *selectionService) resolveStrategyName(dbc dbctx.Context, persona *domain.Persona, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	state, err := s.state.Load(dbc, persona.ID)
	if err != nil {
		return "", err
	}
	if state != nil && state.ActiveStrategy != "" {
		return state.ActiveStrategy, nil
	}
	return strategy.DefaultStrategyName, nil
}

func (s *selectionService) PreparePostContent(ctx context.Context, persona *domain.Persona, sel *strategy.Selection) (*PreparedContent, error) {
	if sel == nil || sel.Photo == nil {
		return nil, fmt.Errorf("selection required")
	}

	brief := CaptionBrief{
		PersonaName:  persona.Name,
		PhotoSummary: sel.Photo.Description,
		Style:        decodeCaptionStyle(persona),
	}
	if sel.Cluster != nil {
		brief.ClusterName = sel.Cluster.Name
	}

	caption, err := s.generator.Generate(ctx, brief)
	source := domain.CaptionSourceGenerated
	if err != nil {
		// The stored photo description is the deterministic fallback.
		s.log.Warn("Caption generation failed, using photo description",
			"persona", persona.Name, "error", err)
		caption = sel.Photo.Description
		source = domain.CaptionSourceFallback
	}

	if len(sel.Hashtags) > 0 {
		caption = strings.TrimSpace(caption) + "\n\n" + strings.Join(sel.Hashtags, " ")
	}
	return &PreparedContent{Caption: caption, CaptionSource: source}, nil
}

func (s *selectionService) PublishNext(ctx context.Context, persona *domain.Persona) (*PublishResult, error) {
	dbc := dbctx.Context{Ctx: ctx}

	result, strat, sctx, err := s.selectWithContext(dbc, persona, "")
	if err != nil {
		return nil, err
	}
	if result.Declined() {
		return &PublishResult{SelectionResult: *result}, nil
	}
	sel := result.Selection

	content, err := s.PreparePostContent(ctx, persona, sel)
	if err != nil {
		return nil, err
	}

	scheduledFor := sel.OptimalTime
	post := &domain.Post{
		ID:            uuid.New(),
		PersonaID:     persona.ID,
		PhotoID:       sel.Photo.ID,
		Caption:       content.Caption,
		CaptionSource: content.CaptionSource,
		Format:        sel.Format,
		Status:        domain.PostStatusPending,
		ScheduledFor:  &scheduledFor,
	}
	if err := s.posts.Create(dbc, []*domain.Post{post}); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	providerID, pubErr := s.publisher.Publish(ctx, persona, sel.Photo, content.Caption)
	if pubErr != nil {
		if err := s.posts.UpdateFields(dbc, post.ID, map[string]any{
			"status": domain.PostStatusFailed,
		}); err != nil {
			s.log.Error("Failed to mark post failed", "post_id", post.ID, "error", err)
		}
		post.Status = domain.PostStatusFailed
		return &PublishResult{SelectionResult: *result, Post: post}, fmt.Errorf("publish: %w", pubErr)
	}

	// History must be durable before the post is marked published; the two
	// writes share a transaction so a crash never yields a published post
	// with no audit trail.
	now := s.now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		sctx.DBC = txc
		if err := strat.AfterPost(sctx, post, sel.Photo, sel.Cluster); err != nil {
			return err
		}
		return s.posts.UpdateFields(txc, post.ID, map[string]any{
			"status":           domain.PostStatusPublished,
			"provider_post_id": providerID,
			"posted_at":        now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("finalize post: %w", err)
	}

	post.Status = domain.PostStatusPublished
	post.ProviderPostID = &providerID
	post.PostedAt = &now
	return &PublishResult{SelectionResult: *result, Post: post}, nil
}

func decodeCaptionStyle(persona *domain.Persona) map[string]any {
	if len(persona.CaptionStyle) == 0 {
		return nil
	}
	out := map[string]any{}
	if err := json.Unmarshal(persona.CaptionStyle, &out); err != nil {
		return nil
	}
	return out
}
