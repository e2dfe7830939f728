package strategy

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
)

// Strategy picks the next photo for a persona and records the outcome once
// the resulting post is published. Implementations keep their cross-
// invocation state in StrategyState through the Context's StateStore.
type Strategy interface {
	// Name is the stable lowercase identifier used for registry lookup and
	// for tagging history records.
	Name() string
	// SelectNextPhoto returns a selection or a soft decline. Hard faults
	// (query or persistence failures) come back as errors.
	SelectNextPhoto(sctx *Context) (*Result, error)
	// AfterPost records a history record for the published post and
	// invalidates the persona's cached state. Implementations extending it
	// must still perform the base behavior.
	AfterPost(sctx *Context, post *domain.Post, photo *domain.Photo, cluster *domain.Cluster) error
}

// baseStrategy carries the shared behavior: frequency validation and
// history recording.
type baseStrategy struct {
	name string
	deps Deps
}

func (b *baseStrategy) Name() string { return b.name }

// validatePostingFrequency declines further selection once the weekly cap
// is reached.
func (b *baseStrategy) validatePostingFrequency(sctx *Context) (*Result, error) {
	posts, err := sctx.PostsThisWeek()
	if err != nil {
		return nil, err
	}
	max := sctx.Config.PostingFrequency.Max
	if posts >= max {
		return Declined(DeclineFrequencyCap,
			"posting frequency cap reached for %s: %d posts this week (max %d)",
			sctx.Persona.Name, posts, max), nil
	}
	return nil, nil
}

// recordHistory appends the audit record and unconditionally invalidates
// the persona's cached state. History durability precedes cache
// invalidation so a racing read can at worst observe fresh state.
func (b *baseStrategy) recordHistory(sctx *Context, post *domain.Post, photo *domain.Photo, cluster *domain.Cluster, extra map[string]any) error {
	snapshot := map[string]any{
		"strategy":  b.name,
		"timestamp": sctx.Now.UTC().Format(time.RFC3339),
	}
	if photo != nil {
		snapshot["photo_id"] = photo.ID.String()
	}
	if cluster != nil {
		snapshot["cluster_id"] = cluster.ID.String()
	}
	if sctx.SelectedPillar != nil {
		snapshot["pillar_id"] = sctx.SelectedPillar.ID.String()
	}
	for k, v := range extra {
		snapshot[k] = v
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal decision context: %w", err)
	}

	record := &domain.HistoryRecord{
		ID:              uuid.New(),
		PersonaID:       sctx.Persona.ID,
		StrategyName:    b.name,
		DecisionContext: raw,
		CreatedAt:       sctx.Now.UTC(),
	}
	if post != nil {
		record.PostID = &post.ID
	}
	if cluster != nil {
		record.ClusterID = &cluster.ID
	}
	if sctx.SelectedPillar != nil {
		record.PillarID = &sctx.SelectedPillar.ID
	}

	if err := b.deps.History.Create(sctx.DBC, []*domain.HistoryRecord{record}); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	if err := b.deps.State.Invalidate(sctx.DBC.Ctx, sctx.Persona.ID); err != nil {
		return fmt.Errorf("invalidate state cache: %w", err)
	}
	return nil
}

// pickPhoto selects uniformly at random among the cluster's unposted
// photos. A committed but exhausted cluster declines rather than erroring.
func (b *baseStrategy) pickPhoto(sctx *Context, cluster *domain.Cluster) (*domain.Photo, *Result, error) {
	photos, err := b.deps.Photos.UnpostedByCluster(sctx.DBC, cluster.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(photos) == 0 {
		return nil, Declined(DeclineNoPhotos, "No photos available in cluster %s", cluster.Name), nil
	}
	return photos[sctx.Rand.Intn(len(photos))], nil, nil
}

// buildSelection assembles the publish parameters for a chosen photo.
func (b *baseStrategy) buildSelection(sctx *Context, cluster *domain.Cluster, photo *domain.Photo) (*Result, error) {
	optimalTime, err := OptimalPostingTime(sctx.Config, sctx.Rand, sctx.Now, nil)
	if err != nil {
		return nil, err
	}
	return Selected(&Selection{
		Photo:       photo,
		Cluster:     cluster,
		OptimalTime: optimalTime,
		Hashtags:    GenerateHashtags(sctx.Config, sctx.Rand, cluster, photo),
		Format:      RecommendFormat(sctx.Config, photo),
	}), nil
}

// stateInt reads an integer out of decoded state data. JSON numbers decode
// as float64.
func stateInt(data map[string]any, key string) (int, bool) {
	v, ok := data[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

func stateString(data map[string]any, key string) (string, bool) {
	v, ok := data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
