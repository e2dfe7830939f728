package strategy

import (
	"fmt"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
)

const ThematicRotationName = "thematic_rotation"

const stateKeyRotationIndex = "rotation_index"

// thematicRotation round-robins over the eligible clusters. The stored
// index only ever increments; wrap-around happens via modulo at read time,
// so the index stays monotonic across the strategy's lifetime while the
// effective cluster choice wraps.
type thematicRotation struct {
	baseStrategy
}

func NewThematicRotationStrategy(deps Deps) Strategy {
	return &thematicRotation{baseStrategy{name: ThematicRotationName, deps: deps}}
}

func (s *thematicRotation) SelectNextPhoto(sctx *Context) (*Result, error) {
	if declined, err := s.validatePostingFrequency(sctx); declined != nil || err != nil {
		return declined, err
	}

	candidates, err := sctx.AvailableClusters()
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return Declined(DeclineNoClusters, "no clusters available for %s", sctx.Persona.Name), nil
	}

	filtered, err := sctx.FilterByVariety(candidates)
	if err != nil {
		return nil, err
	}
	if len(filtered) == 0 {
		filtered = candidates
	}

	index, err := s.rotationIndex(sctx)
	if err != nil {
		return nil, err
	}
	cluster := filtered[index%len(filtered)]

	photo, declined, err := s.pickPhoto(sctx, cluster)
	if declined != nil || err != nil {
		return declined, err
	}
	return s.buildSelection(sctx, cluster, photo)
}

func (s *thematicRotation) AfterPost(sctx *Context, post *domain.Post, photo *domain.Photo, cluster *domain.Cluster) error {
	index, err := s.rotationIndex(sctx)
	if err != nil {
		return err
	}
	if err := s.recordHistory(sctx, post, photo, cluster, map[string]any{
		stateKeyRotationIndex: index,
	}); err != nil {
		return err
	}
	// Atomic advance from the stored value, not the memoized one, so two
	// overlapped selections never collapse into a single step.
	if _, err := s.deps.State.IncrementKey(sctx.DBC, sctx.Persona.ID, stateKeyRotationIndex, 1); err != nil {
		return fmt.Errorf("advance rotation index: %w", err)
	}
	sctx.RefreshState()
	return nil
}

func (s *thematicRotation) rotationIndex(sctx *Context) (int, error) {
	state, err := sctx.State()
	if err != nil {
		return 0, err
	}
	index, ok := stateInt(state.Data(), stateKeyRotationIndex)
	if !ok || index < 0 {
		return 0, nil
	}
	return index, nil
}

var _ Strategy = (*thematicRotation)(nil)
var _ Strategy = (*themeOfWeek)(nil)
