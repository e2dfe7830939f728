package strategy

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	pkgerrors "github.com/timlawrenz/fluffy-train-sub000/internal/pkg/errors"
)

// DefaultStrategyName is used when neither the caller nor the persona's
// persisted state names a strategy.
const DefaultStrategyName = ThemeOfWeekName

// Factory builds a strategy instance bound to shared deps.
type Factory func(deps Deps) Strategy

// Registry maps strategy names to factories. Constructed at process start
// and passed explicitly; not persisted, so it must be repopulated on every
// start.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry returns a registry with the built-in strategies
// registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ThemeOfWeekName, NewThemeOfWeekStrategy)
	r.Register(ThematicRotationName, NewThematicRotationStrategy)
	return r
}

func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get resolves a factory by name. The error lists all registered names so
// operators can correct a typo without reading source.
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)",
			pkgerrors.ErrUnknownStrategy, name, strings.Join(r.names(), ", "))
	}
	return factory, nil
}

func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered strategy names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

func (r *Registry) names() []string {
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
