package services

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	pkgerrors "github.com/timlawrenz/fluffy-train-sub000/internal/pkg/errors"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/envutil"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
	"github.com/timlawrenz/fluffy-train-sub000/internal/strategy"
)

// ConfigService loads the versioned strategy configuration document. The
// document holds one section per environment; a missing section fails
// loudly so downstream code never runs on a partially-loaded config.
type ConfigService interface {
	// Load parses the document once and memoizes the result.
	Load() (*strategy.Config, error)
	// Reload clears the memo and loads again.
	Reload() (*strategy.Config, error)
	Env() string
}

type configService struct {
	log  *logger.Logger
	path string
	env  string

	mu     sync.Mutex
	loaded *strategy.Config
}

func NewConfigService(log *logger.Logger) ConfigService {
	path := envutil.GetEnv("STRATEGY_CONFIG_PATH", "configs/strategy.yaml", log)
	env := envutil.GetEnv("STRATEGY_ENV", "development", log)
	return &configService{
		log:  log.With("service", "ConfigService"),
		path: path,
		env:  env,
	}
}

// NewConfigServiceAt builds a loader for an explicit path and environment.
// Used by tests and one-off tooling.
func NewConfigServiceAt(log *logger.Logger, path, env string) ConfigService {
	return &configService{
		log:  log.With("service", "ConfigService"),
		path: path,
		env:  env,
	}
}

func (s *configService) Env() string { return s.env }

func (s *configService) Load() (*strategy.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded != nil {
		return s.loaded, nil
	}
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	s.loaded = cfg
	return cfg, nil
}

func (s *configService) Reload() (*strategy.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	s.loaded = cfg
	s.log.Info("Strategy config reloaded", "path", s.path, "env", s.env)
	return cfg, nil
}

func (s *configService) load() (*strategy.Config, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read strategy config %s: %w", s.path, err)
	}

	sections := map[string]*strategy.Config{}
	if err := yaml.Unmarshal(raw, &sections); err != nil {
		return nil, fmt.Errorf("parse strategy config %s: %w", s.path, err)
	}

	cfg, ok := sections[s.env]
	if !ok || cfg == nil {
		return nil, fmt.Errorf("%w: environment %q in %s",
			pkgerrors.ErrMissingConfigSection, s.env, s.path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("strategy config for %q: %w", s.env, err)
	}
	return cfg, nil
}
