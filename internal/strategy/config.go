package strategy

import (
	"fmt"
	"time"
)

// Config is one environment section of the versioned strategy document.
// Effectively immutable per load; reloads swap the whole object.
type Config struct {
	PostingFrequency FrequencyConfig `yaml:"posting_frequency"`
	Timing           TimingConfig    `yaml:"timing"`
	Variety          VarietyConfig   `yaml:"variety"`
	Hashtags         HashtagConfig   `yaml:"hashtags"`
	Format           FormatConfig    `yaml:"format"`
}

// FrequencyConfig bounds posts per calendar week.
type FrequencyConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Window is a half-open daily hour range [StartHour, EndHour).
type Window struct {
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

// Contains reports whether hour falls inside the window.
func (w Window) Contains(hour int) bool {
	return hour >= w.StartHour && hour < w.EndHour
}

type TimingConfig struct {
	Optimal     Window `yaml:"optimal"`
	Alternative Window `yaml:"alternative"`
	Timezone    string `yaml:"timezone"`
}

type VarietyConfig struct {
	// MinDaysGap is the minimum day gap before a cluster may repeat.
	MinDaysGap int `yaml:"min_days_gap"`
	// MaxSameCluster caps uses of one cluster per calendar week.
	MaxSameCluster int `yaml:"max_same_cluster"`
}

type HashtagConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type FormatConfig struct {
	PreferCarousels bool `yaml:"prefer_carousels"`
	PreferReels     bool `yaml:"prefer_reels"`
}

// Location resolves the configured timezone, defaulting to UTC when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Timing.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timing.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timing.Timezone, err)
	}
	return loc, nil
}

// Validate rejects configs that would make the engine misbehave silently.
func (c *Config) Validate() error {
	if c.PostingFrequency.Max <= 0 {
		return fmt.Errorf("posting_frequency.max must be positive, got %d", c.PostingFrequency.Max)
	}
	if c.PostingFrequency.Min > c.PostingFrequency.Max {
		return fmt.Errorf("posting_frequency.min %d exceeds max %d", c.PostingFrequency.Min, c.PostingFrequency.Max)
	}
	if c.Hashtags.Min > c.Hashtags.Max {
		return fmt.Errorf("hashtags.min %d exceeds max %d", c.Hashtags.Min, c.Hashtags.Max)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
