package strategy

import (
	"math/rand"
	"testing"
	"time"
)

func timingConfig() *Config {
	return &Config{
		PostingFrequency: FrequencyConfig{Min: 3, Max: 5},
		Timing: TimingConfig{
			Optimal:     Window{StartHour: 5, EndHour: 8},
			Alternative: Window{StartHour: 10, EndHour: 15},
			Timezone:    "UTC",
		},
		Hashtags: HashtagConfig{Min: 5, Max: 12},
	}
}

func TestOptimalPostingTimeInsideOptimalWindowPassesThrough(t *testing.T) {
	cfg := timingConfig()
	rng := rand.New(rand.NewSource(1))
	base := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)

	got, err := OptimalPostingTime(cfg, rng, base, nil)
	if err != nil {
		t.Fatalf("OptimalPostingTime: %v", err)
	}
	if !got.Equal(base) {
		t.Fatalf("in-window time moved: want=%s got=%s", base, got)
	}
	if got.Hour() != 6 {
		t.Fatalf("hour: want=6 got=%d", got.Hour())
	}
}

func TestOptimalPostingTimeInsideAlternativeWindowPassesThrough(t *testing.T) {
	cfg := timingConfig()
	rng := rand.New(rand.NewSource(1))
	base := time.Date(2026, 8, 31, 12, 30, 0, 0, time.UTC)

	got, err := OptimalPostingTime(cfg, rng, base, nil)
	if err != nil {
		t.Fatalf("OptimalPostingTime: %v", err)
	}
	if !got.Equal(base) {
		t.Fatalf("in-window time moved: want=%s got=%s", base, got)
	}
}

func TestOptimalPostingTimeOutsideWindowsMovesToNextDayOptimal(t *testing.T) {
	cfg := timingConfig()
	base := time.Date(2026, 8, 31, 22, 0, 0, 0, time.UTC)

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		got, err := OptimalPostingTime(cfg, rng, base, nil)
		if err != nil {
			t.Fatalf("OptimalPostingTime: %v", err)
		}
		if got.Day() != 1 || got.Month() != time.September {
			t.Fatalf("day: want next day got=%s", got)
		}
		if got.Hour() != 5 {
			t.Fatalf("hour: want=5 got=%d", got.Hour())
		}
		if got.Minute() < 0 || got.Minute() > 59 {
			t.Fatalf("minute out of range: %d", got.Minute())
		}
	}
}

func TestOptimalPostingTimePreferredTimeOverridesBase(t *testing.T) {
	cfg := timingConfig()
	rng := rand.New(rand.NewSource(1))
	base := time.Date(2026, 8, 31, 22, 0, 0, 0, time.UTC)
	preferred := time.Date(2026, 9, 2, 7, 15, 0, 0, time.UTC)

	got, err := OptimalPostingTime(cfg, rng, base, &preferred)
	if err != nil {
		t.Fatalf("OptimalPostingTime: %v", err)
	}
	if !got.Equal(preferred) {
		t.Fatalf("in-window preferred time moved: want=%s got=%s", preferred, got)
	}
}

func TestOptimalPostingTimePreferredOutsideWindowsRollsFromPreferred(t *testing.T) {
	cfg := timingConfig()
	rng := rand.New(rand.NewSource(1))
	base := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	preferred := time.Date(2026, 9, 2, 22, 0, 0, 0, time.UTC)

	got, err := OptimalPostingTime(cfg, rng, base, &preferred)
	if err != nil {
		t.Fatalf("OptimalPostingTime: %v", err)
	}
	if got.Day() != 3 || got.Month() != time.September {
		t.Fatalf("day: want day after preferred got=%s", got)
	}
	if got.Hour() != 5 {
		t.Fatalf("hour: want=5 got=%d", got.Hour())
	}
}

func TestOptimalPostingTimeWindowBoundaryIsHalfOpen(t *testing.T) {
	cfg := timingConfig()
	rng := rand.New(rand.NewSource(1))
	// EndHour is exclusive, so 08:00 is outside the optimal window.
	base := time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)

	got, err := OptimalPostingTime(cfg, rng, base, nil)
	if err != nil {
		t.Fatalf("OptimalPostingTime: %v", err)
	}
	if got.Equal(base) {
		t.Fatalf("boundary hour treated as inside window")
	}
}
