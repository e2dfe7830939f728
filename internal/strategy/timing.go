package strategy

import (
	"math/rand"
	"time"
)

// OptimalPostingTime places base inside one of the configured daily windows.
// A non-nil preferred time takes the place of base. If the hour already
// falls in the optimal or alternative window the time passes through
// unchanged; otherwise it advances to the next day at the start of the
// optimal window plus a random minute offset, so scheduled posts do not
// cluster on the exact hour.
func OptimalPostingTime(cfg *Config, rng *rand.Rand, base time.Time, preferred *time.Time) (time.Time, error) {
	loc, err := cfg.Location()
	if err != nil {
		return time.Time{}, err
	}
	if preferred != nil {
		base = *preferred
	}
	local := base.In(loc)
	hour := local.Hour()

	if cfg.Timing.Optimal.Contains(hour) {
		return local, nil
	}
	if cfg.Timing.Alternative.Contains(hour) {
		return local, nil
	}

	next := local.AddDate(0, 0, 1)
	minute := rng.Intn(60)
	return time.Date(next.Year(), next.Month(), next.Day(),
		cfg.Timing.Optimal.StartHour, minute, 0, 0, loc), nil
}
