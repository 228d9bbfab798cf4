package session

import "time"

// Config controls the monitor's two poll cadences: the fast
// active-session poll and the slower tracked-today aggregate poll.
type Config struct {
	PollInterval  time.Duration
	HoursInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval:  5 * time.Second,
		HoursInterval: 60 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.HoursInterval <= 0 {
		c.HoursInterval = defaults.HoursInterval
	}
	return c
}
