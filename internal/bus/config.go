package bus

import "time"

// Config controls per-command defaults for the bus.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
}

func DefaultConfig() Config {
	return Config{
		Timeout:    30 * time.Second,
		MaxRetries: 2,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	return c
}
