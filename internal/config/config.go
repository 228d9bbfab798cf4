// Package config loads daemon configuration from an optional YAML
// file plus UNGD_-prefixed environment overrides.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendCLI    = "cli"
	BackendRemote = "remote"
)

type Config struct {
	Environment string `mapstructure:"environment"`
	Backend     string `mapstructure:"backend"`

	Tool struct {
		Binary     string        `mapstructure:"binary"`
		Timeout    time.Duration `mapstructure:"timeout"`
		MaxRetries int           `mapstructure:"max_retries"`
	} `mapstructure:"tool"`

	Remote struct {
		BaseURL string        `mapstructure:"base_url"`
		Token   string        `mapstructure:"token"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"remote"`

	Cache struct {
		TTL time.Duration `mapstructure:"ttl"`
	} `mapstructure:"cache"`

	Session struct {
		PollInterval  time.Duration `mapstructure:"poll_interval"`
		HoursInterval time.Duration `mapstructure:"hours_interval"`
	} `mapstructure:"session"`

	HTTP struct {
		Addr          string `mapstructure:"addr"`
		MutationLimit int    `mapstructure:"mutation_limit"`
	} `mapstructure:"http"`

	Snapshot struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"snapshot"`

	Log struct {
		Level    string `mapstructure:"level"`
		Encoding string `mapstructure:"encoding"`
	} `mapstructure:"log"`

	Tracing struct {
		Enabled          bool    `mapstructure:"enabled"`
		ExporterEndpoint string  `mapstructure:"exporter_endpoint"`
		ExporterProtocol string  `mapstructure:"exporter_protocol"`
		SamplingRatio    float64 `mapstructure:"sampling_ratio"`
	} `mapstructure:"tracing"`
}

func (c Config) IsRemote() bool {
	return strings.EqualFold(c.Backend, BackendRemote)
}

// Load reads ungd.yaml from the user config directory (or the working
// directory) and applies environment overrides. A missing file is not
// an error; every key has a default.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("ungd")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if configHome := userConfigHome(); configHome != "" {
		v.AddConfigPath(filepath.Join(configHome, "ungd"))
	}

	v.SetEnvPrefix("UNGD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("environment", "development")
	v.SetDefault("backend", BackendCLI)
	v.SetDefault("tool.binary", "ung")
	v.SetDefault("tool.timeout", 30*time.Second)
	v.SetDefault("tool.max_retries", 2)
	v.SetDefault("remote.timeout", 30*time.Second)
	v.SetDefault("cache.ttl", 60*time.Second)
	v.SetDefault("session.poll_interval", 5*time.Second)
	v.SetDefault("session.hours_interval", 60*time.Second)
	v.SetDefault("http.addr", "127.0.0.1:8170")
	v.SetDefault("http.mutation_limit", 30)
	v.SetDefault("snapshot.enabled", true)
	v.SetDefault("snapshot.path", defaultSnapshotPath())
	v.SetDefault("log.level", "info")
	v.SetDefault("tracing.sampling_ratio", 1.0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func userConfigHome() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return configHome
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

func defaultSnapshotPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ungd-snapshots.db"
	}
	return filepath.Join(home, ".local", "share", "ungd", "snapshots.db")
}
