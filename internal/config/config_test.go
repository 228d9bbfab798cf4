package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendCLI {
		t.Fatalf("backend = %q", cfg.Backend)
	}
	if cfg.Tool.Binary != "ung" {
		t.Fatalf("tool binary = %q", cfg.Tool.Binary)
	}
	if cfg.Tool.Timeout != 30*time.Second || cfg.Tool.MaxRetries != 2 {
		t.Fatalf("tool defaults = %+v", cfg.Tool)
	}
	if cfg.Cache.TTL != 60*time.Second {
		t.Fatalf("cache ttl = %s", cfg.Cache.TTL)
	}
	if cfg.Session.PollInterval != 5*time.Second {
		t.Fatalf("poll interval = %s", cfg.Session.PollInterval)
	}
	if cfg.HTTP.Addr != "127.0.0.1:8170" {
		t.Fatalf("http addr = %q", cfg.HTTP.Addr)
	}
	if !cfg.Snapshot.Enabled {
		t.Fatal("snapshots default on")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "backend: remote\n" +
		"remote:\n" +
		"  base_url: https://api.ung.example\n" +
		"  token: abc123\n" +
		"cache:\n" +
		"  ttl: 90s\n"
	if err := os.WriteFile(filepath.Join(dir, "ungd.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsRemote() {
		t.Fatalf("backend = %q", cfg.Backend)
	}
	if cfg.Remote.BaseURL != "https://api.ung.example" {
		t.Fatalf("base url = %q", cfg.Remote.BaseURL)
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Fatalf("cache ttl = %s", cfg.Cache.TTL)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Tool.Binary != "ung" {
		t.Fatalf("tool binary = %q", cfg.Tool.Binary)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("UNGD_TOOL_BINARY", "/opt/ung/bin/ung")
	t.Setenv("UNGD_BACKEND", "remote")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tool.Binary != "/opt/ung/bin/ung" {
		t.Fatalf("tool binary = %q", cfg.Tool.Binary)
	}
	if !cfg.IsRemote() {
		t.Fatalf("backend = %q", cfg.Backend)
	}
}

func TestIsRemoteCaseInsensitive(t *testing.T) {
	var cfg Config
	cfg.Backend = "Remote"
	if !cfg.IsRemote() {
		t.Fatal("backend matching must ignore case")
	}
	cfg.Backend = "cli"
	if cfg.IsRemote() {
		t.Fatal("cli backend reported remote")
	}
}
