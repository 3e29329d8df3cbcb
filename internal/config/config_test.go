package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Cache.Size != 128 {
		t.Errorf("cache size = %d, want 128", cfg.Cache.Size)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %q, want json", cfg.Log.Format)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payplan.yaml")
	content := []byte("server:\n  addr: \":9090\"\ncache:\n  size: 16\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("server addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Cache.Size != 16 {
		t.Errorf("cache size = %d, want 16", cfg.Cache.Size)
	}
	// File settings merge over defaults, not replace them.
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want default info", cfg.Log.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PAYPLAN_SERVER_ADDR", ":7070")
	t.Setenv("PAYPLAN_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("server addr = %q, want env override :7070", cfg.Server.Addr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want env override debug", cfg.Log.Level)
	}
	if cfg.Cache.Size != 128 {
		t.Errorf("cache size = %d, want untouched default 128", cfg.Cache.Size)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
