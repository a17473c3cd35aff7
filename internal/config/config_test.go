package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.Addr != ":3300" {
		t.Fatalf("unexpected default addr: %s", cfg.Addr)
	}
	if cfg.DefaultRoom == "" {
		t.Fatal("default room must not be empty")
	}
	if cfg.StoreTimeout <= 0 {
		t.Fatal("store timeout must be bounded by default")
	}
}

func TestUpdateFromSkipsZeroValues(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":9999", LogLevel: "debug"})

	if cfg.Addr != ":9999" {
		t.Fatalf("addr not overridden: %s", cfg.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level not overridden: %s", cfg.LogLevel)
	}
	if cfg.DatabasePath != Default().DatabasePath {
		t.Fatalf("database path should be untouched: %s", cfg.DatabasePath)
	}
	if cfg.ShutdownTimeout != Default().ShutdownTimeout {
		t.Fatalf("shutdown timeout should be untouched: %v", cfg.ShutdownTimeout)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := "addr: \":4000\"\ndefault_room: \"Group 7\"\nstore_timeout: 2s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %s", resolved)
	}
	if cfg.Addr != ":4000" {
		t.Fatalf("addr not read from file: %s", cfg.Addr)
	}
	if cfg.DefaultRoom != "Group 7" {
		t.Fatalf("default room not read from file: %s", cfg.DefaultRoom)
	}
	if cfg.StoreTimeout != 2*time.Second {
		t.Fatalf("store timeout not read from file: %v", cfg.StoreTimeout)
	}
	// Values absent from the file keep their defaults.
	if cfg.DatabasePath != Default().DatabasePath {
		t.Fatalf("database path should default: %s", cfg.DatabasePath)
	}
}

func TestLoadWritesDefaultConfigWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Addr != Default().Addr {
		t.Fatalf("expected defaults, got addr %s", cfg.Addr)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}
}
