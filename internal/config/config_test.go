package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("VIBECAST_BACKEND", "")
	t.Setenv("VIBECAST_DB", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendSQLite || cfg.SQLite.Retain != 20 || cfg.Timeout != 5*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("VIBECAST_BACKEND", "")
	t.Setenv("VIBECAST_TZ", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
backend = "redis"
timezone = "Asia/Tokyo"
store_timeout = "250ms"

[redis]
addr = "cache:6379"
prefix = "vc:"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendRedis || cfg.Redis.Addr != "cache:6379" || cfg.Redis.Prefix != "vc:" {
		t.Errorf("unexpected redis config: %+v", cfg)
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Errorf("expected 250ms timeout, got %v", cfg.Timeout)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Asia/Tokyo" {
		t.Errorf("expected Asia/Tokyo, got %v (%v)", loc, err)
	}
	// Unset sections keep their defaults.
	if cfg.SQLite.Retain != 20 {
		t.Errorf("expected default retain, got %d", cfg.SQLite.Retain)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte(`backend = "redis"`), 0o600)

	t.Setenv("VIBECAST_BACKEND", "memory")
	t.Setenv("VIBECAST_DB", "/tmp/x.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendMemory || cfg.SQLite.Path != "/tmp/x.db" {
		t.Errorf("expected env overrides, got %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Backend = "etcd"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg = Default()
	cfg.Timezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("VIBECAST_BACKEND", "")
	t.Setenv("VIBECAST_DB", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Backend = BackendMemory
	cfg.SQLite.Retain = 7
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if back.Backend != BackendMemory || back.SQLite.Retain != 7 || back.Timeout != cfg.Timeout {
		t.Errorf("expected saved values, got %+v", back)
	}
}
