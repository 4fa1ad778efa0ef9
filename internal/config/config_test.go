package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
version: 1
database:
  path: deck.db
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Animation.StepDurationMS != DefaultStepDurationMS {
		t.Errorf("expected default step duration, got %d", cfg.Animation.StepDurationMS)
	}
	if cfg.Animation.FallbackTimeoutMS != DefaultFallbackTimeoutMS {
		t.Errorf("expected default fallback timeout, got %d", cfg.Animation.FallbackTimeoutMS)
	}
	if cfg.Animation.FrameIntervalMS != DefaultFrameIntervalMS {
		t.Errorf("expected default frame interval, got %d", cfg.Animation.FrameIntervalMS)
	}
}

func TestLoad_ExplicitTiming(t *testing.T) {
	path := writeConfig(t, `
version: 1
database:
  path: deck.db
animation:
  step_duration_ms: 200
  fallback_timeout_ms: 5000
  frame_interval_ms: 16
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.Animation.StepDuration(); got != 200*time.Millisecond {
		t.Errorf("StepDuration = %v", got)
	}
	if got := cfg.Animation.FallbackTimeout(); got != 5*time.Second {
		t.Errorf("FallbackTimeout = %v", got)
	}
	if got := cfg.Animation.FrameInterval(); got != 16*time.Millisecond {
		t.Errorf("FrameInterval = %v", got)
	}
}

func TestLoad_MissingDatabasePath(t *testing.T) {
	path := writeConfig(t, `
version: 1
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing database.path")
	}
}

func TestLoad_NegativeTiming(t *testing.T) {
	path := writeConfig(t, `
version: 1
database:
  path: deck.db
animation:
  step_duration_ms: -5
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for negative step duration")
	}
}

func TestLoad_BadLogLevel(t *testing.T) {
	path := writeConfig(t, `
version: 1
database:
  path: deck.db
log:
  level: loud
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Animation.StepDurationMS = 400
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Animation.StepDurationMS != 400 {
		t.Errorf("expected saved step duration 400, got %d", got.Animation.StepDurationMS)
	}
	if got.Database.Path != cfg.Database.Path {
		t.Errorf("expected database path %q, got %q", cfg.Database.Path, got.Database.Path)
	}
}
