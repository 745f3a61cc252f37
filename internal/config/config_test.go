package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if !cfg.AutoFreezeOnFlag {
		t.Fatalf("expected auto-freeze enabled by default")
	}
	if cfg.ModerationWorkers != 1 {
		t.Fatalf("expected 1 moderation worker by default, got %d", cfg.ModerationWorkers)
	}
	if cfg.AITimeout != 60*time.Second {
		t.Fatalf("expected 60s AI timeout, got %v", cfg.AITimeout)
	}
	if cfg.ClassifierEnabled() {
		t.Fatalf("classifier must be disabled without an API key")
	}
	if cfg.LogRetentionDays != 30 {
		t.Fatalf("expected 30-day log retention by default, got %d", cfg.LogRetentionDays)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUTO_FREEZE_ON_FLAG", "false")
	t.Setenv("MODERATION_WORKERS", "4")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AI_TIMEOUT", "30s")
	t.Setenv("LOG_RETENTION_DAYS", "90")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.AutoFreezeOnFlag {
		t.Fatalf("expected auto-freeze disabled")
	}
	if cfg.ModerationWorkers != 4 {
		t.Fatalf("expected 4 workers, got %d", cfg.ModerationWorkers)
	}
	if !cfg.ClassifierEnabled() {
		t.Fatalf("expected classifier enabled with API key")
	}
	if cfg.AITimeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v", cfg.AITimeout)
	}
	if cfg.LogRetentionDays != 90 {
		t.Fatalf("expected 90-day retention, got %d", cfg.LogRetentionDays)
	}
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("AI_TIMEOUT", "soon")
	t.Setenv("MODERATION_WORKERS", "many")
	t.Setenv("AUTO_FREEZE_ON_FLAG", "yup")

	cfg := Load()
	if cfg.AITimeout != 60*time.Second {
		t.Fatalf("expected fallback timeout, got %v", cfg.AITimeout)
	}
	if cfg.ModerationWorkers != 1 {
		t.Fatalf("expected fallback worker count, got %d", cfg.ModerationWorkers)
	}
	if !cfg.AutoFreezeOnFlag {
		t.Fatalf("expected fallback auto-freeze value")
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     "5433",
		DBUser:     "app",
		DBPassword: "secret",
		DBName:     "imagepost",
		DBSSLMode:  "require",
	}
	want := "host=db.internal user=app password=secret dbname=imagepost port=5433 sslmode=require TimeZone=UTC"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN mismatch:\nwant %q\ngot  %q", want, got)
	}
}
