package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SLOT_DURATION_MINUTES", "")
	t.Setenv("STUDIO_TIMEZONE", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.SlotDurationMinutes != 30 {
		t.Fatalf("expected default slot duration 30, got %d", cfg.SlotDurationMinutes)
	}
	if cfg.StudioTimezone != "Europe/Berlin" {
		t.Fatalf("expected default timezone, got %s", cfg.StudioTimezone)
	}
	if cfg.MagiclineTimeout != 10*time.Second {
		t.Fatalf("expected default magicline timeout, got %s", cfg.MagiclineTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAGICLINE_BOOKABLE_ID", "4711")
	t.Setenv("MAGICLINE_TIMEOUT", "5s")
	t.Setenv("SLOT_DURATION_MINUTES", "45")
	t.Setenv("CHAT_TEMPERATURE", "0.2")
	t.Setenv("REDIS_TLS", "true")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.MagiclineBookableID != 4711 {
		t.Fatalf("expected bookable id override, got %d", cfg.MagiclineBookableID)
	}
	if cfg.MagiclineTimeout != 5*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.MagiclineTimeout)
	}
	if cfg.SlotDurationMinutes != 45 {
		t.Fatalf("expected slot duration override, got %d", cfg.SlotDurationMinutes)
	}
	if cfg.ChatTemperature != 0.2 {
		t.Fatalf("expected temperature override, got %f", cfg.ChatTemperature)
	}
	if !cfg.RedisTLS {
		t.Fatal("expected redis TLS enabled")
	}
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("SLOT_DURATION_MINUTES", "soon")
	t.Setenv("MAGICLINE_TIMEOUT", "whenever")
	t.Setenv("REDIS_TLS", "jein")
	cfg := Load()
	if cfg.SlotDurationMinutes != 30 {
		t.Fatalf("expected fallback slot duration, got %d", cfg.SlotDurationMinutes)
	}
	if cfg.MagiclineTimeout != 10*time.Second {
		t.Fatalf("expected fallback timeout, got %s", cfg.MagiclineTimeout)
	}
	if cfg.RedisTLS {
		t.Fatal("expected fallback redis TLS false")
	}
}
