package infra

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
	if _, err := LoadWorkerConfig(); err != nil {
		t.Fatalf("worker config should not need JWT_SECRET: %v", err)
	}
}

func TestLoadConfigPollDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("UPLOAD_POLL_INTERVAL_SECONDS", "")
	t.Setenv("UPLOAD_POLL_MAX_FAILURES", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Fatalf("PollInterval = %s, want 3s", cfg.PollInterval)
	}
	if cfg.PollMaxFailures != 5 {
		t.Fatalf("PollMaxFailures = %d, want 5", cfg.PollMaxFailures)
	}
	if cfg.MuxBaseURL != "https://api.mux.com" {
		t.Fatalf("MuxBaseURL = %q", cfg.MuxBaseURL)
	}
}

func TestLoadConfigLists(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://studio.example , https://studio.example,http://localhost:3000 ")
	t.Setenv("SUPPORTED_LOCALES", "de,es")
	t.Setenv("DEFAULT_LOCALE", "en")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	wantOrigins := []string{"https://studio.example", "http://localhost:3000"}
	if len(cfg.CORSAllowedOrigins) != len(wantOrigins) {
		t.Fatalf("CORSAllowedOrigins = %#v, want %#v", cfg.CORSAllowedOrigins, wantOrigins)
	}
	for i, origin := range wantOrigins {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
	wantLocales := []string{"en", "de", "es"}
	for i, locale := range wantLocales {
		if cfg.SupportedLocales[i] != locale {
			t.Fatalf("SupportedLocales = %#v, want %#v", cfg.SupportedLocales, wantLocales)
		}
	}
}
