package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("expected /api/v1, got %s", cfg.APIBasePath)
	}
	if cfg.Cache.ProfileListTTL != 5*time.Minute {
		t.Errorf("expected 5m cache TTL, got %v", cfg.Cache.ProfileListTTL)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE_PATH", "/shop/api/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SESSION_TTL", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBasePath != "/shop/api" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.APIBasePath)
	}
	if got := strings.Join(cfg.HTTP.AllowedOrigins, "|"); got != "https://a.example|https://b.example" {
		t.Errorf("unexpected origins %q", got)
	}
	if cfg.Auth.SessionTTL != 2*time.Hour {
		t.Errorf("expected 2h, got %v", cfg.Auth.SessionTTL)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("API_BASE_PATH", "api")
	if _, err := Load(); err == nil {
		t.Error("expected error for base path without leading slash")
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", User: "u", Password: "p@ss:word", Name: "a11y"}
	dsn := d.DSN()
	if !strings.Contains(dsn, "tcp(db:3306)/a11y") {
		t.Errorf("expected default port in DSN, got %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("expected parseTime in DSN, got %s", dsn)
	}

	d.dsnOverride = "user:pw@tcp(x:1)/y"
	if d.DSN() != "user:pw@tcp(x:1)/y" {
		t.Error("expected DATABASE_URL to win")
	}
}

func TestLoadClient(t *testing.T) {
	t.Setenv("A11Y_API_URL", "https://shop.example/api/v1")
	t.Setenv("A11Y_RETRY_MAX", "5")
	t.Setenv("A11Y_TIMEOUT", "3s")

	cfg := LoadClient()
	if cfg.APIURL != "https://shop.example/api/v1" || cfg.RetryMax != 5 || cfg.Timeout != 3*time.Second {
		t.Errorf("unexpected client config %+v", cfg)
	}
}
