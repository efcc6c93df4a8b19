// ABOUTME: Tests for configuration loading
// ABOUTME: Verifies defaults and environment overrides

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080" {
		t.Errorf("expected default API URL, got %s", cfg.APIURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("expected default 15s timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MBANK_API_URL", "https://bank.example.com")
	t.Setenv("MBANK_HTTP_TIMEOUT", "3s")
	t.Setenv("MBANK_CONFIG_DIR", "/tmp/mbank-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "https://bank.example.com" {
		t.Errorf("expected override URL, got %s", cfg.APIURL)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.ConfigDir != "/tmp/mbank-test" {
		t.Errorf("expected config dir override, got %s", cfg.ConfigDir)
	}
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("MBANK_HTTP_TIMEOUT", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid timeout")
	}
}
