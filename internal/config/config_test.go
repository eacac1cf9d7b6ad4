package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WA_API_KEY", "key")
	t.Setenv("WA_PHONE_NUMBER_ID", "123")
	t.Setenv("WA_VERIFY_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WAGraphBaseURL != "https://graph.facebook.com/v17.0" {
		t.Errorf("WAGraphBaseURL = %q", cfg.WAGraphBaseURL)
	}
	if cfg.Port != "8080" || cfg.DataDir != "." || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.WAHTTPTimeout != 0 {
		t.Errorf("WAHTTPTimeout = %v, want 0", cfg.WAHTTPTimeout)
	}
	if len(cfg.WAVerifyToken) != 32 {
		t.Errorf("generated verify token %q, want 32 hex chars", cfg.WAVerifyToken)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WA_API_KEY", "key")
	t.Setenv("WA_PHONE_NUMBER_ID", "123")
	t.Setenv("WA_VERIFY_TOKEN", "verify")
	t.Setenv("WA_HTTP_TIMEOUT", "20s")
	t.Setenv("LOG_JSON", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WAVerifyToken != "verify" {
		t.Errorf("WAVerifyToken = %q", cfg.WAVerifyToken)
	}
	if cfg.WAHTTPTimeout != 20*time.Second {
		t.Errorf("WAHTTPTimeout = %v", cfg.WAHTTPTimeout)
	}
	if !cfg.LogJSON {
		t.Error("LogJSON = false, want true")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("WA_API_KEY", "")
	t.Setenv("WA_PHONE_NUMBER_ID", "123")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing WA_API_KEY")
	}
}
