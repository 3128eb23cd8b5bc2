package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseAccounts(t *testing.T) {
	accounts, err := ParseAccounts("MTN Money:672777761, Orange Money:69865203")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].Label != "MTN Money" || accounts[0].ID != "672777761" {
		t.Errorf("unexpected first account: %+v", accounts[0])
	}
	if accounts[1].Label != "Orange Money" || accounts[1].ID != "69865203" {
		t.Errorf("unexpected second account: %+v", accounts[1])
	}
}

func TestParseAccounts_Invalid(t *testing.T) {
	for _, raw := range []string{"no-separator", ":123", "Label:"} {
		if _, err := ParseAccounts(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/foodifusion")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.DeliveryFee != 1000 {
		t.Errorf("expected delivery fee 1000, got %d", cfg.DeliveryFee)
	}
	if cfg.UploadMaxBytes != 5_000_000 {
		t.Errorf("expected 5MB upload limit, got %d", cfg.UploadMaxBytes)
	}
	if cfg.Vision.Timeout != 45*time.Second {
		t.Errorf("expected 45s vision timeout, got %s", cfg.Vision.Timeout)
	}
	if len(cfg.Accounts) != 2 {
		t.Errorf("expected 2 default accounts, got %d", len(cfg.Accounts))
	}
	if !cfg.UploadSniffContent {
		t.Error("expected content sniffing on by default")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_R2RequiresCredentials(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/foodifusion")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("EVIDENCE_BACKEND", "r2")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for r2 backend without credentials")
	}
}

func TestLoad_RejectsNonPositiveDurations(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SWEEP_INTERVAL", "0s"},
		{"SESSION_TTL", "-1h"},
		{"VISION_TIMEOUT", "0"},
		{"VISION_MAX_INFLIGHT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv("APP_ENV", "production")
			t.Setenv("DATABASE_URL", "postgres://localhost/foodifusion")
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Fatalf("expected error naming %s, got %v", tt.key, err)
			}
		})
	}
}
