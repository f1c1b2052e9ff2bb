package config

import (
	"strings"
	"testing"
)

func TestEnsureDSNFromDSN(t *testing.T) {
	cfg := DBConfig{DSN: "postgres://user:pw@localhost:5432/engage?sslmode=disable"}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	if cfg.DSN != "postgres://user:pw@localhost:5432/engage?sslmode=disable" {
		t.Fatalf("DSN should be kept verbatim, got %q", cfg.DSN)
	}
}

func TestEnsureDSNFromParts(t *testing.T) {
	cfg := DBConfig{
		LegacyHost:     "db.internal",
		LegacyPort:     5433,
		LegacyUser:     "engage",
		LegacyPassword: "s3cret",
		LegacyName:     "engage",
		LegacySSLMode:  "require",
	}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	for _, want := range []string{"postgres://", "db.internal:5433", "sslmode=require", "engage:s3cret"} {
		if !strings.Contains(cfg.DSN, want) {
			t.Fatalf("DSN %q missing %q", cfg.DSN, want)
		}
	}
}

func TestEnsureDSNMissingParts(t *testing.T) {
	cfg := DBConfig{LegacyHost: "db.internal"}
	err := cfg.ensureDSN()
	if err == nil {
		t.Fatal("expected error when user/name are missing")
	}
	if !strings.Contains(err.Error(), EnvDBUser) || !strings.Contains(err.Error(), EnvDBName) {
		t.Fatalf("error should name the missing vars, got %v", err)
	}
}

func TestAppEnvHelpers(t *testing.T) {
	if !(AppConfig{Env: "Dev"}).IsDev() {
		t.Fatal("Dev should be recognized case-insensitively")
	}
	if !(AppConfig{Env: "PROD"}).IsProd() {
		t.Fatal("PROD should be recognized case-insensitively")
	}
	if (AppConfig{Env: "staging"}).IsProd() {
		t.Fatal("staging must not count as prod")
	}
}
