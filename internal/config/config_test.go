package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDomain_ReadsPrefixedKeys(t *testing.T) {
	lookuper := envconfig.MapLookuper(map[string]string{
		"ADMIN_DATABASE_URL":    "postgres://localhost:5432/admin",
		"ADMIN_JWT_SECRET":      testSecret,
		"ADMIN_LOGIN_WINDOW":    "1m",
		"CLIENT_JWT_SECRET":     "ignored-because-of-prefix-ignored-because",
		"ADMIN_SERVICE_ADDRESS": "0.0.0.0:7000",
	})

	cfg, err := loadDomain(context.Background(), AdminPrefix, lookuper)
	if err != nil {
		t.Fatalf("loadDomain returned error: %v", err)
	}
	if cfg.Auth.JWTSecret != testSecret {
		t.Fatalf("unexpected secret %q", cfg.Auth.JWTSecret)
	}
	if cfg.Address != "0.0.0.0:7000" {
		t.Fatalf("unexpected address %q", cfg.Address)
	}
	if cfg.Auth.LoginWindow != time.Minute {
		t.Fatalf("expected 1m login window, got %s", cfg.Auth.LoginWindow)
	}
	if cfg.Auth.LoginMaxAttempts != 5 {
		t.Fatalf("expected default of 5 attempts, got %d", cfg.Auth.LoginMaxAttempts)
	}
	if !cfg.Postgres.RunMigrations {
		t.Fatalf("expected migrations enabled by default")
	}
}

func TestLoadDomain_DefaultAddressPerDomain(t *testing.T) {
	lookuper := envconfig.MapLookuper(map[string]string{
		"CLIENT_DATABASE_URL": "postgres://localhost:5432/client",
		"CLIENT_JWT_SECRET":   testSecret,
	})

	cfg, err := loadDomain(context.Background(), ClientPrefix, lookuper)
	if err != nil {
		t.Fatalf("loadDomain returned error: %v", err)
	}
	if cfg.Address != "[::1]:50052" {
		t.Fatalf("unexpected default address %q", cfg.Address)
	}
}

func TestLoadDomain_RequiresSecret(t *testing.T) {
	lookuper := envconfig.MapLookuper(map[string]string{
		"ADMIN_DATABASE_URL": "postgres://localhost:5432/admin",
	})

	if _, err := loadDomain(context.Background(), AdminPrefix, lookuper); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}

func TestLoadDomain_RejectsShortSecret(t *testing.T) {
	lookuper := envconfig.MapLookuper(map[string]string{
		"ADMIN_DATABASE_URL": "postgres://localhost:5432/admin",
		"ADMIN_JWT_SECRET":   "short",
	})

	_, err := loadDomain(context.Background(), AdminPrefix, lookuper)
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected short secret error, got %v", err)
	}
}

func TestLoadDomain_UnknownPrefix(t *testing.T) {
	if _, err := loadDomain(context.Background(), "STAFF_", envconfig.MapLookuper(nil)); err == nil {
		t.Fatalf("expected error for unknown prefix")
	}
}

func TestLoadGateway_Defaults(t *testing.T) {
	cfg, err := loadGateway(context.Background(), envconfig.MapLookuper(map[string]string{
		"CLIENT_SERVICE_ADDRESS": "client:50052",
	}))
	if err != nil {
		t.Fatalf("loadGateway returned error: %v", err)
	}
	if cfg.App.Address != "0.0.0.0:8080" {
		t.Fatalf("unexpected server address %q", cfg.App.Address)
	}
	if cfg.Admin.Address != "localhost:50051" {
		t.Fatalf("unexpected admin address %q", cfg.Admin.Address)
	}
	if cfg.Client.Address != "client:50052" {
		t.Fatalf("unexpected client address %q", cfg.Client.Address)
	}
	if cfg.ValidateTimeout != 3*time.Second {
		t.Fatalf("unexpected validate timeout %s", cfg.ValidateTimeout)
	}
}
