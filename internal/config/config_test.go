package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/sheshape")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{"APP_ADDR", "JWT_TTL", "UPLOAD_DIR", "MAX_UPLOAD_BYTES", "DB_AUTO_MIGRATE", "LOG_LEVEL", "ADMIN_EMAIL", "ADMIN_PASSWORD"} {
		if v, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, v) })
		}
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.JWTTTL != 72*time.Hour {
		t.Fatalf("expected 72h ttl, got %v", cfg.JWTTTL)
	}
	if cfg.MaxUploadBytes != 5<<20 {
		t.Fatalf("expected 5MiB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if !cfg.AutoMigrate {
		t.Fatalf("expected auto migrate by default")
	}
}

func TestLoad_RequiresDatabaseAndSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/sheshape")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	setRequired(t)

	t.Setenv("JWT_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid JWT_TTL")
	}
	t.Setenv("JWT_TTL", "1h")

	t.Setenv("MAX_UPLOAD_BYTES", "big")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid MAX_UPLOAD_BYTES")
	}
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "")
	os.Unsetenv("ADMIN_PASSWORD")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when only ADMIN_EMAIL is set")
	}
}

func TestConfigString_MasksSecret(t *testing.T) {
	cfg := &Config{Addr: ":1", JWTSecret: "topsecret"}
	if strings.Contains(cfg.String(), "topsecret") {
		t.Fatalf("secret leaked: %s", cfg.String())
	}
}
