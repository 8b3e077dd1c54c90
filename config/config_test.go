package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SESSION_TTL_HOURS", "")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.DBDriver)
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Fatalf("expected 30 day session, got %v", cfg.SessionTTL)
	}
	if !cfg.CookieSecure {
		t.Fatal("expected secure cookies by default")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("MAX_IMAGE_DIMENSION", "512")

	cfg := Load()
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("driver should be lowercased, got %q", cfg.DBDriver)
	}
	if cfg.CookieSecure {
		t.Fatal("COOKIE_SECURE=false was ignored")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
	if cfg.MaxImageDimension != 512 {
		t.Fatalf("expected 512, got %d", cfg.MaxImageDimension)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{DBDriver: "sqlite", StorageBackend: "local", JWTSecret: "s", BackupHour: 2}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg.JWTSecret = ""
	cfg.DBDriver = "mysql"
	cfg.StorageBackend = "gcs"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"JWT_SECRET", "DB_DRIVER", "GCS_BUCKET"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "shop", DBPort: "5432"}
	want := "host=db user=u password=p dbname=shop port=5432 sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	cfg.DatabaseURL = "postgres://x"
	if got := cfg.PostgresDSN(); got != "postgres://x" {
		t.Fatalf("DATABASE_URL should win, got %q", got)
	}
}
