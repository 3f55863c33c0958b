package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Env != "dev" {
		t.Fatalf("Env = %q, want dev", cfg.Env)
	}

	if cfg.Port != 3333 {
		t.Fatalf("Port = %d, want 3333", cfg.Port)
	}

	if cfg.DBURL != "" {
		t.Fatalf("DBURL should default to empty (in-memory store)")
	}

	if cfg.RateLimit != 100 || cfg.RateLimitWindow != 15*time.Minute {
		t.Fatalf("rate limit defaults wrong: %d per %v", cfg.RateLimit, cfg.RateLimitWindow)
	}

	if cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("MaxBodyBytes = %d, want 1MiB", cfg.MaxBodyBytes)
	}

	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:4200" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "8080")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()

	if cfg.Env != "prod" || !cfg.IsProd() {
		t.Fatalf("Env = %q", cfg.Env)
	}

	if cfg.Port != 8080 {
		t.Fatalf("Port = %d", cfg.Port)
	}

	if cfg.RateLimitWindow != 30*time.Second {
		t.Fatalf("RateLimitWindow = %v", cfg.RateLimitWindow)
	}

	if !cfg.TracingEnabled {
		t.Fatalf("TracingEnabled should be on")
	}

	want := []string{"https://a.example.com", "https://b.example.com"}

	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != want[0] || cfg.CORSOrigins[1] != want[1] {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.CORSOrigins, want)
	}
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	t.Setenv("TRACING_ENABLED", "maybe")

	cfg := Load()

	if cfg.Port != 3333 {
		t.Fatalf("Port = %d, want fallback 3333", cfg.Port)
	}

	if cfg.RateLimitWindow != 15*time.Minute {
		t.Fatalf("RateLimitWindow = %v, want fallback", cfg.RateLimitWindow)
	}

	if cfg.TracingEnabled {
		t.Fatalf("TracingEnabled should fall back to false")
	}
}

func TestIsProd(t *testing.T) {
	if (Config{Env: "dev"}).IsProd() {
		t.Fatalf("dev is not prod")
	}

	if !(Config{Env: "prod"}).IsProd() {
		t.Fatalf("prod is prod")
	}
}
