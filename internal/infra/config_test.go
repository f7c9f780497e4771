package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "OUTPUT_DIR", "DATABASE_URL", "CORS_ALLOWED_ORIGINS", "CORS_MAX_AGE_SECONDS", "PIPELINE_WORKERS", "RATE_LIMIT_PER_MINUTE", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.OutputDir != "out" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("CORSAllowedOrigins = %#v", cfg.CORSAllowedOrigins)
	}
	if cfg.CORSMaxAge != time.Hour {
		t.Fatalf("CORSMaxAge = %v, want 1h", cfg.CORSMaxAge)
	}
	if cfg.PipelineWorkers != 4 || cfg.RateLimitPerMin != 0 {
		t.Fatalf("workers=%d rate=%d", cfg.PipelineWorkers, cfg.RateLimitPerMin)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
}

func TestLoadConfigParsesOriginList(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.CORSAllowedOrigins) != len(expected) {
		t.Fatalf("CORSAllowedOrigins mismatch: got %#v want %#v", cfg.CORSAllowedOrigins, expected)
	}
	for i, origin := range expected {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
}

func TestLoadConfigRejectsInvalidWorkers(t *testing.T) {
	t.Setenv("PIPELINE_WORKERS", "-2")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for negative PIPELINE_WORKERS")
	}
}

func TestLoadConfigIgnoresMalformedInts(t *testing.T) {
	t.Setenv("PIPELINE_WORKERS", "many")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "soon")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PipelineWorkers != 4 || cfg.HTTPWriteTimeout != 300*time.Second {
		t.Fatalf("workers=%d write=%v", cfg.PipelineWorkers, cfg.HTTPWriteTimeout)
	}
}
