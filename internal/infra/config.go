package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	OutputDir          string
	LogoPath           string
	CatalogPath        string
	StagingDir         string
	CORSAllowedOrigins []string
	CORSMaxAge         time.Duration
	PipelineWorkers    int
	MaxUploadBytes     int64
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		OutputDir:          getEnv("OUTPUT_DIR", "out"),
		LogoPath:           getEnv("LOGO_PATH", "logo.png"),
		CatalogPath:        os.Getenv("CATALOG_PATH"),
		StagingDir:         os.Getenv("STAGING_DIR"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		CORSMaxAge:         time.Second * time.Duration(getEnvInt("CORS_MAX_AGE_SECONDS", 3600)),
		PipelineWorkers:    getEnvInt("PIPELINE_WORKERS", 4),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 16<<20)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 0),
	}

	if cfg.PipelineWorkers <= 0 {
		return nil, fmt.Errorf("PIPELINE_WORKERS must be positive, got %d", cfg.PipelineWorkers)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
