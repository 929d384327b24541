package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type AuthConfig struct {
	JWTSecret   string        `validate:"required"`
	JWTIssuer   string        `validate:"required"`
	JWTDuration time.Duration `validate:"gt=0"`
}

type Config struct {
	HTTPAddr       string `validate:"required"`
	SyncAddr       string
	Store          string `validate:"oneof=sqlite memory"`
	StandardsCSV   string `validate:"required"`
	ComparisonsCSV string `validate:"required"`
	GinMode        string `validate:"oneof=debug release test"`
	LogLevel       string
	Auth           AuthConfig
}

var validate = validator.New()

// LoadConfig reads .env (if present) and the PMSTD_* environment.
func LoadConfig() (Config, error) {
	// a missing .env is normal outside local dev
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:       env("PMSTD_HTTP_ADDR", ":8080"),
		Store:          env("PMSTD_STORE", StoreSQLite),
		StandardsCSV:   env("PMSTD_STANDARDS_CSV", "standards.csv"),
		ComparisonsCSV: env("PMSTD_COMPARISONS_CSV", "comparisons.csv"),
		GinMode:        env("PMSTD_GIN_MODE", "release"),
		LogLevel:       env("PMSTD_LOG_LEVEL", "info"),
		Auth:           LoadAuthConfig(),
	}
	// empty disables the TCP sync listener
	if v, ok := os.LookupEnv("PMSTD_SYNC_ADDR"); ok {
		cfg.SyncAddr = v
	} else {
		cfg.SyncAddr = ":7070"
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func LoadAuthConfig() AuthConfig {
	return AuthConfig{
		// dev default (change for demo / production)
		JWTSecret:   env("PMSTD_ADMIN_SECRET", "dev-secret-change-me"),
		JWTIssuer:   env("PMSTD_ADMIN_ISSUER", "pmstandards"),
		JWTDuration: ttlHours(os.Getenv("PMSTD_ADMIN_TTL_HOURS"), 24*time.Hour),
	}
}

// ttlHours parses whole hours; anything unparsable or non-positive falls back.
func ttlHours(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Hour
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
