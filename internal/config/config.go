// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Directory holding the SQLite database (always absolute)
	Port      int
	LogLevel  string
	LogPretty bool
	DevMode   bool

	// Sector enrichment (empty URL disables enrichment)
	SectorLookupURL     string
	SectorLookupAPIKey  string
	SectorLookupTimeout time.Duration

	// ClassificationCacheTTL of 0 keeps enriched sectors for the process lifetime
	ClassificationCacheTTL time.Duration
	CacheSweepSchedule     string

	// DatabaseCheckSchedule runs the integrity and WAL checks
	DatabaseCheckSchedule string

	// PersistTimeout bounds each background save of a target state
	PersistTimeout time.Duration
}

// DatabasePath returns the location of the rebalancer database file
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "rebalancer.db")
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("REBALANCER_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:                absDataDir,
		Port:                   getEnvAsInt("REBALANCER_PORT", 8080),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogPretty:              getEnvAsBool("LOG_PRETTY", true),
		DevMode:                getEnvAsBool("DEV_MODE", false),
		SectorLookupURL:        getEnv("SECTOR_LOOKUP_URL", ""),
		SectorLookupAPIKey:     getEnv("SECTOR_LOOKUP_API_KEY", ""),
		SectorLookupTimeout:    getEnvAsDuration("SECTOR_LOOKUP_TIMEOUT", 10*time.Second),
		ClassificationCacheTTL: getEnvAsDuration("CLASSIFICATION_CACHE_TTL", 0),
		CacheSweepSchedule:     getEnv("CACHE_SWEEP_SCHEDULE", "@every 1h"),
		DatabaseCheckSchedule:  getEnv("DATABASE_CHECK_SCHEDULE", "@every 6h"),
		PersistTimeout:         getEnvAsDuration("PERSIST_TIMEOUT", 5*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.ClassificationCacheTTL < 0 {
		return fmt.Errorf("classification cache TTL cannot be negative: %s", c.ClassificationCacheTTL)
	}
	if _, err := cron.ParseStandard(c.CacheSweepSchedule); err != nil {
		return fmt.Errorf("invalid cache sweep schedule %q: %w", c.CacheSweepSchedule, err)
	}
	if _, err := cron.ParseStandard(c.DatabaseCheckSchedule); err != nil {
		return fmt.Errorf("invalid database check schedule %q: %w", c.DatabaseCheckSchedule, err)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
