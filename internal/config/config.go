package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	LogLevel     string
	Port         int
	DevMode      bool

	// Optional input files for the scheduled re-optimization job. Both must
	// be set for the job to be registered.
	ReturnsPath    string
	CovariancePath string
	// Cron schedule for the re-optimization job.
	ReoptimizeSchedule string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnvAsInt("PORT", 8080),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		DatabasePath:       getEnv("DATABASE_PATH", "./data/orbat.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ReturnsPath:        getEnv("RETURNS_PATH", ""),
		CovariancePath:     getEnv("COVARIANCE_PATH", ""),
		ReoptimizeSchedule: getEnv("REOPTIMIZE_SCHEDULE", "@hourly"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if (c.ReturnsPath == "") != (c.CovariancePath == "") {
		return fmt.Errorf("RETURNS_PATH and COVARIANCE_PATH must be set together")
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
