// Package config provides configuration for the evaluation coordinator.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the coordinator configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Evaluation engine
	EngineMode     string // "sse" or "subprocess"
	EngineURL      string // evaluation gateway base URL (sse mode)
	EvaluationsBin string // evaluations binary path (subprocess mode)
	ConfigPath     string // engine config file forwarded to the binary
	GatewayURL     string // inference gateway forwarded to the binary

	// Timeouts
	StartTimeout time.Duration

	// Run registry cleanup
	CleanupInterval    time.Duration
	CompletedRetention time.Duration
	RunningRetention   time.Duration

	// Listing
	PageSize int
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:           getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:        getEnv("DATABASE_URL", "file:evalboard.db?cache=shared&mode=rwc"),
		EngineMode:         getEnv("ENGINE_MODE", "subprocess"),
		EngineURL:          getEnv("ENGINE_URL", "http://localhost:8070"),
		EvaluationsBin:     getEnv("EVALUATIONS_BIN", "evaluations"),
		ConfigPath:         getEnv("ENGINE_CONFIG_PATH", ""),
		GatewayURL:         getEnv("GATEWAY_URL", "http://localhost:3000"),
		StartTimeout:       time.Duration(getEnvInt("START_TIMEOUT_MS", 60000)) * time.Millisecond,
		CleanupInterval:    time.Duration(getEnvInt("CLEANUP_INTERVAL_MS", 3600000)) * time.Millisecond,
		CompletedRetention: time.Duration(getEnvInt("COMPLETED_RETENTION_MS", 3600000)) * time.Millisecond,
		RunningRetention:   time.Duration(getEnvInt("RUNNING_RETENTION_MS", 86400000)) * time.Millisecond,
		PageSize:           getEnvInt("PAGE_SIZE", 100),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
