package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gounivar/internal/errors"
	"gounivar/internal/logging"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Analysis  AnalysisConfig
	Data      DataConfig
	Database  DatabaseConfig
	Profiling ProfilingConfig
	LogLevel  logging.Level
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// MaxBodyBytes bounds an analyze request body
	MaxBodyBytes int64
}

// AnalysisConfig holds analyzer and report defaults
type AnalysisConfig struct {
	Concurrency  int
	Precision    int
	AssumeNormal bool
}

// DataConfig holds dataset loading defaults
type DataConfig struct {
	Sheet string
}

// DatabaseConfig holds the optional SQL dataset source
type DatabaseConfig struct {
	Driver string
	URL    string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	var errs []string
	config := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("GOUNIVAR_PORT", "8080"),
			ReadTimeout:     getEnvDurationOrDefault("GOUNIVAR_READ_TIMEOUT", 30*time.Second, &errs),
			WriteTimeout:    getEnvDurationOrDefault("GOUNIVAR_WRITE_TIMEOUT", 60*time.Second, &errs),
			ShutdownTimeout: getEnvDurationOrDefault("GOUNIVAR_SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
			MaxBodyBytes:    int64(getEnvIntOrDefault("GOUNIVAR_MAX_BODY_BYTES", 32<<20, &errs)),
		},
		Analysis: AnalysisConfig{
			Concurrency:  getEnvIntOrDefault("GOUNIVAR_CONCURRENCY", 4, &errs),
			Precision:    getEnvIntOrDefault("GOUNIVAR_PRECISION", 2, &errs),
			AssumeNormal: getEnvBoolOrDefault("GOUNIVAR_ASSUME_NORMAL", false, &errs),
		},
		Data: DataConfig{
			Sheet: getEnvOrDefault("GOUNIVAR_SHEET", "Sheet1"),
		},
		Database: DatabaseConfig{
			Driver: getEnvOrDefault("GOUNIVAR_DATABASE_DRIVER", ""),
			URL:    getEnvOrDefault("GOUNIVAR_DATABASE_URL", ""),
		},
		Profiling: ProfilingConfig{
			Port:    getEnvOrDefault("GOUNIVAR_PPROF_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("GOUNIVAR_PPROF_ENABLED", false, &errs),
		},
	}

	config.LogLevel = logging.ParseLevel(getEnvOrDefault("GOUNIVAR_LOG_LEVEL", "info"))

	if len(errs) > 0 {
		return nil, errors.ConfigInvalid(fmt.Sprintf("invalid environment: %v", errs))
	}
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Analysis.Concurrency < 1 {
		return errors.ConfigInvalid("GOUNIVAR_CONCURRENCY must be at least 1")
	}
	if config.Analysis.Precision < 0 || config.Analysis.Precision > 12 {
		return errors.ConfigInvalid("GOUNIVAR_PRECISION must be between 0 and 12")
	}
	if config.Server.MaxBodyBytes <= 0 {
		return errors.ConfigInvalid("GOUNIVAR_MAX_BODY_BYTES must be positive")
	}
	if (config.Database.Driver == "") != (config.Database.URL == "") {
		return errors.ConfigInvalid("GOUNIVAR_DATABASE_DRIVER and GOUNIVAR_DATABASE_URL must be set together")
	}
	return nil
}

// Helper functions for environment variable parsing. Unparseable values are
// collected into errs and the default is returned.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int, errs *[]string) int {
	if value := os.Getenv(key); value != "" {
		intValue, err := strconv.Atoi(value)
		if err != nil {
			*errs = append(*errs, fmt.Sprintf("%s=%q is not an integer", key, value))
			return defaultValue
		}
		return intValue
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool, errs *[]string) bool {
	if value := os.Getenv(key); value != "" {
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			*errs = append(*errs, fmt.Sprintf("%s=%q is not a boolean", key, value))
			return defaultValue
		}
		return boolValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			*errs = append(*errs, fmt.Sprintf("%s=%q is not a duration", key, value))
			return defaultValue
		}
		return duration
	}
	return defaultValue
}
