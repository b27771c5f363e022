package config

import (
	"os"
	"strconv"
	"time"

	"exodash/adapters/classifier"
	"exodash/domain/lightcurve"
	"exodash/domain/physics"
	"exodash/internal/errors"
	"exodash/internal/progress"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig
	Classifier  classifier.Config
	Offline     bool
	Progress    progress.Config
	Batch       BatchConfig
	Breakpoints physics.Breakpoints
	LightCurve  LightCurveConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	GinMode        string
	MaxUploadBytes int64
}

// BatchConfig controls how bulk submissions are split and how many jobs the server
// keeps. ChunkSize 0 sends one request.
type BatchConfig struct {
	ChunkSize   int
	Concurrency int
	MaxJobs     int
	JobTTL      time.Duration
}

// LightCurveConfig holds chart rendering settings
type LightCurveConfig struct {
	Points int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:     loadServerConfig(),
		Classifier: loadClassifierConfig(),
		Offline:    getEnvBoolOrDefault("CLASSIFIER_OFFLINE_FALLBACK", false),
		Progress:   loadProgressConfig(),
		Batch: BatchConfig{
			ChunkSize:   getEnvIntOrDefault("BATCH_CHUNK_SIZE", 0),
			Concurrency: getEnvIntOrDefault("BATCH_CONCURRENCY", 4),
			MaxJobs:     getEnvIntOrDefault("BATCH_MAX_JOBS", 32),
			JobTTL:      getEnvDurationOrDefault("BATCH_JOB_TTL", 30*time.Minute),
		},
		LightCurve: LightCurveConfig{
			Points: getEnvIntOrDefault("LIGHTCURVE_POINTS", lightcurve.DefaultPoints),
		},
	}

	breakpoints, err := loadBreakpoints()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load breakpoint table")
	}
	config.Breakpoints = breakpoints

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "debug"),
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 32<<20)),
	}
}

func loadClassifierConfig() classifier.Config {
	cfg := classifier.DefaultConfig()
	cfg.BaseURL = getEnvOrDefault("CLASSIFIER_URL", cfg.BaseURL)
	cfg.Timeout = getEnvDurationOrDefault("CLASSIFIER_TIMEOUT", cfg.Timeout)
	return cfg
}

func loadProgressConfig() progress.Config {
	cfg := progress.DefaultConfig()
	cfg.Tick = getEnvDurationOrDefault("PROGRESS_TICK", cfg.Tick)
	cfg.Step = getEnvIntOrDefault("PROGRESS_STEP", cfg.Step)
	cfg.Cap = getEnvIntOrDefault("PROGRESS_CAP", cfg.Cap)
	return cfg
}

// loadBreakpoints prefers a table file over a built-in set name.
func loadBreakpoints() (physics.Breakpoints, error) {
	if path := os.Getenv("BREAKPOINTS_FILE"); path != "" {
		return physics.LoadFile(path)
	}
	name := getEnvOrDefault("BREAKPOINT_SET", physics.SetDashboard)
	b, err := physics.Builtin(name)
	if err != nil {
		return physics.Breakpoints{}, errors.Wrapf(err, "BREAKPOINT_SET must be one of %v", physics.BuiltinNames())
	}
	return b, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if err := config.Classifier.Validate(); err != nil {
		return err
	}
	if err := config.Progress.Validate(); err != nil {
		return err
	}
	if config.Batch.ChunkSize < 0 {
		return errors.ConfigInvalid("BATCH_CHUNK_SIZE must not be negative")
	}
	if config.Batch.Concurrency <= 0 {
		return errors.ConfigInvalid("BATCH_CONCURRENCY must be positive")
	}
	if config.Batch.MaxJobs <= 0 {
		return errors.ConfigInvalid("BATCH_MAX_JOBS must be positive")
	}
	if config.Batch.JobTTL <= 0 {
		return errors.ConfigInvalid("BATCH_JOB_TTL must be positive")
	}
	if config.LightCurve.Points <= 0 {
		return errors.ConfigInvalid("LIGHTCURVE_POINTS must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("750ms") or bare seconds ("30").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}
	return defaultValue
}
