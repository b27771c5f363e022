package classifier

import (
	"strings"
	"time"

	apperrors "exodash/internal/errors"
)

// Config holds connection settings for the remote model service
type Config struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`

	// Paths are relative to BaseURL
	PredictPath   string `json:"predict_path"`
	BatchPath     string `json:"batch_path"`
	AnalyticsPath string `json:"analytics_path"`

	Headers map[string]string `json:"headers,omitempty"`

	// MaxResponseBytes caps how much of a response body is read
	MaxResponseBytes int64 `json:"max_response_bytes"`
}

// DefaultConfig returns settings matching the reference model service
func DefaultConfig() Config {
	return Config{
		BaseURL:          "http://localhost:5000",
		Timeout:          60 * time.Second,
		PredictPath:      "/predict",
		BatchPath:        "/predict/batch",
		AnalyticsPath:    "/model/analytics",
		MaxResponseBytes: 64 << 20,
	}
}

// Validate checks if the configuration is usable
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return apperrors.ConfigInvalid("classifier base URL is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return apperrors.ConfigInvalid("classifier base URL must be http(s)")
	}
	if c.Timeout <= 0 {
		return apperrors.ConfigInvalid("classifier timeout must be positive")
	}
	return nil
}

func (c Config) url(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
