package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"exodash/domain/physics"
	"exodash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:5000", cfg.Classifier.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Classifier.Timeout)
	assert.False(t, cfg.Offline)
	assert.Equal(t, 90, cfg.Progress.Cap)
	assert.Equal(t, 0, cfg.Batch.ChunkSize)
	assert.Equal(t, 32, cfg.Batch.MaxJobs)
	assert.Equal(t, 30*time.Minute, cfg.Batch.JobTTL)
	assert.Equal(t, physics.SetDashboard, cfg.Breakpoints.Name)
	assert.Equal(t, 100, cfg.LightCurve.Points)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CLASSIFIER_URL", "http://model:9000")
	t.Setenv("CLASSIFIER_TIMEOUT", "15")
	t.Setenv("CLASSIFIER_OFFLINE_FALLBACK", "true")
	t.Setenv("PROGRESS_TICK", "250ms")
	t.Setenv("BATCH_CHUNK_SIZE", "200")
	t.Setenv("BATCH_JOB_TTL", "5m")
	t.Setenv("BREAKPOINT_SET", physics.SetResults)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://model:9000", cfg.Classifier.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Classifier.Timeout)
	assert.True(t, cfg.Offline)
	assert.Equal(t, 250*time.Millisecond, cfg.Progress.Tick)
	assert.Equal(t, 200, cfg.Batch.ChunkSize)
	assert.Equal(t, 5*time.Minute, cfg.Batch.JobTTL)
	assert.Equal(t, physics.SetResults, cfg.Breakpoints.Name)
}

func TestLoadBreakpointsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bands.yaml")
	body := `name: lab
zones:
  - {upper: 250, label: Cold, severity: info}
  - {label: Warm, severity: warning}
sizes:
  - {upper: 2, label: Small}
  - {label: Large}
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("BREAKPOINTS_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "lab", cfg.Breakpoints.Name)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string][2]string{
		"unknown set":      {"BREAKPOINT_SET", "lunar"},
		"cap of 100":       {"PROGRESS_CAP", "100"},
		"bad url":          {"CLASSIFIER_URL", "model:5000"},
		"zero concurrency": {"BATCH_CONCURRENCY", "0"},
		"negative chunk":   {"BATCH_CHUNK_SIZE", "-1"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
