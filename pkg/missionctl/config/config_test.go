package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "exec", cfg.Gateway.Mode)
	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	assert.Equal(t, 10*time.Second, cfg.DeliveryTimeout())
	assert.Equal(t, "0 9 * * *", cfg.Standup.Schedule)
	assert.False(t, cfg.Standup.Enabled)
}

func TestLoad_FileLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  driver: postgres
  dsn: postgres://localhost/mission
gateway:
  mode: http
  http:
    url: http://127.0.0.1:18789/agent
daemon:
  poll_interval_ms: 500
standup:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/mission", cfg.Database.DSN)
	assert.Equal(t, "http", cfg.Gateway.Mode)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
	// Untouched fields keep their defaults.
	assert.Equal(t, 10*time.Second, cfg.DeliveryTimeout())
	assert.True(t, cfg.Standup.Enabled)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", "database:\n  driver: oracle\n"},
		{"unknown gateway mode", "gateway:\n  mode: carrier-pigeon\n"},
		{"negative poll interval", "daemon:\n  poll_interval_ms: -5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFileIsError(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestPollInterval_ZeroFallsBackToDefault(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	assert.Equal(t, 10*time.Second, cfg.DeliveryTimeout())
}
