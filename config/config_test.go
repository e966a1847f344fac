package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PLAYBACK_DATA_SERVICE_URL", "http://data.local")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.DataServiceTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogEncoding)
	assert.True(t, cfg.RuntimeMetrics)
	assert.Equal(t, uint(60), cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RatePeriod)
	assert.Nil(t, cfg.AllowedOrigins())
}

func TestLoad_RequiresDataServiceURL(t *testing.T) {
	t.Setenv("PLAYBACK_DATA_SERVICE_URL", "")
	require.NoError(t, os.Unsetenv("PLAYBACK_DATA_SERVICE_URL"))

	_, err := Load("")

	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("PLAYBACK_DATA_SERVICE_URL", "http://data.local")
	t.Setenv("PLAYBACK_LOG_LEVEL", "verbose")

	_, err := Load("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "PLAYBACK_DATA_SERVICE_URL=http://from-file.local\nPLAYBACK_PORT=9090\nPLAYBACK_CORS_ALLOWED_ORIGINS=https://a.example, https://b.example\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// Registered so the values the file sets are removed afterwards.
	t.Setenv("PLAYBACK_DATA_SERVICE_URL", "")
	require.NoError(t, os.Unsetenv("PLAYBACK_DATA_SERVICE_URL"))
	t.Setenv("PLAYBACK_CORS_ALLOWED_ORIGINS", "")
	require.NoError(t, os.Unsetenv("PLAYBACK_CORS_ALLOWED_ORIGINS"))
	t.Setenv("PLAYBACK_PORT", "7070")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "http://from-file.local", cfg.DataServiceURL)
	assert.Equal(t, "7070", cfg.Port, "environment wins over the file")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("PLAYBACK_DATA_SERVICE_URL", "http://data.local")

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))

	assert.NoError(t, err)
}
