package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

database:
  url: "postgres://localhost/monitor_test"
  max_open_conns: 10

newsapi:
  api_key: "test-api-key"
  timeout_seconds: 45

collect:
  hour: 7
  minute: 30
  timezone: "America/Sao_Paulo"
  max_news_per_politician: 15
  delay_seconds: 1.5

retention:
  news_days: 14
  posts_days: 60
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "postgres://localhost/monitor_test", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)

	assert.Equal(t, "test-api-key", cfg.NewsAPI.APIKey)
	assert.Equal(t, 45, cfg.NewsAPI.TimeoutSeconds)
	assert.True(t, cfg.NewsAPI.Enabled())

	assert.Equal(t, 7, cfg.Collect.Hour)
	assert.Equal(t, 30, cfg.Collect.Minute)
	assert.Equal(t, 15, cfg.Collect.MaxNewsPerPolitician)
	assert.Equal(t, 1.5, cfg.Collect.DelaySeconds)

	assert.Equal(t, 14, cfg.Retention.NewsDays)
	assert.Equal(t, 60, cfg.Retention.PostsDays)
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
database:
  url: "postgres://localhost/monitor"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 6, cfg.Collect.Hour)
	assert.Equal(t, "America/Sao_Paulo", cfg.Collect.Timezone)
	assert.Equal(t, 20, cfg.Collect.MaxNewsPerPolitician)
	assert.Equal(t, 10, cfg.Collect.MaxPostsPerPolitician)
	assert.Equal(t, 5, cfg.Collect.RegionNewsLimit)
	assert.Equal(t, 2.0, cfg.Collect.DelaySeconds)
	assert.Equal(t, 5.0, cfg.Collect.DelaySocialSeconds)
	assert.Equal(t, 7, cfg.Retention.NewsDays)
	assert.Equal(t, 30, cfg.Retention.PostsDays)
	assert.Equal(t, 30, cfg.Retention.MentionsDays)
	assert.Equal(t, 85, cfg.Relevance.FuzzyThreshold)
	assert.Equal(t, "default", cfg.Relevance.WeightPreset)
	assert.Equal(t, "portal", cfg.Storage.Bucket)
	assert.Equal(t, 5, cfg.Classifier.BatchSize)
	assert.False(t, cfg.Classifier.Enabled())
	assert.False(t, cfg.NewsAPI.Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
newsapi:
  api_key: "file-key"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	os.Setenv("NEWSAPI_KEY", "env-key")
	os.Setenv("DATABASE_URL", "postgres://env-host/monitor")
	defer func() {
		os.Unsetenv("NEWSAPI_KEY")
		os.Unsetenv("DATABASE_URL")
	}()

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	// Environment variables should override file values
	assert.Equal(t, "env-key", cfg.NewsAPI.APIKey)
	assert.Equal(t, "postgres://env-host/monitor", cfg.Database.URL)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestTimeout(t *testing.T) {
	cfg := NewsAPIConfig{TimeoutSeconds: 45}
	assert.Equal(t, 45*1000000000, int(cfg.Timeout().Nanoseconds()))
}

func TestCollectLocation(t *testing.T) {
	cfg := CollectConfig{Timezone: "America/Sao_Paulo"}
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, "UTC", cfg.Location().String())
}
