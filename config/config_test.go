package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/conformit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:8080", cfg.TerminologyURL)
	assert.Equal(t, 200000, cfg.MaxResults)
	assert.Equal(t, 10000, cfg.PageSize)
	assert.Equal(t, 500, cfg.FetchBatchSize)
	assert.Equal(t, 10.0, cfg.RequestsPerSecond)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, core.IsA, cfg.IsAType)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		assert.Equal(t, DefaultConfig(), NewConfig())
	})

	t.Run("with options", func(t *testing.T) {
		cfg := NewConfig(
			WithTerminologyURL("https://snowstorm.example.org/"),
			WithMaxResults(100),
			WithRateLimit(2.5),
			WithRetry(5, time.Second),
			WithDBPath("/tmp/db"),
			WithInMemory(true),
			WithTemplatesDir("./templates"),
			WithListenAddr(":9000"),
			WithPoolSize(4),
		)

		assert.Equal(t, "https://snowstorm.example.org/", cfg.TerminologyURL)
		assert.Equal(t, 100, cfg.MaxResults)
		assert.Equal(t, 2.5, cfg.RequestsPerSecond)
		assert.Equal(t, 5, cfg.RetryAttempts)
		assert.Equal(t, time.Second, cfg.RetryDelay)
		assert.Equal(t, "/tmp/db", cfg.DBPath)
		assert.True(t, cfg.InMemory)
		assert.Equal(t, "./templates", cfg.TemplatesDir)
		assert.Equal(t, ":9000", cfg.ListenAddr)
		assert.Equal(t, 4, cfg.PoolSize)
	})
}

func TestNormalize(t *testing.T) {
	cfg := &Config{TerminologyURL: "  http://host:8080/snowstorm// ", IsAType: "", PoolSize: -2}
	cfg.Normalize()

	assert.Equal(t, "http://host:8080/snowstorm", cfg.TerminologyURL)
	assert.Equal(t, core.IsA, cfg.IsAType)
	assert.Equal(t, 0, cfg.PoolSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"missing url", func(c *Config) { c.TerminologyURL = "" }, "TerminologyURL"},
		{"zero max results", func(c *Config) { c.MaxResults = 0 }, "MaxResults"},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, "PageSize"},
		{"zero fetch batch", func(c *Config) { c.FetchBatchSize = 0 }, "FetchBatchSize"},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }, "RequestsPerSecond"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "Timeout"},
		{"zero attempts", func(c *Config) { c.RetryAttempts = 0 }, "RetryAttempts"},
		{"negative delay", func(c *Config) { c.RetryDelay = -time.Second }, "RetryDelay"},
		{"missing db path", func(c *Config) { c.DBPath = "" }, "DBPath"},
		{"watch without dir", func(c *Config) { c.WatchTemplates = true }, "TemplatesDir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("in memory without db path", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DBPath = ""
		cfg.InMemory = true
		assert.NoError(t, cfg.Validate())
	})

	t.Run("zero rate disables limit", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RequestsPerSecond = 0
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conformit.yaml")
	content := `terminology_url: https://snowstorm.example.org/snowstorm/snomed-ct
max_results: 5000
timeout: 2m
retry_delay: 250ms
templates_dir: ./templates
watch_templates: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://snowstorm.example.org/snowstorm/snomed-ct", cfg.TerminologyURL)
	assert.Equal(t, 5000, cfg.MaxResults)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.True(t, cfg.WatchTemplates)
	// Unset keys keep their defaults.
	assert.Equal(t, 500, cfg.FetchBatchSize)
	assert.Equal(t, core.IsA, cfg.IsAType)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_results: [1, 2"), 0644))
		_, err := LoadFromFile(path)
		assert.Error(t, err)
	})
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "conformit.yaml")
	cfg := NewConfig(WithTerminologyURL("https://example.org"), WithRetry(4, 2*time.Second))

	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
