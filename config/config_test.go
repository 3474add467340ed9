package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Test loading default config
	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify defaults
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, "http://localhost:8080", cfg.Client.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 50, cfg.List.PageLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "localhost:6379", cfg.Realtime.Redis.Addr)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LEADERSYNC_CLIENT_BASE_URL", "https://scores.example.com")
	t.Setenv("LEADERSYNC_CLIENT_RATE_LIMIT", "2.5")
	t.Setenv("LEADERSYNC_CLIENT_BURST", "4")
	t.Setenv("LEADERSYNC_LIST_PAGE_LIMIT", "25")
	t.Setenv("LEADERSYNC_SEARCH_DEBOUNCE", "250ms")
	t.Setenv("LEADERSYNC_REALTIME_REDIS_ENABLED", "true")
	t.Setenv("LEADERSYNC_REALTIME_REDIS_CHANNEL", "scores")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://scores.example.com", cfg.Client.BaseURL)
	assert.Equal(t, 2.5, cfg.Client.RateLimit)
	assert.Equal(t, 4, cfg.Client.Burst)
	assert.Equal(t, 25, cfg.List.PageLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.True(t, cfg.Realtime.Redis.Enabled)
	assert.Equal(t, "scores", cfg.Realtime.Redis.Channel)
}

func TestLoad_WebhookEndpointsFromEnv(t *testing.T) {
	t.Setenv("LEADERSYNC_INTEGRATIONS_WEBHOOK_ENABLED", "true")
	t.Setenv("LEADERSYNC_INTEGRATIONS_WEBHOOK_ENDPOINTS", "https://a.example.com/hook,https://b.example.com/hook")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Integrations.Webhook.Enabled)
	assert.Equal(t, []string{"https://a.example.com/hook", "https://b.example.com/hook"}, cfg.Integrations.Webhook.Endpoints)
	assert.Equal(t, 2*time.Second, cfg.Integrations.Webhook.Timeout)
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("LEADERSYNC_LIST_PAGE_LIMIT", "0")
	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadFromFile(t *testing.T) {
	configContent := `
environment: testing
client:
  base_url: http://scores.internal:9000
  timeout: 3s
search:
  debounce: 100ms
metrics:
  enabled: true
`
	path := filepath.Join(t.TempDir(), "leadersync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, EnvTesting, cfg.Environment)
	assert.Equal(t, "http://scores.internal:9000", cfg.Client.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Search.Debounce)
	assert.True(t, cfg.Metrics.Enabled)
	// untouched keys keep their defaults
	assert.Equal(t, 50, cfg.List.PageLimit)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFromFile_EnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leadersync.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"list": {"page_limit": 20}}`), 0o600))
	t.Setenv("LEADERSYNC_LIST_PAGE_LIMIT", "30")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.List.PageLimit)
}

func validConfig() *Config {
	return DefaultConfig()
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:        "invalid environment",
			mutate:      func(c *Config) { c.Environment = "" },
			expectError: true,
		},
		{
			name:        "relative base url",
			mutate:      func(c *Config) { c.Client.BaseURL = "localhost" },
			expectError: true,
		},
		{
			name:        "zero timeout",
			mutate:      func(c *Config) { c.Client.Timeout = 0 },
			expectError: true,
		},
		{
			name:        "rate limit without burst",
			mutate:      func(c *Config) { c.Client.RateLimit = 5 },
			expectError: true,
		},
		{
			name:        "negative debounce",
			mutate:      func(c *Config) { c.Search.Debounce = -time.Second },
			expectError: true,
		},
		{
			name:        "unknown log level",
			mutate:      func(c *Config) { c.Logging.Level = "trace" },
			expectError: true,
		},
		{
			name: "metrics enabled without path",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Path = ""
			},
			expectError: true,
		},
		{
			name: "websocket path without slash",
			mutate: func(c *Config) {
				c.Realtime.WebSocket.Enabled = true
				c.Realtime.WebSocket.Path = "ws"
			},
			expectError: true,
		},
		{
			name: "redis enabled without channel",
			mutate: func(c *Config) {
				c.Realtime.Redis.Enabled = true
				c.Realtime.Redis.Channel = ""
			},
			expectError: true,
		},
		{
			name:        "webhook enabled without endpoints",
			mutate:      func(c *Config) { c.Integrations.Webhook.Enabled = true },
			expectError: true,
		},
		{
			name: "webhook endpoint not http",
			mutate: func(c *Config) {
				c.Integrations.Webhook.Enabled = true
				c.Integrations.Webhook.Endpoints = []string{"ftp://hooks.example.com"}
			},
			expectError: true,
		},
		{
			name: "webhook enabled",
			mutate: func(c *Config) {
				c.Integrations.Webhook.Enabled = true
				c.Integrations.Webhook.Endpoints = []string{"https://hooks.example.com/leaderboard"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_StringRedactsSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Client.APIKey = "super-secret"
	cfg.Realtime.Redis.Password = "hunter2"

	out := cfg.String()
	assert.False(t, strings.Contains(out, "super-secret"))
	assert.False(t, strings.Contains(out, "hunter2"))
	assert.True(t, strings.Contains(out, "[REDACTED]"))
	assert.Equal(t, "super-secret", cfg.Client.APIKey)
}

func TestProfiles(t *testing.T) {
	tests := []struct {
		name         string
		profileName  string
		expectConfig bool
		environment  Environment
	}{
		{"development", "development", true, EnvDevelopment},
		{"testing", "testing", true, EnvTesting},
		{"production", "production", true, EnvProduction},
		{"unknown", "unknown", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadProfile(tt.profileName)
			if tt.expectConfig {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				assert.Equal(t, tt.environment, cfg.Environment)
			} else {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			}
		})
	}
}

func TestValidateConfigPath(t *testing.T) {
	dir := t.TempDir()
	writeFile := func(name string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("{}"), 0o600))
		return p
	}

	tests := []struct {
		name        string
		path        string
		expectError bool
	}{
		{"valid json file", writeFile("a.json"), false},
		{"valid yaml file", writeFile("a.yml"), false},
		{"empty path", "", true},
		{"path traversal", "../../../etc/passwd", true},
		{"unsupported extension", writeFile("a.txt"), true},
		{"nonexistent file", filepath.Join(dir, "missing.json"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
