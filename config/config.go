package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"leadersync/adapters/redis"
	"leadersync/integrations/webhook"
)

// EnvPrefix prefixes every environment override, e.g. LEADERSYNC_CLIENT_BASE_URL.
const EnvPrefix = "LEADERSYNC"

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the complete application configuration
type Config struct {
	Environment Environment `json:"environment" mapstructure:"environment"`

	// Remote scoring service
	Client ClientConfig `json:"client" mapstructure:"client"`

	List   ListConfig   `json:"list" mapstructure:"list"`
	Search SearchConfig `json:"search" mapstructure:"search"`

	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Metrics and monitoring
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// State mirroring to other processes
	Realtime RealtimeConfig `json:"realtime" mapstructure:"realtime"`

	Integrations IntegrationsConfig `json:"integrations" mapstructure:"integrations"`
}

// ClientConfig holds remote client configuration
type ClientConfig struct {
	BaseURL   string        `json:"base_url" mapstructure:"base_url"`
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout"`
	APIKey    string        `json:"api_key,omitempty" mapstructure:"api_key"`
	RateLimit float64       `json:"rate_limit" mapstructure:"rate_limit"`
	Burst     int           `json:"burst" mapstructure:"burst"`
}

// ListConfig holds browsing view configuration
type ListConfig struct {
	PageLimit int `json:"page_limit" mapstructure:"page_limit"`
}

// SearchConfig holds search view configuration
type SearchConfig struct {
	Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
}

// LoggingConfig holds logging configuration. Output is stdout, stderr, discard
// or a file path; the terminal UI owns stdout so it defaults to a file.
type LoggingConfig struct {
	Level      string            `json:"level" mapstructure:"level"`
	Format     string            `json:"format" mapstructure:"format"`
	Output     string            `json:"output" mapstructure:"output"`
	Attributes map[string]string `json:"attributes,omitempty" mapstructure:"attributes"`
}

// MetricsConfig holds metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
	Path    string `json:"path" mapstructure:"path"`
}

// RealtimeConfig holds the outbound state streams.
type RealtimeConfig struct {
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
	Redis     RedisConfig     `json:"redis" mapstructure:"redis"`
}

type WebSocketConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
	Path    string `json:"path" mapstructure:"path"`
}

// IntegrationsConfig holds outbound notifications to third parties.
type IntegrationsConfig struct {
	Webhook webhook.Config `json:"webhook" mapstructure:"webhook"`
}

type RedisConfig struct {
	Enabled      bool `json:"enabled" mapstructure:"enabled"`
	redis.Config `mapstructure:",squash"`
}

// DefaultConfig returns a configuration with sensible defaults for development
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Client: ClientConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 10 * time.Second,
		},
		List: ListConfig{
			PageLimit: 50,
		},
		Search: SearchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "leadersync.log",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9090",
			Path:    "/metrics",
		},
		Realtime: RealtimeConfig{
			WebSocket: WebSocketConfig{
				Enabled: false,
				Address: ":8081",
				Path:    "/ws",
			},
			Redis: RedisConfig{
				Enabled: false,
				Config:  redis.DefaultConfig(),
			},
		},
		Integrations: IntegrationsConfig{
			Webhook: webhook.Config{
				Timeout: 2 * time.Second,
			},
		},
	}
}

// Load builds the configuration from defaults and LEADERSYNC_* environment
// variables and validates it.
func Load() (*Config, error) {
	return load(newViper())
}

// LoadFromFile loads configuration from a JSON, YAML or TOML file.
// Environment variables override file values.
func LoadFromFile(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}
	v := newViper()
	v.SetConfigFile(filepath.Clean(path))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return load(v)
}

// LoadProfile loads a named preset on top of the defaults.
func LoadProfile(name string) (*Config, error) {
	v := newViper()
	switch Environment(name) {
	case EnvDevelopment:
		v.SetDefault("logging.level", "debug")
		v.SetDefault("logging.format", "text")
	case EnvTesting:
		v.SetDefault("environment", string(EnvTesting))
		v.SetDefault("search.debounce", "50ms")
		v.SetDefault("logging.output", "discard")
	case EnvProduction:
		v.SetDefault("environment", string(EnvProduction))
		v.SetDefault("logging.level", "warn")
	default:
		return nil, fmt.Errorf("unknown profile %q", name)
	}
	return load(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("environment", string(d.Environment))

	v.SetDefault("client.base_url", d.Client.BaseURL)
	v.SetDefault("client.timeout", d.Client.Timeout)
	v.SetDefault("client.api_key", d.Client.APIKey)
	v.SetDefault("client.rate_limit", d.Client.RateLimit)
	v.SetDefault("client.burst", d.Client.Burst)

	v.SetDefault("list.page_limit", d.List.PageLimit)
	v.SetDefault("search.debounce", d.Search.Debounce)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.address", d.Metrics.Address)
	v.SetDefault("metrics.path", d.Metrics.Path)

	ws := d.Realtime.WebSocket
	v.SetDefault("realtime.websocket.enabled", ws.Enabled)
	v.SetDefault("realtime.websocket.address", ws.Address)
	v.SetDefault("realtime.websocket.path", ws.Path)

	rd := d.Realtime.Redis
	v.SetDefault("realtime.redis.enabled", rd.Enabled)
	v.SetDefault("realtime.redis.addr", rd.Addr)
	v.SetDefault("realtime.redis.password", rd.Password)
	v.SetDefault("realtime.redis.db", rd.DB)
	v.SetDefault("realtime.redis.channel", rd.Channel)
	v.SetDefault("realtime.redis.dial_timeout", rd.DialTimeout)
	v.SetDefault("realtime.redis.write_timeout", rd.WriteTimeout)

	wh := d.Integrations.Webhook
	v.SetDefault("integrations.webhook.enabled", wh.Enabled)
	v.SetDefault("integrations.webhook.endpoints", wh.Endpoints)
	v.SetDefault("integrations.webhook.events", wh.Events)
	v.SetDefault("integrations.webhook.timeout", wh.Timeout)
}

func load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

var configExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// validateConfigPath validates that the config file path is safe
func validateConfigPath(path string) error {
	if path == "" {
		return errors.New("config file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	supported := false
	for _, e := range configExtensions {
		if ext == e {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("config file must have one of the extensions: %s", strings.Join(configExtensions, ", "))
	}

	if _, err := os.Stat(cleanPath); err != nil {
		return fmt.Errorf("config file not accessible: %w", err)
	}

	return nil
}

// Validate validates the configuration and returns detailed error messages
func (c *Config) Validate() error {
	var errs []string

	if c.Environment == "" {
		errs = append(errs, "environment cannot be empty")
	}

	if err := c.Client.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("client config: %v", err))
	}

	if c.List.PageLimit <= 0 {
		errs = append(errs, "list config: page_limit must be positive")
	}

	if c.Search.Debounce < 0 {
		errs = append(errs, "search config: debounce cannot be negative")
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("metrics config: %v", err))
	}

	if err := c.Realtime.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("realtime config: %v", err))
	}

	if err := c.Integrations.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("integrations config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// String returns a JSON representation of the config (with secrets redacted)
func (c *Config) String() string {
	// Create a copy for redaction
	cfg := *c

	if cfg.Client.APIKey != "" {
		cfg.Client.APIKey = "[REDACTED]"
	}
	if cfg.Realtime.Redis.Password != "" {
		cfg.Realtime.Redis.Password = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}
