package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate validates remote client configuration
func (c *ClientConfig) Validate() error {
	var errs []string

	if c.BaseURL == "" {
		errs = append(errs, "base_url cannot be empty")
	} else if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "base_url must be an absolute URL")
	}

	if c.Timeout <= 0 {
		errs = append(errs, "timeout must be positive")
	}

	if c.RateLimit < 0 {
		errs = append(errs, "rate_limit cannot be negative")
	}

	if c.RateLimit > 0 && c.Burst <= 0 {
		errs = append(errs, "burst must be > 0 when rate limiting is enabled")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	var errs []string

	validLevels := []string{"debug", "info", "warn", "error"}
	isValidLevel := false
	for _, level := range validLevels {
		if l.Level == level {
			isValidLevel = true
			break
		}
	}

	if !isValidLevel {
		errs = append(errs, fmt.Sprintf("level must be one of: %s", strings.Join(validLevels, ", ")))
	}

	validFormats := []string{"json", "text"}
	isValidFormat := false
	for _, format := range validFormats {
		if l.Format == format {
			isValidFormat = true
			break
		}
	}

	if !isValidFormat {
		errs = append(errs, fmt.Sprintf("format must be one of: %s", strings.Join(validFormats, ", ")))
	}

	if strings.TrimSpace(l.Output) == "" {
		errs = append(errs, "output cannot be empty")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates metrics configuration
func (m *MetricsConfig) Validate() error {
	var errs []string

	if m.Enabled {
		if m.Address == "" {
			errs = append(errs, "address cannot be empty when metrics are enabled")
		}

		if m.Path == "" {
			errs = append(errs, "path cannot be empty when metrics are enabled")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates the outbound stream configuration
func (r *RealtimeConfig) Validate() error {
	var errs []string

	if r.WebSocket.Enabled {
		if r.WebSocket.Address == "" {
			errs = append(errs, "websocket.address cannot be empty when enabled")
		}
		if !strings.HasPrefix(r.WebSocket.Path, "/") {
			errs = append(errs, "websocket.path must start with /")
		}
	}

	if r.Redis.Enabled {
		if r.Redis.Addr == "" {
			errs = append(errs, "redis.addr cannot be empty when enabled")
		}
		if r.Redis.Channel == "" {
			errs = append(errs, "redis.channel cannot be empty when enabled")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates outbound integrations
func (i *IntegrationsConfig) Validate() error {
	wh := i.Webhook
	if !wh.Enabled {
		return nil
	}
	var errs []string
	if len(wh.Endpoints) == 0 {
		errs = append(errs, "webhook endpoints cannot be empty when enabled")
	}
	for _, ep := range wh.Endpoints {
		if u, err := url.Parse(ep); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Sprintf("webhook endpoint %q must be an http(s) URL", ep))
		}
	}
	if wh.Timeout <= 0 {
		errs = append(errs, "webhook timeout must be positive")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
