package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"leadersync/core"
)

// DefaultChannel is the pub/sub channel snapshots are mirrored to.
const DefaultChannel = "leadersync:events"

// Config holds Redis connection configuration
type Config struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	Channel      string        `mapstructure:"channel"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Channel:      DefaultChannel,
		DialTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Publisher mirrors controller events onto a Redis channel so other processes
// can observe the client's state. Nothing flows back into the controllers.
type Publisher struct {
	client  *redis.Client
	channel string
	timeout time.Duration
	logger  *zap.Logger
}

// New connects to Redis and verifies the connection with a PING.
func New(config Config, logger *zap.Logger) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  config.DialTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	p := NewWithClient(client, config.Channel)
	if config.WriteTimeout > 0 {
		p.timeout = config.WriteTimeout
	}
	if logger != nil {
		p.logger = logger.Named("redis")
	}
	return p, nil
}

// NewWithClient wraps an existing client (useful for testing)
func NewWithClient(client *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{
		client:  client,
		channel: channel,
		timeout: 3 * time.Second,
		logger:  zap.NewNop(),
	}
}

// Channel returns the pub/sub channel name.
func (p *Publisher) Channel() string { return p.channel }

// Close closes the Redis connection
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Publish encodes ev as JSON and publishes it on the channel.
func (p *Publisher) Publish(ctx context.Context, ev core.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// OnEvent satisfies analytics.Hook. Failures are logged, never propagated.
func (p *Publisher) OnEvent(ctx context.Context, ev core.Event) {
	if err := p.Publish(ctx, ev); err != nil {
		p.logger.Warn("event publish failed", zap.String("type", string(ev.Type)), zap.Error(err))
	}
}

// Subscribe streams decoded events from the channel until ctx is done.
// Messages that do not decode are skipped.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan core.Event, error) {
	sub := p.client.Subscribe(ctx, p.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", p.channel, err)
	}

	out := make(chan core.Event, 64)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev core.Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					p.logger.Debug("skipping undecodable message", zap.Error(err))
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
