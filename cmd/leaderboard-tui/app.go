package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	redisAdapter "leadersync/adapters/redis"
	ws "leadersync/adapters/websocket"
	"leadersync/analytics"
	"leadersync/config"
	"leadersync/engine"
	"leadersync/integrations/webhook"
	"leadersync/leaderboardtest"
	"leadersync/realtime"
	sdk "leadersync/sdk/go"
	"leadersync/session"
)

// Flags carries the command line overrides.
type Flags struct {
	ConfigPath  string
	Profile     string
	BaseURL     string
	FakePlayers int
}

// App aggregates the assembled client components.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Fake      *leaderboardtest.Server
	Client    *sdk.Client
	Hub       *realtime.Hub
	Metrics   *analytics.Metrics
	Stats     *analytics.SessionStats
	Publisher *redisAdapter.Publisher
	Webhook   *webhook.Sink
	Session   *session.Session
}

func provideConfig(flags Flags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case flags.ConfigPath != "":
		cfg, err = config.LoadFromFile(flags.ConfigPath)
	case flags.Profile != "":
		cfg, err = config.LoadProfile(flags.Profile)
	default:
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if flags.BaseURL != "" {
		cfg.Client.BaseURL = flags.BaseURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// provideLogger builds the zap logger. The terminal UI owns stdout, so
// "discard" and file outputs are the usual choices.
func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	if cfg.Logging.Output == "discard" {
		return zap.NewNop(), func() {}, nil
	}
	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	zc.Encoding = "json"
	if cfg.Logging.Format == "text" {
		zc.Encoding = "console"
	}
	zc.OutputPaths = []string{cfg.Logging.Output}
	zc.ErrorOutputPaths = []string{cfg.Logging.Output}

	logger, err := zc.Build()
	if err != nil {
		return nil, nil, err
	}
	if len(cfg.Logging.Attributes) > 0 {
		fields := make([]zap.Field, 0, len(cfg.Logging.Attributes))
		for k, v := range cfg.Logging.Attributes {
			fields = append(fields, zap.String(k, v))
		}
		logger = logger.With(fields...)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// provideFake starts an in-process scoring service when --fake is set.
func provideFake(flags Flags, logger *zap.Logger) (*leaderboardtest.Server, func()) {
	if flags.FakePlayers <= 0 {
		return nil, func() {}
	}
	srv := leaderboardtest.NewServer(flags.FakePlayers, leaderboardtest.WithSeed(time.Now().UnixNano()))
	logger.Info("fake scoring service started", zap.String("url", srv.URL), zap.Int("players", flags.FakePlayers))
	return srv, srv.Close
}

func provideMetrics() *analytics.Metrics {
	return analytics.NewMetrics()
}

func provideStats() *analytics.SessionStats {
	return analytics.NewSessionStats()
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideClient(cfg *config.Config, fake *leaderboardtest.Server, metrics *analytics.Metrics, logger *zap.Logger) (*sdk.Client, error) {
	baseURL := cfg.Client.BaseURL
	if fake != nil {
		baseURL = fake.URL
	}
	opts := []sdk.Option{
		sdk.WithTimeout(cfg.Client.Timeout),
		sdk.WithObserver(metrics),
		sdk.WithLogger(logger),
	}
	if cfg.Client.APIKey != "" {
		opts = append(opts, sdk.WithAPIKey(cfg.Client.APIKey))
	}
	if cfg.Client.RateLimit > 0 {
		opts = append(opts, sdk.WithRateLimit(cfg.Client.RateLimit, cfg.Client.Burst))
	}
	return sdk.NewClient(baseURL, opts...)
}

// providePublisher connects the Redis mirror, or returns nil when it is disabled.
func providePublisher(cfg *config.Config, logger *zap.Logger) (*redisAdapter.Publisher, func(), error) {
	if !cfg.Realtime.Redis.Enabled {
		return nil, func() {}, nil
	}
	pub, err := redisAdapter.New(cfg.Realtime.Redis.Config, logger)
	if err != nil {
		return nil, nil, err
	}
	return pub, func() { _ = pub.Close() }, nil
}

// provideWebhook returns nil when webhook delivery is disabled.
func provideWebhook(cfg *config.Config, logger *zap.Logger) *webhook.Sink {
	if !cfg.Integrations.Webhook.Enabled {
		return nil
	}
	return webhook.FromConfig(cfg.Integrations.Webhook, logger.Named("webhook"))
}

func provideSession(cfg *config.Config, client *sdk.Client, hub *realtime.Hub, metrics *analytics.Metrics,
	stats *analytics.SessionStats, pub *redisAdapter.Publisher, sink *webhook.Sink, logger *zap.Logger) (*session.Session, func()) {
	opts := []session.Option{
		session.WithPageLimit(cfg.List.PageLimit),
		session.WithDebounce(cfg.Search.Debounce),
		session.WithDispatchMode(engine.DispatchAsync),
		session.WithRealtime(hub),
		session.WithHooks(metrics, stats),
		session.WithLogger(logger),
	}
	// network hooks must not hold up the renderer
	if pub != nil {
		opts = append(opts, session.WithQueuedHook("redis", pub))
	}
	if sink != nil {
		opts = append(opts, session.WithQueuedHook("webhook", sink))
	}
	sess := session.New(client, opts...)
	return sess, sess.Close
}

// serve starts the optional metrics and websocket listeners. The returned
// func shuts them down.
func (a *App) serve() func() {
	var servers []*http.Server

	if a.Config.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(a.Config.Metrics.Path, a.Metrics.Handler())
		servers = append(servers, a.listen("metrics", a.Config.Metrics.Address, mux))
	}
	if wsCfg := a.Config.Realtime.WebSocket; wsCfg.Enabled {
		mux := http.NewServeMux()
		mux.Handle(wsCfg.Path, ws.Handler(a.Hub, a.Logger))
		servers = append(servers, a.listen("websocket", wsCfg.Address, mux))
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(ctx); err != nil {
				a.Logger.Warn("listener shutdown failed", zap.String("address", srv.Addr), zap.Error(err))
			}
		}
	}
}

func (a *App) listen(name, addr string, h http.Handler) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.Logger.Info("listener started", zap.String("name", name), zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("listener failed", zap.String("name", name), zap.Error(err))
		}
	}()
	return srv
}
