package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"leadersync/leaderboardtest"
)

func main() {
	var (
		addr    string
		players int
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "demo-server",
		Short: "Serve a fake scoring service with generated players",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// readable console logging for development/demo
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return serve(cmd.Context(), logger, addr, leaderboardtest.NewService(players, leaderboardtest.WithSeed(seed)))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&players, "players", 1000, "number of generated players")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed for players and simulations")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context, logger *zap.Logger, addr string, svc *leaderboardtest.Service) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           svc,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("demo server listening", zap.String("address", addr), zap.Int("players", svc.Board().Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("demo server crashed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down demo server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
