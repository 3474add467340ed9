package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var flags Flags

	cmd := &cobra.Command{
		Use:           "leaderboard-tui",
		Short:         "Browse and search a remote leaderboard in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), flags)
		},
	}
	cmd.Flags().StringVarP(&flags.ConfigPath, "config", "c", "", "path to a JSON, YAML or TOML config file")
	cmd.Flags().StringVar(&flags.Profile, "profile", "", "named preset: development, testing or production")
	cmd.Flags().StringVar(&flags.BaseURL, "base-url", "", "scoring service URL, overrides config")
	cmd.Flags().IntVar(&flags.FakePlayers, "fake", 0, "run against an in-process fake service with this many players")
	cmd.MarkFlagsMutuallyExclusive("config", "profile")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "leaderboard-tui: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, flags Flags) error {
	app, cleanup, err := BuildApp(flags)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer cleanup()

	app.Logger.Info("starting leaderboard-tui",
		zap.String("environment", string(app.Config.Environment)),
		zap.String("base_url", app.Client.BaseURL()),
		zap.Int("page_limit", app.Config.List.PageLimit),
		zap.Duration("debounce", app.Config.Search.Debounce))

	stopListeners := app.serve()
	defer stopListeners()

	model := NewModel(ctx, app.Session, app.Stats)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return err
	}

	app.Logger.Info("session ended", zap.Any("stats", app.Stats.Snapshot()))
	return nil
}
