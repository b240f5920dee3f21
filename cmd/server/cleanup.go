package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lionwox/blogging-platform-api/internal/config"
	"github.com/lionwox/blogging-platform-api/internal/db"
	"github.com/lionwox/blogging-platform-api/internal/logging"
	"github.com/lionwox/blogging-platform-api/internal/repository"
)

func newCleanupTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-tokens",
		Short: "Delete expired refresh tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCleanupTokens(cmd.Context())
		},
	}
}

func runCleanupTokens(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	logger, logShutdown, err := logging.Init(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logShutdown(context.Background()) }()

	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	swept, err := repository.NewRefreshTokenRepository(gdb).CleanupExpired(ctx)
	if err != nil {
		return err
	}
	logger.Info("expired refresh tokens removed", "count", swept)
	return nil
}
