// Package bootstrap builds the application for a CLI command
package bootstrap

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lexscribe/internal/app"
	"lexscribe/internal/app/logging"
	"lexscribe/internal/config"
)

// Build loads configuration and assembles every component. The caller must
// invoke the returned cleanup, which also flushes the logger.
func Build(ctx context.Context, cmd *cobra.Command) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	logger, err := logging.NewLogger(logging.Options{
		Development: verbose || !cfg.IsProduction(),
		Level:       cfg.LogLevel,
	})
	if err != nil {
		return nil, nil, err
	}

	application, cleanup, err := app.InitializeApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", zap.Error(err))
		_ = logger.Sync()
		return nil, nil, err
	}

	return application, func() {
		cleanup()
		_ = logger.Sync()
	}, nil
}
