package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lexscribe/cmd/lexscribe/cmd/bootstrap"
)

var (
	shutdownTimeout time.Duration
	noWorkers       bool
)

func init() {
	Cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "time allowed for in-flight requests on shutdown")
	Cmd.Flags().BoolVar(&noWorkers, "no-workers", false, "serve the API without the poller, sweeper and tracking worker")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background workers",
	Long: `Run the HTTP API and background workers

- The status poller advances in-flight jobs every POLL_INTERVAL
- The retention sweeper deletes expired jobs every SWEEP_INTERVAL
- With TEMPORAL_HOST set, a Temporal worker runs the per-job tracking workflows
- SIGINT or SIGTERM drains in-flight requests before exiting`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, cleanup, err := bootstrap.Build(ctx, cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if !noWorkers {
			a.Poller.Start(ctx)
			a.Sweeper.Start(ctx)
			defer a.Poller.Stop()
			defer a.Sweeper.Stop()

			if a.TrackingWorker != nil {
				if err := a.TrackingWorker.Start(); err != nil {
					return err
				}
				defer a.TrackingWorker.Stop()
			}
		}

		errCh := a.Server.Start()
		select {
		case err, ok := <-errCh:
			if ok && err != nil {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		a.Logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("Graceful shutdown failed", zap.Error(err))
			return err
		}
		return nil
	},
}
