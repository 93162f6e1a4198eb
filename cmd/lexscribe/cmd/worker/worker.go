package worker

import (
	"errors"

	"github.com/spf13/cobra"
	sdkworker "go.temporal.io/sdk/worker"

	"lexscribe/cmd/lexscribe/cmd/bootstrap"
)

// Cmd represents the worker command
var Cmd = &cobra.Command{
	Use:   "worker",
	Short: "Run only the Temporal job tracking worker",
	Long: `Run only the Temporal job tracking worker

- Requires TEMPORAL_HOST
- Use it to scale status checks separately from the HTTP API (serve --no-workers)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := bootstrap.Build(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if a.TrackingWorker == nil {
			return errors.New("TEMPORAL_HOST is not set")
		}
		return a.TrackingWorker.Run(sdkworker.InterruptCh())
	},
}
