package poll

import (
	"fmt"

	"github.com/spf13/cobra"

	"lexscribe/cmd/lexscribe/cmd/bootstrap"
)

// Cmd represents the poll command
var Cmd = &cobra.Command{
	Use:   "poll",
	Short: "Run one status polling cycle over in-flight jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := bootstrap.Build(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := a.Poller.Poll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("checked %d jobs: %d completed, %d failed, %d errors\n",
			result.Checked, result.Completed, result.Failed, result.Errors)
		return nil
	},
}
