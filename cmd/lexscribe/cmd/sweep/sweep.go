package sweep

import (
	"fmt"

	"github.com/spf13/cobra"

	"lexscribe/cmd/lexscribe/cmd/bootstrap"
)

// Cmd represents the sweep command
var Cmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete jobs whose retention period has ended",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := bootstrap.Build(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := a.Sweeper.Sweep(cmd.Context())
		fmt.Printf("deleted %d expired jobs\n", n)
		return err
	},
}
