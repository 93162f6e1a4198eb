package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"lexscribe/cmd/lexscribe/cmd/export"
	"lexscribe/cmd/lexscribe/cmd/poll"
	"lexscribe/cmd/lexscribe/cmd/serve"
	"lexscribe/cmd/lexscribe/cmd/sweep"
	"lexscribe/cmd/lexscribe/cmd/version"
	"lexscribe/cmd/lexscribe/cmd/worker"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lexscribe",
	Short: "Transcription service for legal meeting recordings",
	Long: `Transcription service for legal meeting recordings.
- serve runs the HTTP API together with the status poller and retention sweeper
- worker runs the Temporal job tracking worker on its own
- poll and sweep run a single background cycle, for cron or debugging
- export writes a user's transcriptions to an xlsx workbook`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(poll.Cmd)
	rootCmd.AddCommand(sweep.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(worker.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
