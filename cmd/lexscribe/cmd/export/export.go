package export

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lexscribe/cmd/lexscribe/cmd/bootstrap"
	"lexscribe/internal/api/v1/services"
	appexport "lexscribe/internal/app/export"
)

var userID string
var outputFilePath string

func init() {
	Cmd.Flags().StringVarP(&userID, "user", "u", "", "set the user id whose transcriptions are exported")
	Cmd.Flags().StringVarP(&outputFilePath, "outputFilePath", "o", "", "set outputFilePath (default transcriptions-<timestamp>.xlsx)")

	_ = Cmd.MarkFlagRequired("user")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's transcriptions to excel",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := bootstrap.Build(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if outputFilePath == "" {
			outputFilePath = appexport.FileName(time.Now())
		}
		f, err := os.Create(outputFilePath)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := services.NewExportService(a.Orchestrator).ExportTranscriptions(cmd.Context(), userID, f); err != nil {
			return err
		}
		fmt.Printf("export finished, exported file path: %v\n", outputFilePath)
		return nil
	},
}
