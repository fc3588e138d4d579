package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shelf/internal/core/domain"
)

var summaryJSON bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the summary of the last run",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print the summary as JSON")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	if err := requirePipeline(); err != nil {
		return err
	}

	summary, err := pipeline.LastRun(cmd.Context())
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Println("No runs recorded yet.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load last run: %w", err)
	}

	if summaryJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	renderSummary(cmd.OutOrStdout(), summary)
	return nil
}
