package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shelf/internal/logger"
)

var watchSkipInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the catalog whenever the export changes",
	Long: `Builds the catalog, then watches the export file and rebuilds after each
burst of changes. A failed build is reported and watching continues.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchSkipInitial, "skip-initial", false, "wait for the first change before building")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := requirePipeline(); err != nil {
		return err
	}
	if changeSource == nil {
		return errors.New("export watcher not configured")
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	changes, err := changeSource.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch export: %w", err)
	}

	rebuild := func() {
		summary, err := pipeline.Build(ctx)
		if summary != nil {
			renderSummary(cmd.OutOrStdout(), summary)
		}
		if err != nil && ctx.Err() == nil {
			logger.Error(err, "build failed")
		}
	}

	if !watchSkipInitial {
		rebuild()
	}
	cmd.Println("Watching export for changes (Ctrl+C to stop)...")

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopped watching.")
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			cmd.Println("Export changed, rebuilding...")
			rebuild()
		}
	}
}
