package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shelf/internal/core/domain"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the catalog from the export",
	Long: `Parses the export, groups photo albums with their listing, drops spam,
extracts price and contacts, resolves images and writes the catalog.

An existing catalog is backed up before it is replaced. Interrupting the
build stops it before anything is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd, "Building catalog", func(ctx context.Context) (*domain.RunSummary, error) {
			return pipeline.Build(ctx)
		})
	},
}

var renormaliseCmd = &cobra.Command{
	Use:   "renormalise",
	Short: "Re-clean titles and descriptions of the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd, "Renormalising catalog", func(ctx context.Context) (*domain.RunSummary, error) {
			return pipeline.Renormalise(ctx)
		})
	},
}

var recategoriseCmd = &cobra.Command{
	Use:   "recategorise",
	Short: "Reclassify every product of the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd, "Recategorising catalog", func(ctx context.Context) (*domain.RunSummary, error) {
			return pipeline.Recategorise(ctx)
		})
	},
}

var refineCmd = &cobra.Command{
	Use:   "refine <department>",
	Short: "Refine categories within one department",
	Long: `Reclassifies only the products already filed under the department, using
that department's finer rules. Products no rule matches keep their category.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		department := args[0]
		return runStage(cmd, "Refining "+department, func(ctx context.Context) (*domain.RunSummary, error) {
			return pipeline.Refine(ctx, department)
		})
	},
}

var resolveImagesCmd = &cobra.Command{
	Use:   "resolve-images",
	Short: "Re-resolve and re-publish catalog images",
	Long: `Re-runs image reconciliation over the catalog. Products whose images can
no longer be found keep their previous list.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd, "Resolving images", func(ctx context.Context) (*domain.RunSummary, error) {
			return pipeline.ResolveImages(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(renormaliseCmd)
	rootCmd.AddCommand(recategoriseCmd)
	rootCmd.AddCommand(refineCmd)
	rootCmd.AddCommand(resolveImagesCmd)
}

// runStage runs one pipeline entry point with interrupt handling and prints its summary.
// A summary returned alongside an error is still printed.
func runStage(cmd *cobra.Command, title string, run func(context.Context) (*domain.RunSummary, error)) error {
	if err := requirePipeline(); err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	cmd.Printf("%s...\n", title)
	summary, err := run(ctx)
	if summary != nil {
		renderSummary(cmd.OutOrStdout(), summary)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", cmd.Name(), err)
	}
	return nil
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
