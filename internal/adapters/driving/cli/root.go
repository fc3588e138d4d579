// Package cli implements the shelf command line.
//
// Commands talk to the core through driving ports held in package variables.
// The binary sets a Wire function that builds those ports from the global
// flags once they are parsed; tests assign the variables directly.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shelf/internal/core/ports/driving"
	"github.com/custodia-labs/shelf/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Options are the global flags.
type Options struct {
	ConfigPath  string
	Verbose     bool
	ExportPath  string
	MediaDir    string
	CatalogPath string

	// SettingsOnly asks for the settings service alone, so configuration
	// commands work even when the pipeline cannot be built.
	SettingsOnly bool
}

// ChangeSource reports changes to the export.
type ChangeSource interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
	Close() error
}

// Services are the ports the commands use.
type Services struct {
	Pipeline driving.CatalogPipeline
	Settings driving.SettingsService
	Changes  ChangeSource

	// Close releases resources such as the ledger database.
	Close func() error
}

// WireFunc builds services from the global options.
type WireFunc func(ctx context.Context, opts Options) (*Services, error)

var (
	opts Options
	wire WireFunc

	pipeline        driving.CatalogPipeline
	settingsService driving.SettingsService
	changeSource    ChangeSource
	closeServices   func() error
)

// Command annotations read by setup.
const (
	skipWire     = "skip-wire"
	settingsOnly = "settings-only"
)

var rootCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Turn a chat export into a storefront catalog",
	Long: `shelf reads an exported commerce channel (HTML transcript plus photos),
recovers products from the free text and writes a deduplicated JSON catalog.

Single stages can be re-applied to an existing catalog without rebuilding it.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.shelf/config.toml)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug and info messages")
	flags.StringVar(&opts.ExportPath, "export", "", "override export.path")
	flags.StringVar(&opts.MediaDir, "media-dir", "", "override export.media_dir")
	flags.StringVar(&opts.CatalogPath, "catalog", "", "override catalog.path")
}

// SetWire sets the function that builds services for each command.
func SetWire(fn WireFunc) {
	wire = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases the services it wired.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := teardown(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if cmd.Annotations[skipWire] == "true" || wire == nil {
		return nil
	}

	o := opts
	o.SettingsOnly = cmd.Annotations[settingsOnly] == "true"
	svc, err := wire(cmd.Context(), o)
	if err != nil {
		return err
	}
	pipeline = svc.Pipeline
	settingsService = svc.Settings
	changeSource = svc.Changes
	closeServices = svc.Close
	return nil
}

func teardown() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

func requirePipeline() error {
	if pipeline == nil {
		return errors.New("catalog pipeline not configured")
	}
	return nil
}
