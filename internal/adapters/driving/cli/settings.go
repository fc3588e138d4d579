package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var configSetList bool

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Manage configuration",
	Long:        `View and change the settings stored in the config file.`,
	Annotations: map[string]string{settingsOnly: "true"},
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current settings",
	Annotations: map[string]string{settingsOnly: "true"},
	RunE:        runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration key",
	Long: `Sets one configuration key. Numbers and booleans are stored as such;
use --list for comma separated lists (export.media_prefixes, filter.blacklist,
normalise.addresses).`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{settingsOnly: "true"},
	RunE:        runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:         "keys",
	Short:       "List configuration keys",
	Annotations: map[string]string{settingsOnly: "true"},
	RunE:        runConfigKeys,
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write the default settings to the config file",
	Annotations: map[string]string{settingsOnly: "true"},
	RunE:        runConfigInit,
}

func init() {
	configSetCmd.Flags().BoolVar(&configSetList, "list", false, "store the value as a comma separated list")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Export]")
	cmd.Printf("  Path: %s\n", settings.Export.Path)
	cmd.Printf("  Media dir: %s\n", settings.Export.MediaDir)
	cmd.Printf("  Media prefixes: %s\n", listOrNone(settings.Export.MediaPrefixes))
	cmd.Println()

	cmd.Println("[Catalog]")
	cmd.Printf("  Path: %s\n", settings.Catalog.Path)
	cmd.Printf("  Backup dir: %s\n", settings.Catalog.BackupDir)
	cmd.Printf("  Canonical dir: %s\n", settings.Catalog.CanonicalDir)
	cmd.Printf("  Public prefix: %s\n", settings.Catalog.PublicPrefix)
	cmd.Println()

	cmd.Println("[Filter]")
	cmd.Printf("  Min title length: %d\n", settings.Filter.MinTitleLength)
	cmd.Printf("  Extra blacklist: %s\n", listOrNone(settings.Filter.Blacklist))
	cmd.Printf("  Store addresses: %s\n", listOrNone(settings.Addresses))
	cmd.Println()

	cmd.Println("[Upload]")
	cmd.Printf("  Provider: %s\n", settings.Upload.Provider)
	if settings.Upload.Enabled() {
		cmd.Printf("  Bucket: %s\n", settings.Upload.Bucket)
		cmd.Printf("  Folder: %s\n", valueOrNone(settings.Upload.Folder))
		cmd.Printf("  Credentials: %s\n", valueOrNone(settings.Upload.CredentialsFile))
		cmd.Printf("  Public base URL: %s\n", valueOrNone(settings.Upload.PublicBaseURL))
		cmd.Printf("  Concurrency: %d, rate: %g/s, retries: %d, backoff: %s\n",
			settings.Upload.Concurrency, settings.Upload.RatePerSecond,
			settings.Upload.Retries, settings.Upload.RetryBackoff)
	}
	cmd.Println()

	cmd.Println("[Other]")
	cmd.Printf("  Ledger: %s\n", valueOrNone(settings.LedgerPath))
	cmd.Printf("  Metrics textfile: %s\n", valueOrNone(settings.MetricsTextfile))
	cmd.Printf("  Vocabulary: %s\n", valueOrNone(settings.VocabularyPath))
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'shelf config set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	key, raw := args[0], args[1]
	if err := settingsService.Set(key, parseValue(raw, configSetList)); err != nil {
		return err
	}

	if _, err := settingsService.Get(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	cmd.Printf("Set %s = %s\n", key, raw)
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	defaults := settingsService.GetDefaults()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("write defaults: %w", err)
	}
	cmd.Println("Default settings written.")
	return nil
}

// parseValue converts a command line value to the type stored in the config file.
func parseValue(raw string, list bool) any {
	if list {
		out := []string{}
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
