// Command shelf turns a chat export into a storefront catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/shelf/internal/adapters/driven/config/file"
	"github.com/custodia-labs/shelf/internal/adapters/driven/config/vocabulary"
	"github.com/custodia-labs/shelf/internal/adapters/driven/media/filesystem"
	"github.com/custodia-labs/shelf/internal/adapters/driven/metrics"
	"github.com/custodia-labs/shelf/internal/adapters/driven/publish/gcs"
	"github.com/custodia-labs/shelf/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/shelf/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/shelf/internal/adapters/driving/cli"
	"github.com/custodia-labs/shelf/internal/classifiers/garbage"
	"github.com/custodia-labs/shelf/internal/core/domain"
	"github.com/custodia-labs/shelf/internal/core/ports/driven"
	"github.com/custodia-labs/shelf/internal/core/services"
	"github.com/custodia-labs/shelf/internal/logger"
	"github.com/custodia-labs/shelf/internal/normalisers/text"
	"github.com/custodia-labs/shelf/internal/reconciler"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

func main() {
	cli.SetVersion(version)
	cli.SetWire(wire)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// wire builds the services for one command from the config file and flags.
func wire(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		p, err := file.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("locate config: %w", err)
		}
		configPath = p
	}

	configStore, err := file.NewConfigStore(configPath)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	if opts.SettingsOnly {
		return &cli.Services{Settings: settingsService}, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	applyOverrides(settings, opts)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	vocab, err := vocabulary.Load(settings.VocabularyPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	db, err := sqlite.NewStore(settings.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	publisher, err := newPublisher(ctx, settings.Upload)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	images := reconciler.New(
		filesystem.NewResolver(settings.Export.MediaDir, settings.Export.MediaPrefixes...),
		filesystem.NewStore(settings.Catalog.CanonicalDir, settings.Catalog.PublicPrefix),
		reconciler.WithPublisher(publisher),
		reconciler.WithLedger(db.UploadLedger()),
		reconciler.WithUploadOptions(reconciler.UploadOptions{
			Folder:        settings.Upload.Folder,
			Concurrency:   settings.Upload.Concurrency,
			RatePerSecond: settings.Upload.RatePerSecond,
			Retries:       settings.Upload.Retries,
			RetryBackoff:  settings.Upload.RetryBackoff,
		}),
	)

	var observers []driven.RunObserver
	if settings.MetricsTextfile != "" {
		observers = append(observers, metrics.NewRegistry(settings.MetricsTextfile))
	}

	builder := services.NewCatalogBuilder(
		filesystem.NewExport(settings.Export.Path, settings.Export.MediaDir),
		jsonfile.NewCatalogStore(settings.Catalog.Path, settings.Catalog.BackupDir),
		images,
		services.WithNormaliser(text.New(text.WithAddresses(settings.Addresses...))),
		services.WithGarbageClassifier(garbage.New(settings.Filter.MinTitleLength, settings.Filter.Blacklist...)),
		services.WithVocabulary(vocab),
		services.WithRunStore(db.RunStore()),
		services.WithObservers(observers...),
	)

	watcher := filesystem.NewWatcher(settings.Export.Path, filesystem.DefaultDebounce)
	logger.Debug("wired pipeline: export=%s catalog=%s ledger=%s", settings.Export.Path, settings.Catalog.Path, db.Path())

	return &cli.Services{
		Pipeline: builder,
		Settings: settingsService,
		Changes:  watcher,
		Close: func() error {
			return errors.Join(watcher.Close(), db.Close())
		},
	}, nil
}

// applyOverrides layers the path flags over the configured settings.
func applyOverrides(s *domain.Settings, opts cli.Options) {
	if opts.ExportPath != "" {
		s.Export.Path = opts.ExportPath
	}
	if opts.MediaDir != "" {
		s.Export.MediaDir = opts.MediaDir
	}
	if opts.CatalogPath != "" {
		s.Catalog.Path = opts.CatalogPath
	}
}

// newPublisher returns nil when uploads are disabled.
func newPublisher(ctx context.Context, u domain.UploadSettings) (driven.Publisher, error) {
	switch u.Provider {
	case domain.UploadProviderGCS:
		p, err := gcs.New(ctx, gcs.Config{
			Bucket:          u.Bucket,
			CredentialsFile: u.CredentialsFile,
			PublicBaseURL:   u.PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create publisher: %w", err)
		}
		return p, nil
	default:
		return nil, nil
	}
}
