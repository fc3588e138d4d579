package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/shelf/internal/core/domain"
	"github.com/custodia-labs/shelf/internal/core/ports/driven"
	"github.com/custodia-labs/shelf/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyExportPath       = "export.path"
	keyExportMediaDir   = "export.media_dir"
	keyExportPrefixes   = "export.media_prefixes"
	keyCatalogPath      = "catalog.path"
	keyCatalogBackupDir = "catalog.backup_dir"
	keyCanonicalDir     = "catalog.canonical_dir"
	keyPublicPrefix     = "catalog.public_prefix"
	keyMinTitleLength   = "filter.min_title_length"
	keyBlacklist        = "filter.blacklist"
	keyAddresses        = "normalise.addresses"
	keyUploadProvider   = "upload.provider"
	keyUploadBucket     = "upload.bucket"
	keyUploadCreds      = "upload.credentials_file"
	keyUploadFolder     = "upload.folder"
	keyUploadPublicURL  = "upload.public_base_url"
	keyUploadWorkers    = "upload.concurrency"
	keyUploadRate       = "upload.rate_per_second"
	keyUploadRetries    = "upload.retries"
	keyUploadBackoff    = "upload.retry_backoff"
	keyLedgerPath       = "ledger.path"
	keyMetricsTextfile  = "metrics.textfile"
	keyVocabularyPath   = "vocabulary.path"
)

var knownKeys = []string{
	keyExportPath, keyExportMediaDir, keyExportPrefixes,
	keyCatalogPath, keyCatalogBackupDir, keyCanonicalDir, keyPublicPrefix,
	keyMinTitleLength, keyBlacklist, keyAddresses,
	keyUploadProvider, keyUploadBucket, keyUploadCreds, keyUploadFolder, keyUploadPublicURL,
	keyUploadWorkers, keyUploadRate, keyUploadRetries, keyUploadBackoff,
	keyLedgerPath, keyMetricsTextfile, keyVocabularyPath,
}

// SettingsService reads pipeline settings from the config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Absent keys keep their defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	backoff := d.Upload.RetryBackoff
	if raw := s.configStore.GetString(keyUploadBackoff); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, keyUploadBackoff, err)
		}
		backoff = parsed
	}

	settings := &domain.Settings{
		Export: domain.ExportSettings{
			Path:          s.getString(keyExportPath, d.Export.Path),
			MediaDir:      s.getString(keyExportMediaDir, d.Export.MediaDir),
			MediaPrefixes: s.getStrings(keyExportPrefixes, d.Export.MediaPrefixes),
		},
		Catalog: domain.CatalogSettings{
			Path:         s.getString(keyCatalogPath, d.Catalog.Path),
			BackupDir:    s.getString(keyCatalogBackupDir, d.Catalog.BackupDir),
			CanonicalDir: s.getString(keyCanonicalDir, d.Catalog.CanonicalDir),
			PublicPrefix: s.getString(keyPublicPrefix, d.Catalog.PublicPrefix),
		},
		Filter: domain.FilterSettings{
			MinTitleLength: s.getInt(keyMinTitleLength, d.Filter.MinTitleLength),
			Blacklist:      s.getStrings(keyBlacklist, d.Filter.Blacklist),
		},
		Addresses: s.getStrings(keyAddresses, d.Addresses),
		Upload: domain.UploadSettings{
			Provider:        domain.UploadProvider(s.configStore.GetString(keyUploadProvider)),
			Bucket:          s.configStore.GetString(keyUploadBucket),
			CredentialsFile: s.configStore.GetString(keyUploadCreds),
			Folder:          s.configStore.GetString(keyUploadFolder),
			PublicBaseURL:   s.configStore.GetString(keyUploadPublicURL),
			Concurrency:     s.getInt(keyUploadWorkers, d.Upload.Concurrency),
			RatePerSecond:   s.getFloat(keyUploadRate, d.Upload.RatePerSecond),
			Retries:         s.getInt(keyUploadRetries, d.Upload.Retries),
			RetryBackoff:    backoff,
		},
		LedgerPath:      s.configStore.GetString(keyLedgerPath),
		MetricsTextfile: s.configStore.GetString(keyMetricsTextfile),
		VocabularyPath:  s.configStore.GetString(keyVocabularyPath),
	}

	if settings.Upload.Provider == "none" {
		settings.Upload.Provider = domain.UploadProviderNone
	}

	return settings, nil
}

// Save persists settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyExportPath, settings.Export.Path},
		{keyExportMediaDir, settings.Export.MediaDir},
		{keyExportPrefixes, settings.Export.MediaPrefixes},
		{keyCatalogPath, settings.Catalog.Path},
		{keyCatalogBackupDir, settings.Catalog.BackupDir},
		{keyCanonicalDir, settings.Catalog.CanonicalDir},
		{keyPublicPrefix, settings.Catalog.PublicPrefix},
		{keyMinTitleLength, settings.Filter.MinTitleLength},
		{keyBlacklist, settings.Filter.Blacklist},
		{keyAddresses, settings.Addresses},
		{keyUploadProvider, settings.Upload.Provider.String()},
		{keyUploadBucket, settings.Upload.Bucket},
		{keyUploadCreds, settings.Upload.CredentialsFile},
		{keyUploadFolder, settings.Upload.Folder},
		{keyUploadPublicURL, settings.Upload.PublicBaseURL},
		{keyUploadWorkers, settings.Upload.Concurrency},
		{keyUploadRate, settings.Upload.RatePerSecond},
		{keyUploadRetries, settings.Upload.Retries},
		{keyUploadBackoff, settings.Upload.RetryBackoff.String()},
		{keyLedgerPath, settings.LedgerPath},
		{keyMetricsTextfile, settings.MetricsTextfile},
		{keyVocabularyPath, settings.VocabularyPath},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set stores a single known key.
func (s *SettingsService) Set(key string, value any) error {
	if !isKnownKey(key) {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists recognised configuration keys.
func (s *SettingsService) Keys() []string {
	out := append([]string(nil), knownKeys...)
	sort.Strings(out)
	return out
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func isKnownKey(key string) bool {
	for _, k := range knownKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}
