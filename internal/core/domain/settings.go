package domain

import (
	"fmt"
	"time"
)

// UploadProvider identifies a remote object storage backend.
type UploadProvider string

// Available upload providers.
const (
	// UploadProviderNone keeps images on local public paths.
	UploadProviderNone UploadProvider = ""

	// UploadProviderGCS uploads to a Google Cloud Storage bucket.
	UploadProviderGCS UploadProvider = "gcs"
)

// IsValid returns true if the provider is recognised.
func (p UploadProvider) IsValid() bool {
	switch p {
	case UploadProviderNone, UploadProviderGCS:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p UploadProvider) String() string {
	if p == UploadProviderNone {
		return "none"
	}
	return string(p)
}

// ExportSettings locate the chat export.
type ExportSettings struct {
	Path          string
	MediaDir      string
	MediaPrefixes []string
}

// CatalogSettings locate the catalog document and its media area.
type CatalogSettings struct {
	Path         string
	BackupDir    string
	CanonicalDir string
	PublicPrefix string
}

// FilterSettings tune the garbage classifier.
type FilterSettings struct {
	MinTitleLength int
	Blacklist      []string
}

// UploadSettings configure the optional remote publisher.
type UploadSettings struct {
	Provider        UploadProvider
	Bucket          string
	CredentialsFile string
	Folder          string
	PublicBaseURL   string
	Concurrency     int
	RatePerSecond   float64
	Retries         int
	RetryBackoff    time.Duration
}

// Enabled reports whether uploads should be attempted.
func (u UploadSettings) Enabled() bool {
	return u.Provider != UploadProviderNone
}

// Settings is the complete pipeline configuration.
type Settings struct {
	Export     ExportSettings
	Catalog    CatalogSettings
	Filter     FilterSettings
	Addresses  []string
	Upload     UploadSettings
	LedgerPath string
	// MetricsTextfile, when set, receives the run metrics in Prometheus text format.
	MetricsTextfile string
	VocabularyPath  string
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Export: ExportSettings{
			Path:          "export/messages.html",
			MediaDir:      "export",
			MediaPrefixes: []string{"photos/"},
		},
		Catalog: CatalogSettings{
			Path:         "catalog.json",
			BackupDir:    "backups",
			CanonicalDir: "canonical",
			PublicPrefix: "canonical",
		},
		Filter: FilterSettings{
			MinTitleLength: 3,
		},
		Upload: UploadSettings{
			Concurrency:   4,
			RatePerSecond: 5,
			Retries:       3,
			RetryBackoff:  500 * time.Millisecond,
		},
	}
}

// Validate checks that the settings are internally consistent.
func (s Settings) Validate() error {
	if s.Catalog.Path == "" {
		return fmt.Errorf("%w: catalog path is required", ErrInvalidInput)
	}
	if s.Filter.MinTitleLength < 0 {
		return fmt.Errorf("%w: min title length must not be negative", ErrInvalidInput)
	}
	if !s.Upload.Provider.IsValid() {
		return fmt.Errorf("%w: upload provider %q", ErrUnsupportedType, s.Upload.Provider)
	}
	if s.Upload.Enabled() && s.Upload.Bucket == "" {
		return fmt.Errorf("%w: upload bucket is required for provider %s", ErrInvalidInput, s.Upload.Provider)
	}
	if s.Upload.Concurrency < 1 {
		return fmt.Errorf("%w: upload concurrency must be at least 1", ErrInvalidInput)
	}
	return nil
}
