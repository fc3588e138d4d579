package driven

import (
	"context"

	"github.com/custodia-labs/shelf/internal/core/domain"
)

// CatalogStore persists the catalog document.
type CatalogStore interface {
	// Exists reports whether a catalog has been written before.
	Exists() bool

	// Load reads the full catalog in document order.
	// Returns domain.ErrCatalogMissing if no catalog exists.
	Load(ctx context.Context) ([]domain.Product, error)

	// Save replaces the catalog atomically. A failed save leaves the previous catalog intact.
	Save(ctx context.Context, products []domain.Product) error

	// Backup copies the current catalog aside and returns the backup path.
	// Returns an empty path and no error when there is nothing to back up.
	Backup(ctx context.Context, runID string) (string, error)

	// Path returns the catalog file path.
	Path() string
}

// RunStore records run summaries.
type RunStore interface {
	// SaveRun stores a finished run summary.
	SaveRun(ctx context.Context, summary *domain.RunSummary) error

	// LatestRun returns the most recent run summary.
	// Returns domain.ErrNotFound when no run has been recorded.
	LatestRun(ctx context.Context) (*domain.RunSummary, error)
}

// RunObserver receives the summary of each finished run (metrics exporters).
type RunObserver interface {
	Observe(summary *domain.RunSummary) error
}
