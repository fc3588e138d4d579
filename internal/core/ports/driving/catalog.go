package driving

import (
	"context"

	"github.com/custodia-labs/shelf/internal/core/domain"
)

// CatalogPipeline builds the catalog from the export and re-applies single
// stages to an existing catalog. Every run returns its summary, including
// runs that fail after the summary was started.
type CatalogPipeline interface {
	// Build runs the full pipeline from the export and replaces the catalog.
	// Returns domain.ErrSourceMissing before any write if the export is absent.
	Build(ctx context.Context) (*domain.RunSummary, error)

	// Renormalise re-cleans titles and descriptions of the existing catalog.
	Renormalise(ctx context.Context) (*domain.RunSummary, error)

	// Recategorise reclassifies every product of the existing catalog.
	Recategorise(ctx context.Context) (*domain.RunSummary, error)

	// Refine reclassifies products already filed under department with that
	// department's refinement rules.
	Refine(ctx context.Context, department string) (*domain.RunSummary, error)

	// ResolveImages re-reconciles image references of the existing catalog.
	ResolveImages(ctx context.Context) (*domain.RunSummary, error)

	// LastRun returns the most recent recorded run.
	LastRun(ctx context.Context) (*domain.RunSummary, error)
}
