package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/shelf/internal/classifiers/category"
	"github.com/custodia-labs/shelf/internal/classifiers/garbage"
	"github.com/custodia-labs/shelf/internal/core/domain"
	"github.com/custodia-labs/shelf/internal/core/ports/driven"
	"github.com/custodia-labs/shelf/internal/core/ports/driving"
	"github.com/custodia-labs/shelf/internal/extractors"
	"github.com/custodia-labs/shelf/internal/logger"
	"github.com/custodia-labs/shelf/internal/normalisers/text"
	"github.com/custodia-labs/shelf/internal/reconciler"
	"github.com/custodia-labs/shelf/internal/segmenter"
)

// Ensure CatalogBuilder implements the interface.
var _ driving.CatalogPipeline = (*CatalogBuilder)(nil)

// BuilderOption configures a CatalogBuilder.
type BuilderOption func(*CatalogBuilder)

// WithNormaliser replaces the default text normaliser.
func WithNormaliser(n *text.Normaliser) BuilderOption {
	return func(b *CatalogBuilder) { b.normaliser = n }
}

// WithGarbageClassifier replaces the default garbage classifier.
func WithGarbageClassifier(c *garbage.Classifier) BuilderOption {
	return func(b *CatalogBuilder) { b.garbage = c }
}

// WithVocabulary sets the storefront vocabulary used by the category classifiers.
func WithVocabulary(v *domain.Vocabulary) BuilderOption {
	return func(b *CatalogBuilder) { b.vocab = v }
}

// WithRunStore records every finished run.
func WithRunStore(s driven.RunStore) BuilderOption {
	return func(b *CatalogBuilder) { b.runs = s }
}

// WithObservers adds run observers such as metrics exporters.
func WithObservers(observers ...driven.RunObserver) BuilderOption {
	return func(b *CatalogBuilder) { b.observers = append(b.observers, observers...) }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *CatalogBuilder) { b.now = now }
}

// WithRunIDs overrides run id generation.
func WithRunIDs(next func() string) BuilderOption {
	return func(b *CatalogBuilder) { b.newRunID = next }
}

// CatalogBuilder turns a chat export into a catalog and re-applies single
// stages to an existing catalog.
type CatalogBuilder struct {
	export     driven.ExportSource
	catalog    driven.CatalogStore
	images     *reconciler.Reconciler
	normaliser *text.Normaliser
	garbage    *garbage.Classifier
	categories *category.Classifier
	vocab      *domain.Vocabulary
	runs       driven.RunStore
	observers  []driven.RunObserver
	now        func() time.Time
	newRunID   func() string
}

// NewCatalogBuilder creates a builder. Run history and observers are optional.
func NewCatalogBuilder(
	export driven.ExportSource,
	catalog driven.CatalogStore,
	images *reconciler.Reconciler,
	opts ...BuilderOption,
) *CatalogBuilder {
	b := &CatalogBuilder{
		export:     export,
		catalog:    catalog,
		images:     images,
		normaliser: text.New(),
		garbage:    garbage.New(0),
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.vocab == nil {
		b.vocab = domain.DefaultVocabulary()
	}
	b.categories = category.Default(b.vocab)
	return b
}

// candidate is a product that passed the garbage filter but has no images yet.
type candidate struct {
	product domain.Product
	refs    []string
}

// Build runs the full pipeline: segment, filter, extract, assign ids,
// reconcile images, drop products without media, classify and write.
func (b *CatalogBuilder) Build(ctx context.Context) (*domain.RunSummary, error) {
	summary := b.start(domain.StageBuild)

	if err := b.export.Check(); err != nil {
		return summary, err
	}

	msgs, err := b.parse(summary)
	if err != nil {
		return summary, err
	}

	drafts, st := segmenter.Segment(msgs)
	summary.Drafts = len(drafts)
	summary.OrphanBlocks = st.Orphans
	summary.FlaggedBlocks = st.Flagged
	for _, d := range drafts {
		for _, id := range d.Flagged {
			logger.WarnWith(logger.Fields{"block": id, "group": d.SourceID},
				"continuation is not contiguous with its group")
		}
	}
	logger.Info("Segmented %d blocks into %d drafts (%d orphan, %d inert)",
		len(msgs), len(drafts), st.Orphans, st.Inert)

	previous, err := b.catalog.Load(ctx)
	if err != nil && !errors.Is(err, domain.ErrCatalogMissing) {
		return summary, fmt.Errorf("load previous catalog: %w", err)
	}

	candidates := b.extract(drafts, summary)

	keys := make([]idKey, len(candidates))
	for i, c := range candidates {
		keys[i] = idKey{sourceID: c.product.SourceID, title: c.product.Title}
	}
	ids := newIDAllocator(previous, b.now()).assignAll(keys)

	items := make([]reconciler.Item, len(candidates))
	for i := range candidates {
		candidates[i].product.ID = ids[i]
		items[i] = reconciler.Item{ProductID: ids[i], Refs: candidates[i].refs}
	}

	results, stats, err := b.images.Reconcile(ctx, items)
	recordImages(summary, stats)
	if err != nil {
		return summary, fmt.Errorf("reconcile images: %w", err)
	}

	products := make([]domain.Product, 0, len(candidates))
	for i, c := range candidates {
		p := c.product
		p.Images = results[i].Images
		if !p.HasImage() {
			summary.Drop(domain.DropNoMedia)
			logger.WarnWith(logger.Fields{"block": p.SourceID, "product": p.ID},
				"dropped: no image could be resolved")
			continue
		}
		cls := b.categories.Classify(p.Title, p.Description)
		p.Category = cls.Category
		p.Department = cls.Department
		p.Normalise()
		products = append(products, p)
	}
	summary.ProductsIngested = len(products)

	if err := b.write(ctx, summary, products); err != nil {
		return summary, err
	}
	return b.complete(ctx, summary), nil
}

// parse reads the export. Unparseable blocks are logged and counted.
func (b *CatalogBuilder) parse(summary *domain.RunSummary) ([]domain.RawMessage, error) {
	rc, err := b.export.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	msgs, errs := segmenter.ParseExport(rc)
	if msgs == nil && len(errs) == 1 && !errors.Is(errs[0], domain.ErrRecordUnparseable) {
		return nil, errs[0]
	}

	summary.BlocksParsed = len(msgs)
	summary.BlocksUnparseable = len(errs)
	for _, e := range errs {
		logger.Warn("%v", e)
	}
	return msgs, nil
}

// extract filters garbage and pulls fields out of each draft.
// Spam markers are checked on the full text so stripping cannot hide them.
func (b *CatalogBuilder) extract(drafts []domain.Draft, summary *domain.RunSummary) []candidate {
	out := make([]candidate, 0, len(drafts))
	for _, d := range drafts {
		plain := text.StripMarkup(text.DecodeEntities(d.Text))
		fields := extractors.Extract(plain)
		if len(fields.Ambiguous) > 0 {
			logger.DebugWith(logger.Fields{"block": d.SourceID}, "%v: %s",
				domain.ErrExtractionAmbiguous, strings.Join(fields.Ambiguous, ", "))
		}

		description := b.normaliser.Normalise(fields.Stripped)
		title := b.normaliser.Title(description)

		verdict := b.garbage.Classify(garbage.Record{
			Title:       title,
			Description: plain,
			Images:      len(d.PhotoRefs),
		})
		if verdict.Garbage {
			summary.Drop(verdict.Reason)
			logger.DebugWith(logger.Fields{"block": d.SourceID, "reason": verdict.Reason, "marker": verdict.Marker},
				"dropped as garbage")
			continue
		}

		out = append(out, candidate{
			product: domain.Product{
				SourceID:       d.SourceID,
				Title:          title,
				Description:    description,
				Price:          fields.Price,
				SellerPhone:    fields.Phone,
				TelegramHandle: fields.Handle,
			},
			refs: d.PhotoRefs,
		})
	}
	return out
}

// Renormalise re-cleans titles and descriptions.
func (b *CatalogBuilder) Renormalise(ctx context.Context) (*domain.RunSummary, error) {
	return b.rewrite(ctx, domain.StageRenormalise, func(_ context.Context, products []domain.Product, _ *domain.RunSummary) (int, error) {
		changed := 0
		for i := range products {
			p := &products[i]
			description := b.normaliser.Normalise(p.Description)
			title := b.normaliser.Title(b.normaliser.Normalise(p.Title))
			if title == "" {
				title = b.normaliser.Title(description)
			}
			if title == "" {
				title = p.Title
			}
			if title != p.Title || description != p.Description {
				p.Title = title
				p.Description = description
				changed++
			}
		}
		return changed, nil
	})
}

// Recategorise reclassifies every product.
func (b *CatalogBuilder) Recategorise(ctx context.Context) (*domain.RunSummary, error) {
	return b.rewrite(ctx, domain.StageRecategorise, func(_ context.Context, products []domain.Product, _ *domain.RunSummary) (int, error) {
		return b.categories.Apply(products), nil
	})
}

// Refine reclassifies products in department with its refinement rules.
// Products no refinement rule matches keep their category.
func (b *CatalogBuilder) Refine(ctx context.Context, department string) (*domain.RunSummary, error) {
	rules, ok := category.RefineRules(department)
	if !ok {
		return nil, fmt.Errorf("%w: no refinement rules for department %q (known: %s)",
			domain.ErrInvalidInput, department, strings.Join(category.RefinableDepartments(), ", "))
	}
	refiner := category.New(rules, b.vocab)

	return b.rewrite(ctx, domain.StageRefine, func(_ context.Context, products []domain.Product, _ *domain.RunSummary) (int, error) {
		return category.Refine(products, department, refiner), nil
	})
}

// ResolveImages re-reconciles image references. A product that would be
// left without images keeps its previous list.
func (b *CatalogBuilder) ResolveImages(ctx context.Context) (*domain.RunSummary, error) {
	return b.rewrite(ctx, domain.StageResolveImages, func(ctx context.Context, products []domain.Product, summary *domain.RunSummary) (int, error) {
		items := make([]reconciler.Item, len(products))
		for i, p := range products {
			items[i] = reconciler.Item{ProductID: p.ID, Refs: p.Images}
		}

		results, stats, err := b.images.Reconcile(ctx, items)
		recordImages(summary, stats)
		if err != nil {
			return 0, fmt.Errorf("reconcile images: %w", err)
		}

		changed := 0
		for i := range products {
			images := results[i].Images
			if len(images) == 0 {
				logger.WarnWith(logger.Fields{"product": products[i].ID},
					"no image could be resolved, keeping previous images")
				continue
			}
			if !slices.Equal(images, products[i].Images) {
				products[i].Images = images
				changed++
			}
		}
		return changed, nil
	})
}

// LastRun returns the most recent recorded run.
func (b *CatalogBuilder) LastRun(ctx context.Context) (*domain.RunSummary, error) {
	if b.runs == nil {
		return nil, fmt.Errorf("%w: run history is not configured", domain.ErrNotFound)
	}
	return b.runs.LatestRun(ctx)
}

// pass applies one stage to a loaded catalog and returns how many products changed.
type pass func(ctx context.Context, products []domain.Product, summary *domain.RunSummary) (int, error)

// rewrite loads the catalog, applies one stage and writes it back.
// An unchanged catalog is not rewritten.
func (b *CatalogBuilder) rewrite(ctx context.Context, stage domain.Stage, apply pass) (*domain.RunSummary, error) {
	summary := b.start(stage)

	products, err := b.catalog.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("load catalog: %w", err)
	}

	changed, err := apply(ctx, products, summary)
	if err != nil {
		return summary, err
	}
	summary.ProductsIngested = len(products)
	summary.ProductsChanged = changed

	if changed == 0 {
		logger.Info("No product changed, %s left untouched", b.catalog.Path())
		return b.complete(ctx, summary), nil
	}
	if err := b.write(ctx, summary, products); err != nil {
		return summary, err
	}
	return b.complete(ctx, summary), nil
}

// start opens a run summary.
func (b *CatalogBuilder) start(stage domain.Stage) *domain.RunSummary {
	summary := domain.NewRunSummary(b.newRunID(), stage, b.now().UTC())
	logger.Section(string(stage))
	logger.Debug("Run %s started", summary.RunID)
	return summary
}

// write backs up the current catalog and replaces it. A cancelled context
// stops the run before anything is written.
func (b *CatalogBuilder) write(ctx context.Context, summary *domain.RunSummary, products []domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}

	backup, err := b.catalog.Backup(ctx, summary.RunID)
	if err != nil {
		return fmt.Errorf("backup catalog: %w", err)
	}
	summary.Backup = backup
	if backup != "" {
		logger.Info("Backed up catalog to %s", backup)
	}

	if err := b.catalog.Save(ctx, products); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	logger.Info("Wrote %d products to %s", len(products), b.catalog.Path())
	return nil
}

// complete stamps the run and hands it to the run store and observers.
// Their failures are logged; the catalog is already written.
func (b *CatalogBuilder) complete(ctx context.Context, summary *domain.RunSummary) *domain.RunSummary {
	summary.Finish(b.now())
	ctx = context.WithoutCancel(ctx)

	if b.runs != nil {
		if err := b.runs.SaveRun(ctx, summary); err != nil {
			logger.Warn("record run %s: %v", summary.RunID, err)
		}
	}
	for _, o := range b.observers {
		if err := o.Observe(summary); err != nil {
			logger.Warn("observe run %s: %v", summary.RunID, err)
		}
	}
	return summary
}

func recordImages(s *domain.RunSummary, st reconciler.Stats) {
	s.ImagesResolved += st.Resolved
	s.ImagesUnresolved += st.Unresolved
	s.UploadsOK += st.UploadsOK
	s.UploadsCached += st.UploadsCached
	s.UploadsFailed += st.UploadsFailed
}
