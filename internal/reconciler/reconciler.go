package reconciler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/shelf/internal/core/domain"
	"github.com/custodia-labs/shelf/internal/core/ports/driven"
	"github.com/custodia-labs/shelf/internal/logger"
)

// Item is one product's photo references, in album order.
type Item struct {
	ProductID int64
	Refs      []string
}

// Result is the reconciled image list for an Item.
type Result struct {
	ProductID int64

	// Images are public paths or URLs in the order of Item.Refs.
	Images []string

	// Missing lists references with no file on disk.
	Missing []string
}

// Stats counts reconciliation outcomes for the run summary.
type Stats struct {
	Resolved      int
	Unresolved    int
	UploadsOK     int
	UploadsCached int
	UploadsFailed int
}

// UploadOptions tune the publishing phase.
type UploadOptions struct {
	// Folder is the remote folder images are published under.
	Folder string

	// Concurrency bounds the number of uploads in flight.
	Concurrency int

	// RatePerSecond paces upload starts. Zero means unpaced.
	RatePerSecond float64

	// Retries is the number of extra attempts per upload.
	Retries int

	// RetryBackoff is the delay before the first retry; it doubles per attempt.
	RetryBackoff time.Duration
}

// DefaultUploadOptions returns conservative upload settings.
func DefaultUploadOptions() UploadOptions {
	return UploadOptions{
		Concurrency:   4,
		RatePerSecond: 5,
		Retries:       3,
		RetryBackoff:  500 * time.Millisecond,
	}
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithPublisher enables remote publishing.
func WithPublisher(p driven.Publisher) Option {
	return func(r *Reconciler) { r.publisher = p }
}

// WithLedger remembers uploads across runs.
func WithLedger(l driven.UploadLedger) Option {
	return func(r *Reconciler) { r.ledger = l }
}

// WithUploadOptions overrides the upload settings.
func WithUploadOptions(o UploadOptions) Option {
	return func(r *Reconciler) { r.opts = o }
}

// Reconciler resolves, places and publishes product images.
type Reconciler struct {
	resolver  driven.MediaResolver
	store     driven.MediaStore
	publisher driven.Publisher
	ledger    driven.UploadLedger
	opts      UploadOptions
	limiter   *RateLimiter
	sleep     func(ctx context.Context, d time.Duration) error
}

// New creates a Reconciler. Without a publisher images keep their local public paths.
func New(resolver driven.MediaResolver, store driven.MediaStore, opts ...Option) *Reconciler {
	r := &Reconciler{
		resolver: resolver,
		store:    store,
		opts:     DefaultUploadOptions(),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.opts.Concurrency < 1 {
		r.opts.Concurrency = 1
	}
	r.limiter = NewRateLimiter(r.opts.RatePerSecond, r.opts.Concurrency)
	return r
}

// placement is a local file whose final image slot may be replaced by a URL.
type placement struct {
	item  int
	slot  int
	local string
}

// Reconcile resolves every item's references. Results are returned in item
// order and images in reference order. A reference with no file is skipped
// and counted; an upload that fails keeps the local public path.
func (r *Reconciler) Reconcile(ctx context.Context, items []Item) ([]Result, Stats, error) {
	var stats Stats
	results := make([]Result, len(items))
	var pending []placement

	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		res, placed, err := r.resolveItem(it, &stats)
		if err != nil {
			return nil, stats, err
		}
		for _, p := range placed {
			p.item = i
			pending = append(pending, p)
		}
		results[i] = res
	}

	if r.publisher != nil && len(pending) > 0 {
		if err := r.publishAll(ctx, pending, results, &stats); err != nil {
			return nil, stats, err
		}
	}

	return results, stats, nil
}

// resolveItem locates and places the references of one product.
func (r *Reconciler) resolveItem(it Item, stats *Stats) (Result, []placement, error) {
	res := Result{ProductID: it.ProductID, Images: []string{}}
	seen := make(map[string]bool, len(it.Refs))
	taken := make(map[string]bool, len(it.Refs))
	var placed []placement

	// Images already in canonical storage keep their names.
	for _, ref := range it.Refs {
		if _, ok := r.store.Local(ref); ok {
			taken[ref] = true
		}
	}

	for pos, ref := range it.Refs {
		if isRemote(ref) {
			if !seen[ref] {
				seen[ref] = true
				res.Images = append(res.Images, ref)
				stats.Resolved++
			}
			continue
		}

		if local, ok := r.store.Local(ref); ok {
			if !seen[local] {
				seen[local] = true
				placed = append(placed, placement{slot: len(res.Images), local: local})
				res.Images = append(res.Images, ref)
				stats.Resolved++
			}
			continue
		}

		local, ok := r.resolver.Resolve(ref)
		if !ok {
			res.Missing = append(res.Missing, ref)
			stats.Unresolved++
			logger.WarnWith(logger.Fields{"product": it.ProductID, "ref": ref}, "%v", domain.ErrMediaMissing)
			continue
		}
		if seen[local] {
			continue
		}
		seen[local] = true

		index := r.freeIndex(local, it.ProductID, pos, taken)
		canonical, public, err := r.store.Place(local, it.ProductID, index)
		if err != nil {
			return Result{}, nil, fmt.Errorf("place %s for product %d: %w", ref, it.ProductID, err)
		}
		taken[public] = true
		placed = append(placed, placement{slot: len(res.Images), local: canonical})
		res.Images = append(res.Images, public)
		stats.Resolved++
	}

	return res, placed, nil
}

// freeIndex returns the first index at or after pos whose public name is unused.
func (r *Reconciler) freeIndex(local string, productID int64, pos int, taken map[string]bool) int {
	for index := pos; ; index++ {
		if _, public := r.store.Name(local, productID, index); !taken[public] {
			return index
		}
	}
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
