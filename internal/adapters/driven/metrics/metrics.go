// Package metrics exports run counters in the Prometheus text format.
//
// A batch run has no long-lived listener to scrape, so the registry is
// written to a textfile after each run for a node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/shelf/internal/core/domain"
	"github.com/custodia-labs/shelf/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.RunObserver = (*Registry)(nil)

// Registry holds the run metrics on a private prometheus registry.
type Registry struct {
	reg      *prometheus.Registry
	textfile string

	Runs             *prometheus.CounterVec
	ProductsIngested *prometheus.CounterVec
	ProductsChanged  *prometheus.CounterVec
	Dropped          *prometheus.CounterVec
	BlocksParsed     prometheus.Counter
	Unparseable      prometheus.Counter
	FlaggedBlocks    prometheus.Counter
	Images           *prometheus.CounterVec
	Uploads          *prometheus.CounterVec
	LastRunSeconds   *prometheus.GaugeVec
	LastRunTimestamp *prometheus.GaugeVec
}

// NewRegistry creates the metrics. When textfile is non-empty every
// observed run rewrites it.
func NewRegistry(textfile string) *Registry {
	r := prometheus.NewRegistry()

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_runs_total", Help: "Finished pipeline runs.",
	}, []string{"stage"})
	ingested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_products_ingested_total", Help: "Products written to the catalog.",
	}, []string{"stage"})
	changed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_products_changed_total", Help: "Products modified by a re-entry pass.",
	}, []string{"stage"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_products_dropped_total", Help: "Candidate products excluded from the catalog.",
	}, []string{"reason"})
	parsed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shelf_blocks_parsed_total", Help: "Export blocks parsed.",
	})
	unparseable := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shelf_blocks_unparseable_total", Help: "Export blocks skipped as unparseable.",
	})
	flagged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shelf_blocks_flagged_total", Help: "Non-contiguous continuation blocks.",
	})
	images := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_images_total", Help: "Image references by resolution result.",
	}, []string{"result"})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_uploads_total", Help: "Image uploads by result.",
	}, []string{"result"})
	lastSeconds := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shelf_last_run_duration_seconds", Help: "Duration of the last run.",
	}, []string{"stage"})
	lastTimestamp := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shelf_last_run_timestamp_seconds", Help: "Start time of the last run.",
	}, []string{"stage"})

	r.MustRegister(runs, ingested, changed, dropped, parsed, unparseable, flagged,
		images, uploads, lastSeconds, lastTimestamp)

	return &Registry{
		reg:              r,
		textfile:         textfile,
		Runs:             runs,
		ProductsIngested: ingested,
		ProductsChanged:  changed,
		Dropped:          dropped,
		BlocksParsed:     parsed,
		Unparseable:      unparseable,
		FlaggedBlocks:    flagged,
		Images:           images,
		Uploads:          uploads,
		LastRunSeconds:   lastSeconds,
		LastRunTimestamp: lastTimestamp,
	}
}

// Observe folds a finished run into the metrics and rewrites the textfile.
func (r *Registry) Observe(s *domain.RunSummary) error {
	stage := string(s.Stage)

	r.Runs.WithLabelValues(stage).Inc()
	r.ProductsIngested.WithLabelValues(stage).Add(float64(s.ProductsIngested))
	r.ProductsChanged.WithLabelValues(stage).Add(float64(s.ProductsChanged))
	for _, reason := range s.DropReasons() {
		r.Dropped.WithLabelValues(string(reason)).Add(float64(s.Dropped[reason]))
	}
	r.BlocksParsed.Add(float64(s.BlocksParsed))
	r.Unparseable.Add(float64(s.BlocksUnparseable))
	r.FlaggedBlocks.Add(float64(s.FlaggedBlocks))
	r.Images.WithLabelValues("resolved").Add(float64(s.ImagesResolved))
	r.Images.WithLabelValues("unresolved").Add(float64(s.ImagesUnresolved))
	r.Uploads.WithLabelValues("ok").Add(float64(s.UploadsOK))
	r.Uploads.WithLabelValues("cached").Add(float64(s.UploadsCached))
	r.Uploads.WithLabelValues("failed").Add(float64(s.UploadsFailed))

	if d, err := time.ParseDuration(s.Duration); err == nil {
		r.LastRunSeconds.WithLabelValues(stage).Set(d.Seconds())
	}
	if !s.StartedAt.IsZero() {
		r.LastRunTimestamp.WithLabelValues(stage).Set(float64(s.StartedAt.Unix()))
	}

	return r.Flush()
}

// Flush writes the registry to the textfile. It is a no-op without one.
func (r *Registry) Flush() error {
	if r.textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.textfile, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
