package reconciler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/shelf/internal/core/domain"
	"github.com/custodia-labs/shelf/internal/logger"
)

type outcome int

const (
	uploaded outcome = iota
	cached
	failed
)

// publishAll uploads every placement with bounded concurrency and writes the
// resulting URL into its image slot. Failed uploads keep the local path.
// Only cancellation aborts the batch.
func (r *Reconciler) publishAll(ctx context.Context, pending []placement, results []Result, stats *Stats) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	var mu sync.Mutex
	for _, p := range pending {
		g.Go(func() error {
			url, out, err := r.publish(gctx, p.local)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			switch out {
			case cached:
				stats.UploadsCached++
			case uploaded:
				stats.UploadsOK++
			case failed:
				stats.UploadsFailed++
				logger.WarnWith(logger.Fields{"product": results[p.item].ProductID, "file": filepath.Base(p.local)},
					"upload failed, keeping local path: %v", err)
				return nil
			}
			results[p.item].Images[p.slot] = url
			return nil
		})
	}
	return g.Wait()
}

// publish uploads one file, consulting the ledger first and retrying with
// exponential backoff.
func (r *Reconciler) publish(ctx context.Context, local string) (string, outcome, error) {
	name := filepath.Base(local)
	hash, err := fileHash(local)
	if err != nil {
		return "", failed, fmt.Errorf("hash %s: %w: %w", name, domain.ErrUploadFailed, err)
	}

	if r.ledger != nil {
		url, ok, err := r.ledger.Lookup(ctx, r.publisher.Name(), name, hash)
		if err != nil {
			logger.Debug("ledger lookup %s: %v", name, err)
		} else if ok {
			return url, cached, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt <= r.opts.Retries; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, r.opts.RetryBackoff<<(attempt-1)); err != nil {
				return "", failed, err
			}
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return "", failed, err
		}

		url, err := r.publisher.Publish(ctx, local, r.opts.Folder)
		if err == nil {
			if r.ledger != nil {
				if err := r.ledger.Record(ctx, r.publisher.Name(), name, hash, url); err != nil {
					logger.Warn("record upload %s: %v", name, err)
				}
			}
			return url, uploaded, nil
		}
		if ctx.Err() != nil {
			return "", failed, ctx.Err()
		}
		lastErr = err
		if errors.Is(err, domain.ErrThrottled) {
			r.limiter.Backoff(r.opts.RetryBackoff << attempt)
		}
		logger.Debug("upload %s attempt %d: %v", name, attempt+1, err)
	}

	return "", failed, fmt.Errorf("publish %s: %w", name, errors.Join(domain.ErrUploadFailed, lastErr))
}

// fileHash returns the hex sha256 of the file contents.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
