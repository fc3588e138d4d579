package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/shelf/internal/core/ports/driven"
)

// Ensure UploadLedger implements the interface.
var _ driven.UploadLedger = (*UploadLedger)(nil)

type ledgerKey struct {
	publisher, name, hash string
}

// UploadLedger is an in-memory implementation of driven.UploadLedger.
type UploadLedger struct {
	mu   sync.RWMutex
	urls map[ledgerKey]string
}

// NewUploadLedger creates an empty ledger.
func NewUploadLedger() *UploadLedger {
	return &UploadLedger{urls: make(map[ledgerKey]string)}
}

// Lookup returns the URL recorded for the file.
func (l *UploadLedger) Lookup(_ context.Context, publisher, name, hash string) (string, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	url, ok := l.urls[ledgerKey{publisher, name, hash}]
	return url, ok, nil
}

// Record stores the URL for the file.
func (l *UploadLedger) Record(_ context.Context, publisher, name, hash, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls[ledgerKey{publisher, name, hash}] = url
	return nil
}
