package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/shelf/internal/core/domain"
	"github.com/custodia-labs/shelf/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore is an in-memory implementation of driven.CatalogStore for testing.
type CatalogStore struct {
	mu       sync.RWMutex
	products []domain.Product
	exists   bool
	backups  [][]domain.Product
	saves    int
}

// NewCatalogStore creates an empty in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{}
}

// NewCatalogStoreWith creates a store holding an existing catalog.
func NewCatalogStoreWith(products []domain.Product) *CatalogStore {
	return &CatalogStore{products: cloneProducts(products), exists: true}
}

// Exists reports whether a catalog has been stored.
func (s *CatalogStore) Exists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exists
}

// Load returns a copy of the stored catalog.
func (s *CatalogStore) Load(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.exists {
		return nil, domain.ErrCatalogMissing
	}
	return cloneProducts(s.products), nil
}

// Save replaces the stored catalog.
func (s *CatalogStore) Save(_ context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = cloneProducts(products)
	s.exists = true
	s.saves++
	return nil
}

// Backup keeps a copy of the current catalog.
func (s *CatalogStore) Backup(_ context.Context, runID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists {
		return "", nil
	}
	s.backups = append(s.backups, cloneProducts(s.products))
	return fmt.Sprintf("memory://backup/%s", runID), nil
}

// Path returns a pseudo path.
func (s *CatalogStore) Path() string {
	return ":memory:"
}

// Backups returns the number of backups taken.
func (s *CatalogStore) Backups() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.backups)
}

// Saves returns the number of successful saves.
func (s *CatalogStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func cloneProducts(in []domain.Product) []domain.Product {
	if in == nil {
		return nil
	}
	out := make([]domain.Product, len(in))
	for i, p := range in {
		p.Images = append([]string(nil), p.Images...)
		p.Variations = append([]string(nil), p.Variations...)
		out[i] = p
	}
	return out
}
