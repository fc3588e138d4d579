package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/shelf/internal/core/domain"
	"github.com/custodia-labs/shelf/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// backupStamp is the UTC timestamp layout used in backup names.
const backupStamp = "20060102T150405Z"

// CatalogStore persists the catalog document on the local filesystem.
type CatalogStore struct {
	path      string
	backupDir string
	now       func() time.Time
}

// Option configures a CatalogStore.
type Option func(*CatalogStore)

// WithClock overrides the clock used for backup names.
func WithClock(now func() time.Time) Option {
	return func(s *CatalogStore) { s.now = now }
}

// NewCatalogStore creates a store for the catalog at path.
// Backups go to backupDir; a relative backupDir is taken relative to the catalog's directory.
func NewCatalogStore(path, backupDir string, opts ...Option) *CatalogStore {
	if backupDir != "" && !filepath.IsAbs(backupDir) {
		backupDir = filepath.Join(filepath.Dir(path), backupDir)
	}
	s := &CatalogStore{
		path:      path,
		backupDir: backupDir,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the catalog file path.
func (s *CatalogStore) Path() string {
	return s.path
}

// Exists reports whether the catalog file is present.
func (s *CatalogStore) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && info.Mode().IsRegular()
}

// Load reads the catalog. Products are normalised so later writes are stable.
func (s *CatalogStore) Load(_ context.Context) ([]domain.Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCatalogMissing, s.path)
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var products []domain.Product
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &products); err != nil {
			return nil, fmt.Errorf("decoding catalog %s: %w", s.path, err)
		}
	}

	for i := range products {
		products[i].Normalise()
	}
	return products, nil
}

// Save writes the catalog atomically.
func (s *CatalogStore) Save(ctx context.Context, products []domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(products)
	if err != nil {
		return err
	}

	return writeAtomic(s.path, data)
}

// Backup copies the current catalog into the backup directory.
// It returns "" when there is no catalog yet.
func (s *CatalogStore) Backup(_ context.Context, runID string) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading catalog for backup: %w", err)
	}

	dir := s.backupDir
	if dir == "" {
		dir = filepath.Dir(s.path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))
	name := fmt.Sprintf("%s.%s.%s.json", base, s.now().UTC().Format(backupStamp), runID)
	target := filepath.Join(dir, name)

	if err := writeAtomic(target, data); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	return target, nil
}

// Encode renders products as the catalog document: an indented JSON array
// with a trailing newline. Equal catalogs encode to identical bytes.
func Encode(products []domain.Product) ([]byte, error) {
	if products == nil {
		products = []domain.Product{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// writeAtomic writes data to a temporary sibling of path and renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
