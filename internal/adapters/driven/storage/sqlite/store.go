package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/shelf/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/shelf/internal/core/domain"
	"github.com/custodia-labs/shelf/internal/core/ports/driven"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite database exposing the ledger and run history
// through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns ~/.shelf/shelf.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".shelf", "shelf.db"), nil
}

// NewStore opens or creates the database at dbPath and applies pending migrations.
// If dbPath is empty, DefaultPath is used.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL lets the summary command read while a build writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// UploadLedger returns an UploadLedger backed by this store.
func (s *Store) UploadLedger() driven.UploadLedger {
	return &uploadLedger{store: s}
}

// RunStore returns a RunStore backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Upload Ledger ====================

// uploadLedger implements driven.UploadLedger.
type uploadLedger struct {
	store *Store
}

var _ driven.UploadLedger = (*uploadLedger)(nil)

// Lookup returns the URL recorded for (publisher, name, hash).
func (l *uploadLedger) Lookup(ctx context.Context, publisher, name, hash string) (string, bool, error) {
	row := l.store.db.QueryRowContext(ctx, `
		SELECT url FROM uploads WHERE publisher = ? AND name = ? AND hash = ?
	`, publisher, name, hash)

	var url string
	if err := row.Scan(&url); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("looking up upload %s: %w", name, err)
	}
	return url, true, nil
}

// Record stores or replaces the URL for (publisher, name, hash).
func (l *uploadLedger) Record(ctx context.Context, publisher, name, hash, url string) error {
	_, err := l.store.db.ExecContext(ctx, `
		INSERT INTO uploads (publisher, name, hash, url, uploaded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(publisher, name, hash) DO UPDATE SET
			url = excluded.url,
			uploaded_at = excluded.uploaded_at
	`, publisher, name, hash, url, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("recording upload %s: %w", name, err)
	}
	return nil
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// SaveRun stores a finished run summary.
func (r *runStore) SaveRun(ctx context.Context, summary *domain.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshalling run summary: %w", err)
	}

	_, err = r.store.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, stage, started_at, summary)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			stage = excluded.stage,
			started_at = excluded.started_at,
			summary = excluded.summary
	`, summary.RunID, string(summary.Stage), summary.StartedAt.UTC().Format(timeLayout), string(data))
	if err != nil {
		return fmt.Errorf("saving run %s: %w", summary.RunID, err)
	}
	return nil
}

// LatestRun returns the run with the latest start time.
func (r *runStore) LatestRun(ctx context.Context) (*domain.RunSummary, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT summary FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1
	`)

	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	var summary domain.RunSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("unmarshalling run summary: %w", err)
	}
	return &summary, nil
}
