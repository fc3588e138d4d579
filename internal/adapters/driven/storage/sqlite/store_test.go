package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shelf/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "data", "shelf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store := setupTestStore(t)

	assert.FileExists(t, store.Path())
}

func TestNewStore_MigrationsAreRecorded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.db")

	first, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Reopening must not re-run migrations.
	second, err := NewStore(path)
	require.NoError(t, err)
	defer second.Close()

	var version int
	require.NoError(t, second.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestUploadLedger_LookupAndRecord(t *testing.T) {
	ctx := context.Background()
	ledger := setupTestStore(t).UploadLedger()

	_, ok, err := ledger.Lookup(ctx, "gcs", "42_0.jpg", "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ledger.Record(ctx, "gcs", "42_0.jpg", "abc", "https://storage.googleapis.com/b/42_0.jpg"))

	url, ok, err := ledger.Lookup(ctx, "gcs", "42_0.jpg", "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://storage.googleapis.com/b/42_0.jpg", url)

	// A changed file has a different hash and is not a hit.
	_, ok, err = ledger.Lookup(ctx, "gcs", "42_0.jpg", "def")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUploadLedger_RecordReplaces(t *testing.T) {
	ctx := context.Background()
	ledger := setupTestStore(t).UploadLedger()

	require.NoError(t, ledger.Record(ctx, "gcs", "1_0.jpg", "h", "https://old"))
	require.NoError(t, ledger.Record(ctx, "gcs", "1_0.jpg", "h", "https://new"))

	url, ok, err := ledger.Lookup(ctx, "gcs", "1_0.jpg", "h")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://new", url)
}

func TestRunStore_LatestRun(t *testing.T) {
	ctx := context.Background()
	runs := setupTestStore(t).RunStore()

	_, err := runs.LatestRun(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	older := domain.NewRunSummary("run-a", domain.StageBuild, start)
	older.ProductsIngested = 10
	newer := domain.NewRunSummary("run-b", domain.StageRecategorise, start.Add(time.Hour))
	newer.ProductsChanged = 3
	newer.Drop(domain.DropSpam)

	require.NoError(t, runs.SaveRun(ctx, newer))
	require.NoError(t, runs.SaveRun(ctx, older))

	latest, err := runs.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-b", latest.RunID)
	assert.Equal(t, domain.StageRecategorise, latest.Stage)
	assert.Equal(t, 3, latest.ProductsChanged)
	assert.Equal(t, 1, latest.Dropped[domain.DropSpam])
	assert.True(t, latest.StartedAt.Equal(start.Add(time.Hour)))
}
