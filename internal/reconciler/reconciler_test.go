package reconciler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shelf/internal/core/ports/driven"
)

// fakeResolver maps refs to paths from a fixed table.
type fakeResolver map[string]string

func (f fakeResolver) Resolve(ref string) (string, bool) {
	p, ok := f[ref]
	return p, ok
}

// fakeStore names files "<dir>/<id>_<i><ext>" and records placements.
type fakeStore struct {
	mu     sync.Mutex
	dir    string
	placed map[string]string // canonical -> source
	local  map[string]string // public -> canonical
}

var _ driven.MediaStore = (*fakeStore)(nil)

func newFakeStore(dir string) *fakeStore {
	return &fakeStore{dir: dir, placed: map[string]string{}, local: map[string]string{}}
}

func (s *fakeStore) Name(localPath string, id int64, index int) (string, string) {
	name := fmt.Sprintf("%d_%d%s", id, index, strings.ToLower(filepath.Ext(localPath)))
	return filepath.Join(s.dir, name), "canonical/" + name
}

func (s *fakeStore) Place(localPath string, id int64, index int) (string, string, error) {
	canonical, public := s.Name(localPath, id, index)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.placed[canonical] = localPath
	s.local[public] = canonical
	return canonical, public, nil
}

func (s *fakeStore) Local(public string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.local[public]
	return p, ok
}

// fakePublisher fails the first failures calls for each file.
type fakePublisher struct {
	mu       sync.Mutex
	failures int
	calls    map[string]int
	inFlight int
	maxSeen  int
}

func newFakePublisher(failures int) *fakePublisher {
	return &fakePublisher{failures: failures, calls: map[string]int{}}
}

func (p *fakePublisher) Name() string { return "fake" }

func (p *fakePublisher) Publish(_ context.Context, localPath, folder string) (string, error) {
	p.mu.Lock()
	p.inFlight++
	if p.inFlight > p.maxSeen {
		p.maxSeen = p.inFlight
	}
	name := filepath.Base(localPath)
	p.calls[name]++
	n := p.calls[name]
	p.mu.Unlock()

	time.Sleep(time.Millisecond)

	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()

	if n <= p.failures {
		return "", errors.New("503 service unavailable")
	}
	return "https://cdn.example.com/" + folder + "/" + name, nil
}

// memLedger is an in-memory upload ledger.
type memLedger struct {
	mu   sync.Mutex
	urls map[string]string
}

func newMemLedger() *memLedger { return &memLedger{urls: map[string]string{}} }

func (l *memLedger) Lookup(_ context.Context, publisher, name, hash string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.urls[publisher+"|"+name+"|"+hash]
	return u, ok, nil
}

func (l *memLedger) Record(_ context.Context, publisher, name, hash, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls[publisher+"|"+name+"|"+hash] = url
	return nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestReconcile_LocalOnly(t *testing.T) {
	resolver := fakeResolver{"photos/a.jpg": "/export/photos/a.jpg"}
	store := newFakeStore("/out/canonical")
	r := New(resolver, store)

	results, stats, err := r.Reconcile(context.Background(), []Item{
		{ProductID: 42, Refs: []string{"photos/a.jpg"}},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"canonical/42_0.jpg"}, results[0].Images)
	assert.Equal(t, "/export/photos/a.jpg", store.placed["/out/canonical/42_0.jpg"])
	assert.Equal(t, 1, stats.Resolved)
	assert.Zero(t, stats.Unresolved)
}

func TestReconcile_MissingIsSkipped(t *testing.T) {
	resolver := fakeResolver{"photos/b.jpg": "/export/photos/b.jpg"}
	r := New(resolver, newFakeStore("/out"))

	results, stats, err := r.Reconcile(context.Background(), []Item{
		{ProductID: 7, Refs: []string{"photos/a.jpg", "photos/b.jpg"}},
		{ProductID: 8, Refs: []string{"photos/c.jpg"}},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"canonical/7_1.jpg"}, results[0].Images)
	assert.Equal(t, []string{"photos/a.jpg"}, results[0].Missing)
	assert.Empty(t, results[1].Images)
	assert.NotNil(t, results[1].Images)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 2, stats.Unresolved)
}

func TestReconcile_DuplicateFilesCollapse(t *testing.T) {
	resolver := fakeResolver{
		"photos/a.jpg":  "/export/photos/a.jpg",
		"a.jpg":         "/export/photos/a.jpg",
		"photos/b.jpeg": "/export/photos/b.jpeg",
	}
	r := New(resolver, newFakeStore("/out"))

	results, _, err := r.Reconcile(context.Background(), []Item{
		{ProductID: 1, Refs: []string{"photos/a.jpg", "a.jpg", "photos/b.jpeg"}},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"canonical/1_0.jpg", "canonical/1_2.jpeg"}, results[0].Images)
}

func TestReconcile_KeepsCanonicalAndRemote(t *testing.T) {
	store := newFakeStore("/out")
	store.local["canonical/5_1.jpg"] = "/out/5_1.jpg"
	resolver := fakeResolver{"photos/new.jpg": "/export/photos/new.jpg"}
	r := New(resolver, store)

	results, stats, err := r.Reconcile(context.Background(), []Item{
		{ProductID: 5, Refs: []string{"photos/new.jpg", "canonical/5_1.jpg", "https://cdn.example.com/x.jpg"}},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"canonical/5_0.jpg", "canonical/5_1.jpg", "https://cdn.example.com/x.jpg"}, results[0].Images)
	assert.Equal(t, 3, stats.Resolved)
}

func TestReconcile_NeverOverwritesKeptName(t *testing.T) {
	store := newFakeStore("/out")
	store.local["canonical/5_1.jpg"] = "/out/5_1.jpg"
	resolver := fakeResolver{"photos/new.jpg": "/export/photos/new.jpg"}
	r := New(resolver, store)

	results, _, err := r.Reconcile(context.Background(), []Item{
		{ProductID: 5, Refs: []string{"canonical/5_1.jpg", "photos/new.jpg"}},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"canonical/5_1.jpg", "canonical/5_2.jpg"}, results[0].Images)
	_, overwritten := store.placed["/out/5_1.jpg"]
	assert.False(t, overwritten)
}

func TestReconcile_PublishesWithRetry(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.jpg", "jpeg bytes")
	canonicalDir := t.TempDir()

	store := &copyingStore{fakeStore: newFakeStore(canonicalDir)}
	pub := newFakePublisher(1)
	ledger := newMemLedger()
	r := New(fakeResolver{"photos/a.jpg": src}, store,
		WithPublisher(pub),
		WithLedger(ledger),
		WithUploadOptions(UploadOptions{Folder: "products", Concurrency: 2, Retries: 2}),
	)
	r.sleep = noSleep

	results, stats, err := r.Reconcile(context.Background(), []Item{{ProductID: 42, Refs: []string{"photos/a.jpg"}}})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/products/42_0.jpg"}, results[0].Images)
	assert.Equal(t, 1, stats.UploadsOK)
	assert.Equal(t, 2, pub.calls["42_0.jpg"])

	// Unchanged file is served from the ledger on the next run.
	results, stats, err = r.Reconcile(context.Background(), []Item{{ProductID: 42, Refs: []string{"photos/a.jpg"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/products/42_0.jpg"}, results[0].Images)
	assert.Equal(t, 1, stats.UploadsCached)
	assert.Equal(t, 2, pub.calls["42_0.jpg"])
}

func TestReconcile_UploadFailureFallsBack(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.jpg", "jpeg bytes")

	store := &copyingStore{fakeStore: newFakeStore(t.TempDir())}
	pub := newFakePublisher(10)
	r := New(fakeResolver{"photos/a.jpg": src}, store,
		WithPublisher(pub),
		WithUploadOptions(UploadOptions{Concurrency: 1, Retries: 2}),
	)
	r.sleep = noSleep

	results, stats, err := r.Reconcile(context.Background(), []Item{{ProductID: 9, Refs: []string{"photos/a.jpg"}}})

	require.NoError(t, err)
	assert.Equal(t, []string{"canonical/9_0.jpg"}, results[0].Images)
	assert.Equal(t, 1, stats.UploadsFailed)
	assert.Equal(t, 3, pub.calls["9_0.jpg"])
}

func TestReconcile_BoundedConcurrencyKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	resolver := fakeResolver{}
	var items []Item
	for i := 0; i < 12; i++ {
		ref := fmt.Sprintf("photos/%d.jpg", i)
		resolver[ref] = writeFile(t, dir, fmt.Sprintf("%d.jpg", i), fmt.Sprintf("image %d", i))
		items = append(items, Item{ProductID: int64(100 + i), Refs: []string{ref}})
	}

	pub := newFakePublisher(0)
	r := New(resolver, &copyingStore{fakeStore: newFakeStore(t.TempDir())},
		WithPublisher(pub),
		WithUploadOptions(UploadOptions{Folder: "p", Concurrency: 3}),
	)

	results, stats, err := r.Reconcile(context.Background(), items)

	require.NoError(t, err)
	assert.Equal(t, 12, stats.UploadsOK)
	assert.LessOrEqual(t, pub.maxSeen, 3)
	for i, res := range results {
		assert.Equal(t, int64(100+i), res.ProductID)
		assert.Equal(t, []string{fmt.Sprintf("https://cdn.example.com/p/%d_0.jpg", 100+i)}, res.Images)
	}
}

func TestReconcile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(fakeResolver{}, newFakeStore("/out"))
	_, _, err := r.Reconcile(ctx, []Item{{ProductID: 1, Refs: []string{"photos/a.jpg"}}})
	assert.ErrorIs(t, err, context.Canceled)
}

// copyingStore is a fakeStore that really copies files so they can be hashed.
type copyingStore struct {
	*fakeStore
}

func (s *copyingStore) Place(localPath string, id int64, index int) (string, string, error) {
	canonical, public, err := s.fakeStore.Place(localPath, id, index)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", "", err
	}
	return canonical, public, os.WriteFile(canonical, data, 0o600)
}
