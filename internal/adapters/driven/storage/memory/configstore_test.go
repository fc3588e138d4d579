package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("catalog.path", "catalog.json"))
	require.NoError(t, store.Set("catalog.path", "out/catalog.json"))

	val, ok := store.Get("catalog.path")
	assert.True(t, ok)
	assert.Equal(t, "out/catalog.json", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("s", "text")
	_ = store.Set("i", 7)
	_ = store.Set("i64", int64(9))
	_ = store.Set("f", 2.5)
	_ = store.Set("list", []any{"a", 1, "b"})

	assert.Equal(t, "text", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))

	assert.Equal(t, 7, store.GetInt("i"))
	assert.Equal(t, 9, store.GetInt("i64"))
	assert.Equal(t, 2, store.GetInt("f"))
	assert.Equal(t, 0, store.GetInt("s"))

	assert.InDelta(t, 2.5, store.GetFloat("f"), 1e-9)
	assert.InDelta(t, 7.0, store.GetFloat("i"), 1e-9)
	assert.InDelta(t, 9.0, store.GetFloat("i64"), 1e-9)
	assert.Zero(t, store.GetFloat("s"))

	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("list"))
	assert.Nil(t, store.GetStringSlice("s"))
}

func TestConfigStore_NoOpPersistence(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("k", "v")

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, "v", store.GetString("k"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("key", n)
			_ = store.GetInt("key")
			_ = store.GetFloat("key")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("key")
	assert.True(t, ok)
}

func TestNewConfigStoreWith_CopiesSeed(t *testing.T) {
	seed := map[string]any{"upload.concurrency": 8}
	store := NewConfigStoreWith(seed)
	seed["upload.concurrency"] = 1

	assert.Equal(t, 8, store.GetInt("upload.concurrency"))
	assert.Equal(t, ":memory:", store.Path())
}
