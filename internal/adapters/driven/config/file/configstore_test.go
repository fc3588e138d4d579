package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(filepath.Join(t.TempDir(), DefaultFileName))
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.toml")

	store, err := NewConfigStore(path)

	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
}

func TestDefaultPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	path, err := DefaultPath()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".shelf", "config.toml"), path)
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deep")

	_, err := NewConfigStore(filepath.Join(dir, DefaultFileName))
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/config.toml")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(path)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_ReadsNestedTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	content := `
[export]
path = "chat/messages.html"
media_prefixes = ["photos/", "files/"]

[upload]
provider = "gcs"
bucket = "shop-images"
concurrency = 8
rate_per_second = 2.5

[filter]
min_title_length = 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	store, err := NewConfigStore(path)
	require.NoError(t, err)

	assert.Equal(t, "chat/messages.html", store.GetString("export.path"))
	assert.Equal(t, []string{"photos/", "files/"}, store.GetStringSlice("export.media_prefixes"))
	assert.Equal(t, "gcs", store.GetString("upload.provider"))
	assert.Equal(t, 8, store.GetInt("upload.concurrency"))
	assert.InDelta(t, 2.5, store.GetFloat("upload.rate_per_second"), 1e-9)
	assert.InDelta(t, 8.0, store.GetFloat("upload.concurrency"), 1e-9)
	assert.Equal(t, 4, store.GetInt("filter.min_title_length"))
}

func TestConfigStore_TypedGettersDefault(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("string_key", "hello"))
	require.NoError(t, store.Set("int_key", 42))

	assert.Equal(t, "", store.GetString("int_key"))
	assert.Equal(t, 0, store.GetInt("string_key"))
	assert.Zero(t, store.GetFloat("string_key"))
	assert.Nil(t, store.GetStringSlice("string_key"))

	val, ok := store.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_PersistsAsTables(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Set("upload.bucket", "shop-images"))
	require.NoError(t, store.Set("upload.retries", 5))
	require.NoError(t, store.Set("catalog.path", "out/catalog.json"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[upload]")
	assert.Contains(t, string(data), "[catalog]")

	reloaded, err := NewConfigStore(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "shop-images", reloaded.GetString("upload.bucket"))
	assert.Equal(t, 5, reloaded.GetInt("upload.retries"))
	assert.Equal(t, "out/catalog.json", reloaded.GetString("catalog.path"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("test", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("# Just a comment\n\n"), 0600))

	store, err := NewConfigStore(path)
	require.NoError(t, err)

	_, ok := store.Get("any_key")
	assert.False(t, ok)
}

func TestConfigStore_ConflictingKeys(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("upload", "gcs"))

	assert.Error(t, store.Set("upload.bucket", "shop-images"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store := newStore(t)

	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newStore(t)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetFloat(key)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestNestMap(t *testing.T) {
	nested, err := nestMap(map[string]any{"a.b": 1, "a.c": "x", "d": true})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1, "c": "x"}, "d": true}, nested)
	assert.Equal(t, map[string]any{"a.b": 1, "a.c": "x", "d": true}, flattenMap(nested, ""))
}
