package filesystem

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shelf/internal/core/domain"
)

func TestExport_Check(t *testing.T) {
	root := t.TempDir()
	transcript := touch(t, filepath.Join(root, "messages.html"), "<html></html>")
	media := filepath.Join(root, "photos")
	touch(t, filepath.Join(media, "a.jpg"), "a")

	assert.NoError(t, NewExport(transcript, media).Check())

	tests := map[string]*Export{
		"missing transcript": NewExport(filepath.Join(root, "nope.html"), media),
		"transcript is dir":  NewExport(media, media),
		"missing media":      NewExport(transcript, filepath.Join(root, "gone")),
		"media is a file":    NewExport(transcript, transcript),
	}
	for name, e := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, e.Check(), domain.ErrSourceMissing)
		})
	}
}

func TestExport_Open(t *testing.T) {
	root := t.TempDir()
	transcript := touch(t, filepath.Join(root, "messages.html"), "<html></html>")

	e := NewExport(transcript, root)
	assert.Equal(t, transcript, e.Path())

	rc, err := e.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "<html></html>", string(data))

	_, err = NewExport(filepath.Join(root, "missing.html"), root).Open()
	assert.Error(t, err)
}
