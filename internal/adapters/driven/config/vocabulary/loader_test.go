package vocabulary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shelf/internal/core/domain"
)

func TestParse(t *testing.T) {
	doc := `
departments:
  Electronics: [Phones, " Laptops ", ""]
  Fashion:
    - Shoes
`
	v, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"Electronics", "Fashion"}, v.Departments())
	assert.True(t, v.Has("Electronics", "Laptops"))
	assert.True(t, v.Has("Fashion", "Shoes"))
	assert.True(t, v.Has("Fashion", domain.DefaultCategory))
	assert.False(t, v.Has("Electronics", "Shoes"))
}

func TestParse_AlwaysHasDefaultDepartment(t *testing.T) {
	v, err := Parse(strings.NewReader("departments:\n  Home: [Kitchen]\n"))
	require.NoError(t, err)
	assert.Contains(t, v.Departments(), domain.DefaultDepartment)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"no departments": "departments: {}\n",
		"unknown key":    "departmentz:\n  Home: [Kitchen]\n",
		"bad yaml":       "departments: [\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestLoad(t *testing.T) {
	v, err := Load("")
	require.NoError(t, err)
	assert.True(t, v.Has("Electronics", "Phones"))

	path := filepath.Join(t.TempDir(), "vocabulary.yaml")
	require.NoError(t, os.WriteFile(path, []byte("departments:\n  Toys: [Puzzles]\n"), 0o600))

	v, err = Load(path)
	require.NoError(t, err)
	assert.True(t, v.Has("Toys", "Puzzles"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
