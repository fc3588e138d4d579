// Package vocabulary loads the storefront category vocabulary from YAML.
//
// The file maps departments to the categories the storefront shows:
//
//	departments:
//	  Electronics: [Phones, Laptops, Audio]
//	  Fashion: [Shoes, Bags]
package vocabulary

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/shelf/internal/core/domain"
)

// file is the on-disk shape.
type file struct {
	Departments map[string][]string `yaml:"departments"`
}

// Load reads the vocabulary at path.
// An empty path returns domain.DefaultVocabulary.
func Load(path string) (*domain.Vocabulary, error) {
	if path == "" {
		return domain.DefaultVocabulary(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a vocabulary document. Unknown keys are rejected so typos
// do not silently drop a department.
func Parse(r io.Reader) (*domain.Vocabulary, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty vocabulary", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: parse vocabulary: %w", domain.ErrInvalidInput, err)
	}
	if len(f.Departments) == 0 {
		return nil, fmt.Errorf("%w: vocabulary has no departments", domain.ErrInvalidInput)
	}

	departments := make(map[string][]string, len(f.Departments))
	for dept, cats := range f.Departments {
		dept = strings.TrimSpace(dept)
		if dept == "" {
			return nil, fmt.Errorf("%w: empty department name", domain.ErrInvalidInput)
		}
		clean := make([]string, 0, len(cats))
		for _, c := range cats {
			if c = strings.TrimSpace(c); c != "" {
				clean = append(clean, c)
			}
		}
		departments[dept] = clean
	}
	return domain.NewVocabulary(departments), nil
}
