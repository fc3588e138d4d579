package filesystem

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/shelf/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.MediaStore = (*Store)(nil)

// Store places photos in a canonical directory as <productID>_<index><ext>.
type Store struct {
	dir          string
	publicPrefix string
}

// NewStore creates a store writing to dir. Public paths are publicPrefix/<name>.
func NewStore(dir, publicPrefix string) *Store {
	return &Store{dir: dir, publicPrefix: strings.Trim(publicPrefix, "/")}
}

// Name returns the canonical file and public path for a product image.
func (s *Store) Name(localPath string, productID int64, index int) (string, string) {
	ext := strings.ToLower(filepath.Ext(localPath))
	name := fmt.Sprintf("%d_%d%s", productID, index, ext)
	return filepath.Join(s.dir, name), s.public(name)
}

// Place copies localPath to its canonical name, replacing any previous file.
func (s *Store) Place(localPath string, productID int64, index int) (string, string, error) {
	canonical, public := s.Name(localPath, productID, index)

	if same, err := sameFile(localPath, canonical); err != nil {
		return "", "", err
	} else if same {
		return canonical, public, nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating canonical directory: %w", err)
	}
	if err := copyFile(localPath, canonical); err != nil {
		return "", "", err
	}
	return canonical, public, nil
}

// Local maps a public path under the prefix back to an existing canonical file.
func (s *Store) Local(publicPath string) (string, bool) {
	name := publicPath
	if s.publicPrefix != "" {
		rest, ok := strings.CutPrefix(publicPath, s.publicPrefix+"/")
		if !ok {
			return "", false
		}
		name = rest
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", false
	}

	canonical := filepath.Join(s.dir, name)
	if !isFile(canonical) {
		return "", false
	}
	return canonical, true
}

func (s *Store) public(name string) string {
	if s.publicPrefix == "" {
		return name
	}
	return path.Join(s.publicPrefix, name)
}

func sameFile(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", a, err)
	}
	bi, err := os.Stat(b)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", b, err)
	}
	return os.SameFile(ai, bi), nil
}

// copyFile copies src to dst through a temporary sibling so readers never see a partial file.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("placing %s: %w", dst, err)
	}
	return nil
}
