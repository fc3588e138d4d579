package filesystem

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/shelf/internal/core/ports/driven"
)

// Ensure Resolver implements the interface.
var _ driven.MediaResolver = (*Resolver)(nil)

// Resolver maps export photo references to files under a media root.
type Resolver struct {
	root     string
	prefixes []string
}

// NewResolver creates a resolver for files under root. Each prefix is tried
// stripped from a reference before falling back to its base name.
func NewResolver(root string, prefixes ...string) *Resolver {
	return &Resolver{root: filepath.Clean(root), prefixes: prefixes}
}

// Resolve returns the first existing file among the reference as-is, the
// reference with a known prefix stripped, and the reference's base name.
// Candidates outside the media root are never returned.
func (r *Resolver) Resolve(ref string) (string, bool) {
	ref = cleanRef(ref)
	if ref == "" {
		return "", false
	}

	for _, candidate := range r.candidates(ref) {
		if r.inside(candidate) && isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (r *Resolver) candidates(ref string) []string {
	out := []string{filepath.Join(r.root, filepath.FromSlash(ref))}
	for _, prefix := range r.prefixes {
		if prefix != "" && strings.HasPrefix(ref, prefix) {
			out = append(out, filepath.Join(r.root, filepath.FromSlash(strings.TrimPrefix(ref, prefix))))
		}
	}
	return append(out, filepath.Join(r.root, filepath.Base(filepath.FromSlash(ref))))
}

func (r *Resolver) inside(path string) bool {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// cleanRef strips a file:// scheme and percent-encoding from an href.
func cleanRef(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, "file://")
	if strings.Contains(ref, "%") {
		if unescaped, err := url.PathUnescape(ref); err == nil {
			ref = unescaped
		}
	}
	return strings.TrimPrefix(ref, "./")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
