package filesystem

import (
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/shelf/internal/core/domain"
	"github.com/custodia-labs/shelf/internal/core/ports/driven"
)

// Ensure Export implements the interface.
var _ driven.ExportSource = (*Export)(nil)

// Export is a chat export on disk: one HTML transcript and a media directory.
type Export struct {
	path     string
	mediaDir string
}

// NewExport creates an export source.
func NewExport(path, mediaDir string) *Export {
	return &Export{path: path, mediaDir: mediaDir}
}

// Check verifies that the transcript is a file and the media directory a directory.
func (e *Export) Check() error {
	info, err := os.Stat(e.path)
	if err != nil {
		return fmt.Errorf("%w: export %s: %w", domain.ErrSourceMissing, e.path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: export %s is a directory", domain.ErrSourceMissing, e.path)
	}

	info, err = os.Stat(e.mediaDir)
	if err != nil {
		return fmt.Errorf("%w: media directory %s: %w", domain.ErrSourceMissing, e.mediaDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: media directory %s is not a directory", domain.ErrSourceMissing, e.mediaDir)
	}
	return nil
}

// Open opens the transcript.
func (e *Export) Open() (io.ReadCloser, error) {
	f, err := os.Open(e.path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	return f, nil
}

// Path returns the transcript path.
func (e *Export) Path() string {
	return e.path
}
