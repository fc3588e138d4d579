package driven

import "io"

// ExportSource provides the chat export document.
type ExportSource interface {
	// Check returns domain.ErrSourceMissing if the export file or its media
	// directory is absent. It is called before anything is written.
	Check() error

	// Open opens the export document for reading.
	Open() (io.ReadCloser, error)

	// Path returns the export file path for logs and watching.
	Path() string
}
