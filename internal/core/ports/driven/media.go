package driven

import "context"

// MediaResolver maps a photo reference from the export to a file on disk.
type MediaResolver interface {
	// Resolve returns the local path for ref, or false if no file exists.
	Resolve(ref string) (string, bool)
}

// MediaStore places resolved photos into the canonical storage area.
type MediaStore interface {
	// Name returns the canonical and public paths Place would use, without copying.
	Name(localPath string, productID int64, index int) (canonicalPath, publicPath string)

	// Place copies localPath to the canonical name for (productID, index).
	// It returns the canonical file path and the public path served to the storefront.
	Place(localPath string, productID int64, index int) (canonicalPath, publicPath string, err error)

	// Local maps a public path back to its canonical file.
	// It returns false if the path is not under the public prefix or the file does not exist.
	Local(publicPath string) (string, bool)
}

// Publisher uploads a local file to remote object storage.
// Implementations must be safe for concurrent use.
type Publisher interface {
	// Name identifies the publisher in logs and the upload ledger.
	Name() string

	// Publish uploads localPath under folder and returns a durable URL.
	Publish(ctx context.Context, localPath, folder string) (string, error)
}

// UploadLedger remembers published files so unchanged files are not uploaded twice.
type UploadLedger interface {
	// Lookup returns the URL recorded for (publisher, name, hash).
	Lookup(ctx context.Context, publisher, name, hash string) (string, bool, error)

	// Record stores the URL for (publisher, name, hash).
	Record(ctx context.Context, publisher, name, hash, url string) error
}
