package gcs

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"

	"github.com/custodia-labs/shelf/internal/core/domain"
	"github.com/custodia-labs/shelf/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Publisher = (*Publisher)(nil)

// defaultBaseURL is where public objects are served when no CDN is configured.
const defaultBaseURL = "https://storage.googleapis.com"

// cacheControl is set on every uploaded object. Canonical names are reused
// when a product's images are replaced, so caches must revalidate.
const cacheControl = "public, no-cache"

// Config configures a bucket publisher.
type Config struct {
	Bucket string

	// CredentialsFile is a service-account JSON key.
	// Empty means Application Default Credentials.
	CredentialsFile string

	// PublicBaseURL replaces https://storage.googleapis.com/<bucket> in returned URLs.
	PublicBaseURL string
}

// Publisher uploads files to a bucket.
type Publisher struct {
	svc     *storage.Service
	bucket  string
	baseURL string
}

// New creates a publisher from cfg.
// Extra client options are appended after the credential option.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", domain.ErrInvalidInput)
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		jwt, err := google.JWTConfigFromJSON(data, storage.DevstorageReadWriteScope)
		if err != nil {
			return nil, fmt.Errorf("parse credentials: %w", err)
		}
		clientOpts = append(clientOpts, option.WithTokenSource(jwt.TokenSource(ctx)))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := storage.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create storage service: %w", err)
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = defaultBaseURL + "/" + cfg.Bucket
	}

	return &Publisher{svc: svc, bucket: cfg.Bucket, baseURL: base}, nil
}

// Name identifies the publisher in logs and the upload ledger.
func (p *Publisher) Name() string {
	return "gcs:" + p.bucket
}

// Publish uploads localPath as <folder>/<base name> and returns its public URL.
func (p *Publisher) Publish(ctx context.Context, localPath, folder string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	object := ObjectName(folder, filepath.Base(localPath))
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(localPath)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	obj := &storage.Object{
		Name:         object,
		ContentType:  contentType,
		CacheControl: cacheControl,
	}

	res, err := p.svc.Objects.Insert(p.bucket, obj).
		Media(f, googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", object, wrapError(err))
	}

	return p.URL(res.Name), nil
}

// URL returns the public URL of an object.
func (p *Publisher) URL(object string) string {
	parts := strings.Split(object, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return p.baseURL + "/" + strings.Join(parts, "/")
}

// ObjectName joins folder and name into an object key without leading slashes.
func ObjectName(folder, name string) string {
	return strings.TrimPrefix(path.Join("/", folder, name), "/")
}
