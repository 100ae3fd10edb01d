package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dontdude/goscribe/internal/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// defaultExt is used when the object key carries no extension.
const defaultExt = ".wav"

// Options holds the object store connection settings.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
}

// MinioFetcher downloads audio referenced by "<scheme>://<host>/<bucket>/<object>" URLs.
// The host of the URL is ignored; objects are always read through Options.Endpoint.
type MinioFetcher struct {
	opts   Options
	client *minio.Client
}

var _ domain.BlobFetcher = (*MinioFetcher)(nil)

// NewMinioFetcher builds the client. An incomplete configuration is not an error
// here; every Fetch then fails with a FetchError.
func NewMinioFetcher(opts Options) (*MinioFetcher, error) {
	f := &MinioFetcher{opts: opts}
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		slog.Warn("Object store is not configured, downloads will fail")
		return f, nil
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	f.client = client
	return f, nil
}

// Fetch downloads the object behind rawURL into dir and returns the local path.
func (f *MinioFetcher) Fetch(ctx context.Context, rawURL, dir string) (string, error) {
	if f.client == nil {
		return "", &domain.FetchError{URL: rawURL, Err: errors.New("object store configuration missing")}
	}

	bucket, object, err := ParseObjectURL(rawURL)
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: err}
	}

	ext := path.Ext(object)
	if ext == "" {
		ext = defaultExt
	}
	dst := filepath.Join(dir, "audio_file"+ext)

	slog.Info("Downloading audio", "bucket", bucket, "object", object)
	if err := f.client.FGetObject(ctx, bucket, object, dst, minio.GetObjectOptions{}); err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: fmt.Errorf("failed to download %s/%s: %w", bucket, object, err)}
	}

	if info, err := os.Stat(dst); err == nil {
		slog.Info("Audio downloaded", "path", dst, "bytes", info.Size())
	}
	return dst, nil
}

// ParseObjectURL splits the URL path into bucket and object key.
func ParseObjectURL(rawURL string) (bucket, object string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid object url %q: %w", rawURL, err)
	}
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid object url %q: want /<bucket>/<object>", rawURL)
	}
	return parts[0], parts[1], nil
}
