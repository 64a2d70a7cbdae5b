package manifest

import (
	"context"
	"fmt"
	"io"
	"os"

	"dbt-metabase/core/reconcile"
	"dbt-metabase/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Reader loads manifest models from a local file or from object storage.
type Reader struct {
	path   string
	store  storage.Client
	logger *zap.Logger
}

// NewReader creates a reader for the given path. store may be nil when the path is local.
func NewReader(path string, store storage.Client, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{path: path, store: store, logger: logger}
}

// Path returns the manifest location.
func (r *Reader) Path() string {
	return r.path
}

// ReadModels opens the manifest and returns its models and sources.
func (r *Reader) ReadModels(ctx context.Context) ([]reconcile.Model, error) {
	src, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	models, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}

	r.logger.Info("Read dbt manifest", zap.String("path", r.path), zap.Int("models", len(models)))
	return models, nil
}

func (r *Reader) open(ctx context.Context) (io.ReadCloser, error) {
	if !storage.IsURL(r.path) {
		f, err := os.Open(r.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open manifest: %w", err)
		}
		return f, nil
	}

	if r.store == nil {
		return nil, fmt.Errorf("manifest %s is in object storage but no storage client is configured", r.path)
	}
	bucket, object, err := storage.ParseURL(r.path)
	if err != nil {
		return nil, err
	}
	reader, err := r.store.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest object: %w", err)
	}
	return reader, nil
}
