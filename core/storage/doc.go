// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client, which serves both AWS S3 and self-hosted MinIO. The export
// tool uses object storage for two things: reading dbt manifests published by CI
// (s3://bucket/path/manifest.json) and writing one JSON report per export run.
//
// # Client Interface
//
// The Client interface abstracts the underlying provider so that storage interactions can
// be mocked in unit tests (see core/storage/mocks).
//
//   - BucketExists / MakeBucket: used by EnsureBucket for the report bucket.
//   - PutObject: uploads run reports.
//   - GetObject: streams manifests.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if errors.Is(err, storage.ErrNotConfigured) {
//	    // local manifests only, no reports
//	}
//	bucket, object, err := storage.ParseURL("s3://artifacts/manifest.json")
package storage
