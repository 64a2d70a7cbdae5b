package manifest

// Config holds configuration for the manifest source.
type Config struct {
	// Path is a local file path or an s3://bucket/object URL.
	Path string `mapstructure:"path" default:"target/manifest.json"`
}
