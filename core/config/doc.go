// Package config provides configuration management for dbt-metabase.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Every key is registered from the `default` struct tags, so an
// environment variable overrides any key by its upper-cased path (METABASE_API_KEY).
//
// # Configuration Structure
//
//   - Server: HTTP port, API key and timeouts
//   - Metabase: URL and credentials
//   - Manifest: manifest location (local path or s3:// URL)
//   - Export: default export options and report destination
//   - Storage: S3/MinIO credentials
//   - Database: optional run history database
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Metabase.URL)
package config
