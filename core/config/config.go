package config

import (
	"reflect"
	"strings"

	"dbt-metabase/core/database"
	"dbt-metabase/core/logger"
	"dbt-metabase/core/server"
	"dbt-metabase/core/storage"
	"dbt-metabase/feature/export"
	"dbt-metabase/feature/manifest"
	"dbt-metabase/feature/metabase"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Metabase holds the Metabase URL and credentials.
	Metabase metabase.Config `mapstructure:"metabase"`
	// Manifest locates the dbt manifest.
	Manifest manifest.Config `mapstructure:"manifest"`
	// Export holds the default export options.
	Export export.Config `mapstructure:"export"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the run history database.
	Database database.Config `mapstructure:"database"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Missing .env is normal outside development
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// 2. Register every key with its default
	bindValues(v, Config{}, "")

	// 3. Map environment variables to nested keys (e.g. METABASE_API_KEY -> metabase.api_key)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Empty defaults still register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
