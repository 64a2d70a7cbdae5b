package metabase

// Config holds configuration for the Metabase API client.
type Config struct {
	// URL is the base URL of the Metabase instance.
	URL string `mapstructure:"url" default:"http://localhost:3000"`
	// APIKey authenticates with an API key. Takes precedence over username and password.
	APIKey string `mapstructure:"api_key" default:""`
	// Username is used for session login when no API key is set.
	Username string `mapstructure:"username" default:""`
	// Password is used for session login when no API key is set.
	Password string `mapstructure:"password" default:""`
	// TimeoutSeconds bounds every HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
	// SkipVerify disables TLS certificate verification.
	SkipVerify bool `mapstructure:"skip_verify" default:"false"`
}
