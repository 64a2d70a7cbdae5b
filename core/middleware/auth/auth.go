package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// HeaderName is the request header carrying the API key.
const HeaderName = "X-API-Key"

// Config holds the auth middleware configuration.
type Config struct {
	// ApiKey is the expected key. An empty key disables authentication.
	ApiKey string
	// PublicPaths are served without a key.
	PublicPaths []string
}

// DefaultPublicPaths are reachable without a key.
var DefaultPublicPaths = []string{"/health"}

// New creates a middleware that rejects requests without a valid API key.
func New(cfg Config) fiber.Handler {
	public := cfg.PublicPaths
	if public == nil {
		public = DefaultPublicPaths
	}

	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}
		for _, p := range public {
			if c.Path() == p {
				return c.Next()
			}
		}

		key := c.Get(HeaderName)
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing API key",
			})
		}
		return c.Next()
	}
}
