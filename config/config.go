package config

// AppConfig is the main application configuration, composed from
// domain-specific sections in separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See the individual files for the
// available variables:
//   - auth.go: authentication and impersonation configuration
//   - database.go: database configuration
//   - http.go: HTTP server configuration
type AppConfig struct {
	// IsDev enables development conveniences (mock auth defaults, relaxed
	// cookie security is still derived per request, never from this flag).
	IsDev bool `env:"DEV" envDefault:"false"`

	// Auth groups authentication configuration.
	Auth AuthConfig

	// Postgres is the database configuration.
	Postgres DBConfig `envPrefix:"DB_"`

	// HTTP is the server configuration.
	HTTP HTTPConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// Call after parsing.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
}
