// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, logging, CORS and body limits; everything specific to the
// news service lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64
	StoreTimeout     time.Duration

	// BaseURL is the public address of the service, without trailing slash.
	BaseURL string

	// Geocoding gateway
	GeocodeBaseURL   string
	GeocodeUserAgent string
	GeocodeTimeout   time.Duration

	// Identity provider gateway
	GoogleUserInfoURL string
	GoogleClientID    string
	IdentityTimeout   time.Duration

	BcryptCost int

	// APIAllowedOrigins restricts CORS on the API; empty allows any origin.
	APIAllowedOrigins []string
	MetricsEnabled    bool
}
