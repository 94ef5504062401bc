// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/newsgeo/internal/app/system/authutil"
	"github.com/dalemusser/newsgeo/internal/app/system/geocode"
	"github.com/dalemusser/newsgeo/internal/app/system/identity"
	"github.com/dalemusser/newsgeo/internal/app/system/inputval"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "NEWSGEO"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, base_url, etc.
//   - Environment variables: NEWSGEO_MONGO_URI, NEWSGEO_BASE_URL, etc.
//   - Command-line flags: --mongo_uri, --base_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "NewsGeo", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "store_timeout", Default: "5s", Desc: "Timeout for the database work of one request"},

	// Externally reachable address, used to build each record's newsTag
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL of this service"},

	// Geocoding (Nominatim)
	{Name: "geocode_base_url", Default: geocode.DefaultBaseURL, Desc: "Nominatim base URL"},
	{Name: "geocode_user_agent", Default: "newsgeo/1.0", Desc: "User-Agent sent to the geocoder (required by Nominatim policy)"},
	{Name: "geocode_timeout", Default: "10s", Desc: "Timeout for one geocoding call"},

	// Google sign-in
	{Name: "google_userinfo_url", Default: identity.DefaultUserInfoURL, Desc: "Google OAuth2 userinfo endpoint"},
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID used by the front end (informational)"},
	{Name: "identity_timeout", Default: "10s", Desc: "Timeout for one userinfo call"},

	// Passwords
	{Name: "bcrypt_cost", Default: authutil.BcryptCost, Desc: "bcrypt work factor for new passwords (4-31)"},

	// API surface
	{Name: "api_allowed_origins", Default: "", Desc: "Comma-separated CORS origins for the API (blank allows any origin)"},
	{Name: "metrics_enabled", Default: true, Desc: "Serve Prometheus metrics at /metrics"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, NEWSGEO_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		StoreTimeout:     appValues.Duration("store_timeout", 5*time.Second),

		BaseURL: strings.TrimRight(appValues.String("base_url"), "/"),

		GeocodeBaseURL:   appValues.String("geocode_base_url"),
		GeocodeUserAgent: appValues.String("geocode_user_agent"),
		GeocodeTimeout:   appValues.Duration("geocode_timeout", 10*time.Second),

		GoogleUserInfoURL: appValues.String("google_userinfo_url"),
		GoogleClientID:    appValues.String("google_client_id"),
		IdentityTimeout:   appValues.Duration("identity_timeout", 10*time.Second),

		BcryptCost: appValues.Int("bcrypt_cost"),

		APIAllowedOrigins: splitList(appValues.String("api_allowed_origins")),
		MetricsEnabled:    appValues.Bool("metrics_enabled"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	urls := []struct{ key, value string }{
		{"base_url", appCfg.BaseURL},
		{"geocode_base_url", appCfg.GeocodeBaseURL},
		{"google_userinfo_url", appCfg.GoogleUserInfoURL},
	}
	for _, u := range urls {
		if !inputval.IsValidHTTPURL(u.value) {
			logger.Error("invalid URL in config", zap.String("key", u.key), zap.String("value", u.value))
			return fmt.Errorf("invalid %s: %q is not an absolute http(s) URL", u.key, u.value)
		}
	}

	if appCfg.StoreTimeout <= 0 || appCfg.GeocodeTimeout <= 0 || appCfg.IdentityTimeout <= 0 {
		return fmt.Errorf("store_timeout, geocode_timeout and identity_timeout must be positive")
	}
	if appCfg.BcryptCost < 4 || appCfg.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost %d out of range 4-31", appCfg.BcryptCost)
	}

	return nil
}

// splitList splits a comma-separated config value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
