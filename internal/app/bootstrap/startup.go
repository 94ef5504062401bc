// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/newsgeo/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema setup are complete,
// but before the HTTP handler is built and requests are served.
//
// It applies the configured gateway timeouts and logs the effective
// service settings.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Store:    appCfg.StoreTimeout,
		Geocode:  appCfg.GeocodeTimeout,
		Identity: appCfg.IdentityTimeout,
	})
	cur := timeouts.Current()

	if appCfg.GoogleClientID == "" {
		logger.Info("google_client_id not set; google sign-in accepts tokens from any client")
	}

	logger.Info("newsgeo configured",
		zap.String("env", coreCfg.Env),
		zap.String("base_url", appCfg.BaseURL),
		zap.Duration("store_timeout", cur.Store),
		zap.String("geocode_base_url", appCfg.GeocodeBaseURL),
		zap.Duration("geocode_timeout", cur.Geocode),
		zap.String("google_userinfo_url", appCfg.GoogleUserInfoURL),
		zap.String("google_client_id", appCfg.GoogleClientID),
		zap.Duration("identity_timeout", cur.Identity),
		zap.Int("bcrypt_cost", appCfg.BcryptCost),
		zap.Strings("api_allowed_origins", appCfg.APIAllowedOrigins),
		zap.Bool("metrics_enabled", appCfg.MetricsEnabled),
	)
	return nil
}
