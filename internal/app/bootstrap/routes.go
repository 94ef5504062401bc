// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	accountsfeature "github.com/dalemusser/newsgeo/internal/app/features/accounts"
	googlesigninfeature "github.com/dalemusser/newsgeo/internal/app/features/googlesignin"
	healthfeature "github.com/dalemusser/newsgeo/internal/app/features/health"
	recordsfeature "github.com/dalemusser/newsgeo/internal/app/features/records"
	accountstore "github.com/dalemusser/newsgeo/internal/app/store/accounts"
	federatedstore "github.com/dalemusser/newsgeo/internal/app/store/federated"
	recordstore "github.com/dalemusser/newsgeo/internal/app/store/records"
	"github.com/dalemusser/newsgeo/internal/app/system/apicors"
	"github.com/dalemusser/newsgeo/internal/app/system/geocode"
	"github.com/dalemusser/newsgeo/internal/app/system/identity"
	"github.com/dalemusser/newsgeo/internal/app/system/metrics"
	"github.com/dalemusser/newsgeo/internal/app/system/reqlog"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// requestTimeout bounds a whole request, including both gateway calls.
const requestTimeout = 30 * time.Second

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Stores and gateways are built here from deps and
// appCfg and injected into the feature handlers.
//
// Routes:
//   - POST /data/{uniqueCode}, GET /data/{uniqueCode}, GET /data
//   - POST /signup, POST /signin, POST /google-signin
//   - /health, /ready, /readyz, /livez
//   - /metrics (when metrics_enabled)
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	var m *metrics.Metrics
	if appCfg.MetricsEnabled {
		m = metrics.New()
	}

	// Gateways
	geo := geocode.New(geocode.Config{
		BaseURL:   appCfg.GeocodeBaseURL,
		UserAgent: appCfg.GeocodeUserAgent,
		Timeout:   appCfg.GeocodeTimeout,
	}, m, logger)
	idp := identity.NewGoogle(identity.Config{
		UserInfoURL: appCfg.GoogleUserInfoURL,
		Timeout:     appCfg.IdentityTimeout,
	}, m, logger)

	// Stores
	records := recordstore.New(deps.MongoDatabase)
	accounts := accountstore.New(deps.MongoDatabase)
	links := federatedstore.New(deps.MongoDatabase)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.RealIP)

	// Access log + request metrics; outermost so it sees panics turned into 500s.
	r.Use(reqlog.Middleware(logger, m))
	r.Use(chimw.Recoverer)

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(requestTimeout))

	// WAFFLE core CORS and security headers.
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// API CORS. Global so preflight requests are answered before routing.
	r.Use(apicors.FromOrigins(appCfg.APIAllowedOrigins))

	// ─────────────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────────────

	recordsHandler := recordsfeature.NewHandler(records, geo, appCfg.BaseURL, m, logger)
	r.Mount("/data", recordsfeature.Routes(recordsHandler))

	accountsHandler := accountsfeature.NewHandler(accounts, appCfg.BcryptCost, m, logger)
	accountsfeature.MountRootEndpoints(r, accountsHandler)

	googleHandler := googlesigninfeature.NewHandler(idp, accounts, links, m, logger)
	r.Mount("/google-signin", googlesigninfeature.Routes(googleHandler))

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	logger.Info("routes built",
		zap.Bool("metrics", m != nil),
		zap.Int("api_allowed_origins", len(appCfg.APIAllowedOrigins)),
	)
	return r, nil
}
