// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	dashboardfeature "github.com/dalemusser/runtracker/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/runtracker/internal/app/features/errors"
	healthfeature "github.com/dalemusser/runtracker/internal/app/features/health"
	reportsfeature "github.com/dalemusser/runtracker/internal/app/features/reports"
	settingsfeature "github.com/dalemusser/runtracker/internal/app/features/settings"
	reportstore "github.com/dalemusser/runtracker/internal/app/store/reports"
	userstore "github.com/dalemusser/runtracker/internal/app/store/users"
	"github.com/dalemusser/runtracker/internal/app/system/auth"
	"github.com/dalemusser/runtracker/internal/app/system/metrics"
	"github.com/dalemusser/runtracker/internal/app/system/ratelimit"
	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, the store connection, schema
// setup and Startup have completed. It builds the identity resolver and
// the streak synchronizer, then mounts the feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(auth.Options{
		SessionKey:     appCfg.SessionKey,
		SessionName:    appCfg.SessionName,
		SessionDomain:  appCfg.SessionDomain,
		Secure:         secure,
		IdentityHeader: appCfg.IdentityHeader,
		EmailHeader:    appCfg.IdentityEmailHeader,
		NameHeader:     appCfg.IdentityNameHeader,
		DeviceID:       appCfg.DeviceID,
	}, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	loc, err := appCfg.location()
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	sync := streaksync.New(deps.Docs, logger,
		streaksync.WithLocation(loc),
		streaksync.WithRetry(appCfg.RetryAttempts, appCfg.RetryBase),
		streaksync.WithRecentLimit(appCfg.RecentReportsLimit),
		streaksync.WithMetrics(m),
	)
	users := userstore.New(deps.Docs)
	reports := reportstore.New(deps.Docs)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Health check and metrics are served without an identity.
	healthHandler := healthfeature.NewHandler(deps.Docs, deps.Backend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	if appCfg.MetricsEnabled {
		r.Handle("/metrics", m.Handler())
	}

	r.Group(func(ar chi.Router) {
		// Resolves the caller from the upstream header, the fixed device
		// id or the device cookie.
		ar.Use(sessionMgr.LoadIdentity)
		if appCfg.WriteRateLimit > 0 {
			limiter := ratelimit.New(appCfg.WriteRateLimit, appCfg.WriteRateWindow)
			ar.Use(limiter.Writes(logger))
		}

		dashboardHandler := dashboardfeature.NewHandler(sync, users, errLog, logger)
		ar.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

		reportsHandler := reportsfeature.NewHandler(sync, reports, errLog, logger)
		ar.Mount("/reports", reportsfeature.Routes(reportsHandler, sessionMgr))

		settingsHandler := settingsfeature.NewHandler(users, errLog, logger)
		ar.Mount("/settings", settingsfeature.Routes(settingsHandler, sessionMgr))
	})

	return r, nil
}
