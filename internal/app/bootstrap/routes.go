// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/quickmatch/internal/app/features/health"
	quickmatchfeature "github.com/dalemusser/quickmatch/internal/app/features/quickmatch"
	"github.com/dalemusser/quickmatch/internal/app/meetings"
	"github.com/dalemusser/quickmatch/internal/app/system/auditlog"
	"github.com/dalemusser/quickmatch/internal/app/system/auth"
	"github.com/dalemusser/quickmatch/internal/app/system/keylock"
	"github.com/dalemusser/quickmatch/internal/app/system/metrics"
	"github.com/dalemusser/quickmatch/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for quickmatch.
//
// WAFFLE calls this after configuration, store connection, schema setup and
// Startup have completed. It builds the meeting coordinator (one lock
// registry and one metrics registry per process) and mounts:
//   - /quickmatch: the meeting API
//   - /health: store ping and busy-meeting count
//   - /metrics: Prometheus exposition
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	if appCfg.JWTSecret != "" {
		if err := sessionMgr.EnableBearerTokens(appCfg.JWTSecret, appCfg.JWTIssuer); err != nil {
			logger.Error("bearer token setup failed", zap.Error(err))
			return nil, err
		}
	}

	locks := keylock.New()
	m := metrics.New()
	audit := auditlog.New(deps.AuditSink, logger, auditlog.Config{Meetings: appCfg.AuditLogMeetings})
	coord := meetings.New(deps.Store, locks, logger,
		meetings.WithMetrics(m),
		meetings.WithAuditLog(audit),
	)

	r := chi.NewRouter()

	if len(appCfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   appCfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.Store, deps.Backend, locks, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", m.Handler())

	var limiter *ratelimit.Limiter
	if appCfg.RateLimitPerMinute > 0 {
		limiter = ratelimit.New(appCfg.RateLimitPerMinute, appCfg.RateLimitBurst)
	}
	qmHandler := quickmatchfeature.NewHandler(coord, logger)
	r.Mount("/quickmatch", quickmatchfeature.Routes(qmHandler, sessionMgr, limiter))

	return r, nil
}
