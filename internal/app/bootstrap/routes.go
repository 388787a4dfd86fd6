// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	authgooglefeature "github.com/dalemusser/whoseturn/internal/app/features/authgoogle"
	errorsfeature "github.com/dalemusser/whoseturn/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/whoseturn/internal/app/features/groups"
	healthfeature "github.com/dalemusser/whoseturn/internal/app/features/health"
	loginfeature "github.com/dalemusser/whoseturn/internal/app/features/login"
	logoutfeature "github.com/dalemusser/whoseturn/internal/app/features/logout"
	notificationsfeature "github.com/dalemusser/whoseturn/internal/app/features/notifications"
	userinfofeature "github.com/dalemusser/whoseturn/internal/app/features/userinfo"
	"github.com/dalemusser/whoseturn/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Every route speaks JSON; everything except
// /health, /login, /auth/google and /logout requires a signed-in session.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	rt := deps.runtime
	if rt == nil || rt.turns == nil {
		return nil, errors.New("bootstrap: BuildHandler called before Startup")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg != nil && coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	// A nil *mongo.Client must not become a non-nil Pinger.
	var pinger healthfeature.Pinger
	if deps.MongoClient != nil {
		pinger = deps.MongoClient
	}
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(pinger, logger)))

	// Authentication
	loginHandler := loginfeature.NewHandler(sessionMgr, errLog, rt.local, rt.events, rt.limiter, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	googleHandler := authgooglefeature.NewHandler(sessionMgr, errLog, rt.google, rt.events, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, rt.events, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	r.Group(func(pr chi.Router) {
		pr.Use(sessionMgr.RequireSignedIn)
		userinfofeature.MountRoutes(pr, userinfofeature.NewHandler(rt.local, logger))
	})

	// Rotations
	groupsHandler := groupsfeature.NewHandler(rt.turns, errLog, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	notesHandler := notificationsfeature.NewHandler(rt.turns, errLog, appCfg.NotificationPollInterval, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notesHandler, sessionMgr))

	return r, nil
}
