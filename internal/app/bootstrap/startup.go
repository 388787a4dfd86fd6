// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/whoseturn/internal/app/rotation"
	"github.com/dalemusser/whoseturn/internal/app/system/identity"
	"github.com/dalemusser/whoseturn/internal/app/system/ratelimit"
	"github.com/dalemusser/whoseturn/internal/app/system/workers"
	"github.com/dalemusser/whoseturn/internal/app/turns"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// runtime holds the services shared by the handlers and stopped on Shutdown.
type runtime struct {
	turns   *turns.Service
	local   *identity.Local
	google  *identity.Google
	events  *identity.Hub
	limiter *ratelimit.LoginLimiter
	cleanup *workers.OAuthStateCleanup
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It builds
// the turn service and identity providers, subscribes membership claiming to
// sign-in, and starts the OAuth state cleanup worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.runtime == nil {
		return errors.New("bootstrap: Startup needs DBDeps from ConnectDB")
	}
	rt, err := newRuntime(appCfg, deps, logger)
	if err != nil {
		return err
	}
	*deps.runtime = *rt
	rt.cleanup.Start()
	return nil
}

func newRuntime(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*runtime, error) {
	policy, err := rotation.ParseDeletePolicy(appCfg.DeletePolicy)
	if err != nil {
		return nil, err
	}

	svc := turns.New(deps.Groups, deps.Notifications, rotation.New(), turns.Config{
		DeletePolicy: policy,
		DedupWindow:  appCfg.DedupWindow,
	}, logger)

	events := identity.NewHub(logger)
	events.Subscribe(identity.SignedIn, func(ctx context.Context, ev identity.Event) error {
		_, err := svc.ClaimMemberships(ctx, ev.Identity)
		return err
	})

	google := identity.NewGoogle(identity.GoogleConfig{
		ClientID:     appCfg.GoogleClientID,
		ClientSecret: appCfg.GoogleClientSecret,
		RedirectURL:  strings.TrimRight(appCfg.BaseURL, "/") + "/auth/google/callback",
	}, deps.Users, deps.OAuthStates, logger)
	if !google.Configured() {
		logger.Info("Google sign-in disabled (no google_client_id)")
	}

	return &runtime{
		turns:   svc,
		local:   identity.NewLocal(deps.Users),
		google:  google,
		events:  events,
		limiter: ratelimit.NewLoginLimiter(),
		cleanup: workers.NewOAuthStateCleanup(deps.OAuthStates, logger, appCfg.OAuthCleanupInterval),
	}, nil
}
