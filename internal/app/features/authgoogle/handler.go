// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/whoseturn/internal/app/features/errors"
	"github.com/dalemusser/whoseturn/internal/app/system/auth"
	"github.com/dalemusser/whoseturn/internal/app/system/identity"
	"github.com/dalemusser/whoseturn/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

const defaultReturn = "/groups"

// Handler handles Google OAuth authentication.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Provider   *identity.Google
	Events     *identity.Hub
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	provider *identity.Google,
	events *identity.Hub,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Provider:   provider,
		Events:     events,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Redirects to Google's consent screen.                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.Provider.Configured() {
		h.Log.Warn("Google OAuth not configured")
		uierrors.WriteError(w, http.StatusServiceUnavailable, "google_not_configured", "Google sign-in is not configured.")
		return
	}

	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	url, err := h.Provider.Begin(ctx, returnURL)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to start Google OAuth", err, "Unable to start Google sign-in.")
		return
	}

	h.Log.Debug("initiating Google OAuth flow", zap.String("return_url", returnURL))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code, resolves the account and creates the session.            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		uierrors.WriteError(w, http.StatusUnauthorized, "google_denied", "Google sign-in was cancelled.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	who, returnURL, err := h.Provider.Complete(ctx, query.Get(r, "state"), query.Get(r, "code"))
	switch {
	case errors.Is(err, identity.ErrInvalidState):
		h.Log.Warn("invalid or expired OAuth state")
		uierrors.WriteError(w, http.StatusBadRequest, "invalid_state", "Sign-in link expired. Please try again.")
		return
	case errors.Is(err, identity.ErrInvalidCredentials):
		uierrors.WriteError(w, http.StatusConflict, "account_mismatch", "This email is registered with a different sign-in method.")
		return
	case errors.Is(err, identity.ErrNotConfigured):
		uierrors.WriteError(w, http.StatusServiceUnavailable, "google_not_configured", "Google sign-in is not configured.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "Google OAuth callback failed", err, "Google sign-in failed. Please try again.")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, who); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Unable to create session. Please try again.")
		return
	}
	h.Events.Publish(ctx, identity.Event{Kind: identity.SignedIn, Identity: who})
	h.Log.Info("signed in", zap.String("user_id", who.ID), zap.String("method", identity.MethodGoogle))

	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", defaultReturn), http.StatusSeeOther)
}
