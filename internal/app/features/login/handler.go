// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/whoseturn/internal/app/features/errors"
	"github.com/dalemusser/whoseturn/internal/app/system/auth"
	"github.com/dalemusser/whoseturn/internal/app/system/identity"
	"github.com/dalemusser/whoseturn/internal/app/system/ratelimit"
	"github.com/dalemusser/whoseturn/internal/app/system/timeouts"
	"github.com/dalemusser/whoseturn/internal/domain/models"
	"go.uber.org/zap"
)

const maxBody = 64 << 10

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Provider   *identity.Local
	Events     *identity.Hub
	Limiter    *ratelimit.LoginLimiter
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	provider *identity.Local,
	events *identity.Hub,
	limiter *ratelimit.LoginLimiter,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Provider:   provider,
		Events:     events,
		Limiter:    limiter,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signedInResponse struct {
	User models.UserIdentity `json:"user"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	who, err := h.Provider.SignIn(ctx, creds.Email, creds.Password)
	switch {
	case errors.Is(err, identity.ErrInvalidInput):
		uierrors.WriteError(w, http.StatusBadRequest, "invalid_input", "Please enter a valid email address.")
		return
	case errors.Is(err, identity.ErrInvalidCredentials):
		h.Log.Info("sign-in rejected", zap.String("email", creds.Email))
		uierrors.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "sign-in failed", err, "Unable to sign in. Please try again.")
		return
	}

	h.finish(w, r, creds.Email, who, http.StatusOK)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login/signup                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	who, err := h.Provider.SignUp(ctx, creds.Email, creds.Password, creds.Name)
	switch {
	case errors.Is(err, identity.ErrInvalidInput):
		uierrors.WriteError(w, http.StatusBadRequest, "invalid_input", "Email and password are required.")
		return
	case errors.Is(err, identity.ErrEmailTaken):
		uierrors.WriteError(w, http.StatusConflict, "email_taken", "An account with that email already exists.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "sign-up failed", err, "Unable to create account. Please try again.")
		return
	}

	h.Log.Info("account created", zap.String("user_id", who.ID))
	h.finish(w, r, creds.Email, who, http.StatusCreated)
}

// decode reads the JSON body and applies the login rate limit.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var creds credentials
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&creds); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode credentials failed", err, "Invalid JSON body.")
		return creds, false
	}
	if h.Limiter != nil {
		if allowed, reason := h.Limiter.Check(r, creds.Email); !allowed {
			h.Log.Warn("login rate limited",
				zap.String("ip", ratelimit.ClientIP(r)),
				zap.String("email", creds.Email))
			uierrors.WriteError(w, http.StatusTooManyRequests, "rate_limited", reason)
			return creds, false
		}
	}
	return creds, true
}

// finish stores the session and announces the sign-in.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, email string, who models.UserIdentity, status int) {
	if err := h.SessionMgr.SignIn(w, r, who); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Unable to create session. Please try again.")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	h.Events.Publish(ctx, identity.Event{Kind: identity.SignedIn, Identity: who})

	h.Log.Info("signed in", zap.String("user_id", who.ID), zap.String("method", identity.MethodLocal))
	uierrors.WriteJSON(w, status, signedInResponse{User: who})
}
