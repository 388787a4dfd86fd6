// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/dalemusser/whoseturn/internal/app/system/auth"
	"github.com/dalemusser/whoseturn/internal/app/system/identity"
	"github.com/dalemusser/whoseturn/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Events     *identity.Hub
}

func NewHandler(sessionMgr *auth.SessionManager, events *identity.Hub, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Events:     events,
	}
}

// ServeLogout handles POST /logout. It always answers 204; signing out
// twice is harmless.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	who, wasIn, err := h.SessionMgr.SignOut(w, r)
	if err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	if wasIn {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		h.Events.Publish(ctx, identity.Event{Kind: identity.SignedOut, Identity: who})
		h.Log.Info("signed out", zap.String("user_id", who.ID))
	}
	w.WriteHeader(http.StatusNoContent)
}
