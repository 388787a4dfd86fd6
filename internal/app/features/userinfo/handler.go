// internal/app/features/userinfo/handler.go
package userinfo

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/whoseturn/internal/app/system/auth"
	"github.com/dalemusser/whoseturn/internal/app/system/identity"
	"github.com/dalemusser/whoseturn/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves user information for authenticated sessions.
type Handler struct {
	Accounts identity.Provider
	Log      *zap.Logger
}

// NewHandler creates a new userinfo handler. accounts re-reads the stored
// account so a renamed user sees the current name; it may be nil.
func NewHandler(accounts identity.Provider, logger *zap.Logger) *Handler {
	return &Handler{Accounts: accounts, Log: logger}
}

// ServeUserInfo returns the current user's identity.
//
// Response format:
//
//	{ "isAuthenticated": bool, "id": "...", "name": "...", "email": "..." }
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := auth.CurrentUser(r)
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"isAuthenticated": false,
			"id":              "",
			"name":            "",
			"email":           "",
		})
		return
	}

	who := user.Identity()
	if h.Accounts != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		if fresh, err := h.Accounts.Identity(ctx, who.ID); err == nil {
			who = fresh
		} else {
			h.Log.Debug("userinfo: using session identity", zap.String("user_id", who.ID), zap.Error(err))
		}
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"isAuthenticated": true,
		"id":              who.ID,
		"name":            who.Name,
		"email":           who.Email,
	})
}
