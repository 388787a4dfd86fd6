package groups

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/whoseturn/internal/app/features/errors"
	"github.com/dalemusser/whoseturn/internal/app/system/auth"
	"github.com/dalemusser/whoseturn/internal/app/system/timeouts"
	"github.com/dalemusser/whoseturn/internal/app/turns"
	"github.com/go-chi/chi/v5"
)

// HandleDeleteGroup handles DELETE /groups/{id}.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete group")
	defer cancel()

	out, err := h.Turns.DeleteGroup(ctx, chi.URLParam(r, "id"), u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete group failed", err, "A database error occurred.")
		return
	}
	if !out.OK {
		writeRejection(w, out.Reason)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCompleteTurn handles POST /groups/{id}/complete.
func (h *Handler) HandleCompleteTurn(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "complete turn")
	defer cancel()

	out, err := h.Turns.CompleteTurn(ctx, chi.URLParam(r, "id"), u.ID)
	if errors.Is(err, turns.ErrContention) {
		uierrors.WriteError(w, http.StatusConflict, "conflict", "This group was just changed by someone else. Please try again.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "complete turn failed", err, "A database error occurred.")
		return
	}
	if !out.OK {
		writeRejection(w, out.Reason)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{
		"group":    viewOf(*out.Group, u.ID),
		"notified": out.Delivered,
	})
}

// HandleNudge handles POST /groups/{id}/nudge.
func (h *Handler) HandleNudge(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "nudge")
	defer cancel()

	out, err := h.Turns.NudgeMember(ctx, chi.URLParam(r, "id"), u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "nudge failed", err, "A database error occurred.")
		return
	}
	if !out.OK {
		writeRejection(w, out.Reason)
		return
	}

	msg := "Reminder sent!"
	if !out.Delivered {
		msg = "They were reminded a moment ago."
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{
		"notified": out.Delivered,
		"message":  msg,
	})
}
