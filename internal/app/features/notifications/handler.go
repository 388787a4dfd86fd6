// internal/app/features/notifications/handler.go
package notifications

import (
	"net/http"
	"slices"
	"time"

	uierrors "github.com/dalemusser/whoseturn/internal/app/features/errors"
	"github.com/dalemusser/whoseturn/internal/app/system/auth"
	"github.com/dalemusser/whoseturn/internal/app/system/timeouts"
	"github.com/dalemusser/whoseturn/internal/app/turns"
	"github.com/dalemusser/whoseturn/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the caller's notifications.
type Handler struct {
	Turns        *turns.Service
	ErrLog       *uierrors.ErrorLogger
	Log          *zap.Logger
	PollInterval time.Duration
}

func NewHandler(svc *turns.Service, errLog *uierrors.ErrorLogger, pollInterval time.Duration, logger *zap.Logger) *Handler {
	return &Handler{Turns: svc, ErrLog: errLog, Log: logger, PollInterval: pollInterval}
}

// ServeList handles GET /notifications, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list notifications")
	defer cancel()

	list, err := h.Turns.ListNotificationsForUser(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list notifications failed", err, "A database error occurred.")
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

// ServeUnreadCount handles GET /notifications/unread-count.
func (h *Handler) ServeUnreadCount(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "unread count")
	defer cancel()

	n, err := h.Turns.UnreadCount(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "unread count failed", err, "A database error occurred.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"unreadCount": n})
}

// HandleMarkRead handles POST /notifications/{id}/read. Notifications that
// belong to someone else answer 404 like unknown ones.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "mark notification read")
	defer cancel()

	mine, err := h.Turns.ListNotificationsForUser(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list notifications failed", err, "A database error occurred.")
		return
	}
	if !slices.ContainsFunc(mine, func(n models.Notification) bool { return n.ID == id }) {
		uierrors.WriteError(w, http.StatusNotFound, string(turns.NotFound), "Notification not found.")
		return
	}

	out, err := h.Turns.MarkNotificationRead(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "mark notification read failed", err, "A database error occurred.")
		return
	}
	if !out.OK {
		uierrors.WriteError(w, http.StatusNotFound, string(out.Reason), "Notification not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
