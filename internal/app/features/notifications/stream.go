package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	uierrors "github.com/dalemusser/whoseturn/internal/app/features/errors"
	"github.com/dalemusser/whoseturn/internal/app/system/auth"
	"github.com/dalemusser/whoseturn/internal/app/system/poll"
	"github.com/dalemusser/whoseturn/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type unreadEvent struct {
	UnreadCount int64 `json:"unreadCount"`
}

// ServeStream handles GET /notifications/stream. It polls the caller's
// unread count every PollInterval and sends a server-sent "unread" event
// whenever the count changes, until the client disconnects.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		uierrors.WriteError(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming is not supported.")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	p := poll.New(h.PollInterval, func(ctx context.Context) (int64, error) {
		ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
		defer cancel()
		return h.Turns.UnreadCount(ctx, u.ID)
	}, h.Log)

	last := int64(-1)
	_ = p.Run(r.Context(), func(n int64) {
		if n == last {
			return
		}
		last = n
		data, _ := json.Marshal(unreadEvent{UnreadCount: n})
		if _, err := fmt.Fprintf(w, "event: unread\ndata: %s\n\n", data); err != nil {
			h.Log.Debug("notification stream write failed", zap.String("user_id", u.ID), zap.Error(err))
			return
		}
		flusher.Flush()
	})
}
