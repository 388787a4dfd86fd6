package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/whoseturn/internal/app/features/errors"
	"github.com/dalemusser/whoseturn/internal/app/system/auth"
	"github.com/dalemusser/whoseturn/internal/app/system/timeouts"
	"github.com/dalemusser/whoseturn/internal/domain/models"
)

type groupView struct {
	models.Group
	TurnHolder *models.Member `json:"turnHolder,omitempty"`
	IsMyTurn   bool           `json:"isMyTurn"`
}

func viewOf(g models.Group, userID string) groupView {
	v := groupView{Group: g}
	if m, ok := g.TurnHolder(); ok {
		v.TurnHolder = &m
		v.IsMyTurn = m.ID == userID
	}
	return v
}

// ServeGroupsList handles GET /groups: the caller's groups in creation order.
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list groups")
	defer cancel()

	list, err := h.Turns.ListGroupsForUser(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list groups failed", err, "A database error occurred.")
		return
	}

	views := make([]groupView, 0, len(list))
	for _, g := range list {
		views = append(views, viewOf(g, u.ID))
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"groups": views})
}
