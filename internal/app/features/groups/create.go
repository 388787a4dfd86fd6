package groups

import (
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/whoseturn/internal/app/features/errors"
	"github.com/dalemusser/whoseturn/internal/app/rotation"
	"github.com/dalemusser/whoseturn/internal/app/system/auth"
	"github.com/dalemusser/whoseturn/internal/app/system/htmlsanitize"
	"github.com/dalemusser/whoseturn/internal/app/system/timeouts"
)

type createRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	MemberEmails []string `json:"memberEmails"`
}

// HandleCreateGroup handles POST /groups. The caller becomes the creator and
// holds the first turn.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode create group failed", err, "Invalid JSON body.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create group")
	defer cancel()

	g, err := h.Turns.CreateGroup(ctx,
		htmlsanitize.PlainText(req.Name),
		htmlsanitize.PlainText(req.Description),
		req.MemberEmails,
		u.Identity())
	var verr *rotation.ValidationError
	if errors.As(err, &verr) {
		uierrors.WriteError(w, http.StatusBadRequest, "invalid_"+verr.Field, "Group "+verr.Field+" "+verr.Message+".")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create group failed", err, "A database error occurred.")
		return
	}

	uierrors.WriteJSON(w, http.StatusCreated, viewOf(g, u.ID))
}
