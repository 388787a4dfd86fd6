// internal/app/features/groups/handler.go
package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/whoseturn/internal/app/features/errors"
	"github.com/dalemusser/whoseturn/internal/app/rotation"
	"github.com/dalemusser/whoseturn/internal/app/turns"
	"go.uber.org/zap"
)

const maxBody = 64 << 10

// Handler serves the rotation endpoints under /groups.
type Handler struct {
	Turns  *turns.Service
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(svc *turns.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Turns: svc, ErrLog: errLog, Log: logger}
}

// rejection maps an Outcome reason to a status and a user-facing message.
func rejection(why rotation.Reason) (int, string) {
	switch why {
	case rotation.NotYourTurn:
		return http.StatusConflict, "It's not your turn yet!"
	case rotation.SelfNudge:
		return http.StatusConflict, "You can't nudge yourself. It's your turn!"
	case rotation.NotAMember:
		return http.StatusForbidden, "You are not a member of this group."
	case rotation.NotCreator:
		return http.StatusForbidden, "Only the group's creator can delete it."
	case turns.NotFound:
		return http.StatusNotFound, "Group not found."
	default:
		return http.StatusConflict, "This group cannot be changed right now."
	}
}

func writeRejection(w http.ResponseWriter, why rotation.Reason) {
	status, msg := rejection(why)
	uierrors.WriteError(w, status, string(why), msg)
}
