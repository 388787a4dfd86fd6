package turns

import (
	"context"

	"github.com/dalemusser/whoseturn/internal/domain/models"
)

// GroupRepo is the authoritative group collection. Implementations return
// storeerr.ErrNotFound, storeerr.ErrDuplicateID and
// storeerr.ErrVersionConflict for the matching conditions.
type GroupRepo interface {
	Get(ctx context.Context, id string) (models.Group, error)
	Insert(ctx context.Context, g models.Group) (models.Group, error)
	Remove(ctx context.Context, id string) error
	Replace(ctx context.Context, g models.Group) (models.Group, error)
	ListForUser(ctx context.Context, userID string) ([]models.Group, error)
	ListByMemberEmail(ctx context.Context, email string) ([]models.Group, error)
}

// NotificationRepo is the authoritative notification collection.
// Add suppresses n when a notification with the same group and message was
// stamped after since.
type NotificationRepo interface {
	Add(ctx context.Context, n models.Notification, since int64) (models.Notification, bool, error)
	ListForUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
}
