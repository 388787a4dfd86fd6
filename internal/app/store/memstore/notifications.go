package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/dalemusser/whoseturn/internal/app/store/storeerr"
	"github.com/dalemusser/whoseturn/internal/domain/models"
)

// Notifications is an append-only notification collection.
type Notifications struct {
	mu    sync.RWMutex
	items []models.Notification
}

func NewNotifications() *Notifications {
	return &Notifications{}
}

// Add stores n unless a notification for the same group with the same
// message has a timestamp after since. inserted is false when suppressed.
func (s *Notifications) Add(_ context.Context, n models.Notification, since int64) (models.Notification, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.GroupID == n.GroupID && existing.Message == n.Message && existing.Timestamp > since {
			return models.Notification{}, false, nil
		}
	}
	if slices.ContainsFunc(s.items, func(x models.Notification) bool { return x.ID == n.ID }) {
		return models.Notification{}, false, storeerr.ErrDuplicateID
	}
	s.items = append(s.items, n)
	return n, true, nil
}

// ListForUser returns the user's notifications, newest first.
func (s *Notifications) ListForUser(_ context.Context, userID string) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Notification{}
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].UserID == userID {
			out = append(out, s.items[i])
		}
	}
	slices.SortStableFunc(out, func(a, b models.Notification) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
	return out, nil
}

func (s *Notifications) MarkAsRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return nil
		}
	}
	return storeerr.ErrNotFound
}

func (s *Notifications) UnreadCount(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, x := range s.items {
		if x.UserID == userID && !x.Read {
			n++
		}
	}
	return n, nil
}
