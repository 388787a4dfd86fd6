package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/whoseturn/internal/app/store/storeerr"
	"github.com/dalemusser/whoseturn/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Users is an account collection keyed by id and by folded email.
type Users struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewUsers() *Users {
	return &Users{byID: map[string]models.User{}, byEmail: map[string]string{}}
}

func (s *Users) Create(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.EmailCI = text.Fold(u.Email)
	if _, ok := s.byID[u.ID]; ok {
		return models.User{}, storeerr.ErrDuplicateID
	}
	if _, ok := s.byEmail[u.EmailCI]; ok {
		return models.User{}, storeerr.ErrDuplicateEmail
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.byID[u.ID] = u
	s.byEmail[u.EmailCI] = u.ID
	return u, nil
}

func (s *Users) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return models.User{}, storeerr.ErrNotFound
	}
	return u, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[text.Fold(email)]
	if !ok {
		return models.User{}, storeerr.ErrNotFound
	}
	return s.byID[id], nil
}

func (s *Users) GetByAuthReturnID(_ context.Context, method, returnID string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.AuthMethod == method && u.AuthReturnID != nil && *u.AuthReturnID == returnID {
			return u, nil
		}
	}
	return models.User{}, storeerr.ErrNotFound
}

func (s *Users) SetAuthReturnID(_ context.Context, id, returnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return storeerr.ErrNotFound
	}
	u.AuthReturnID = &returnID
	u.UpdatedAt = time.Now().UTC()
	s.byID[id] = u
	return nil
}
