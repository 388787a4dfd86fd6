// Package memstore provides in-memory implementations of the group,
// notification, user and OAuth-state stores. They back storage_type=memory
// and stand in for MongoDB in unit tests.
//
// Each collection is guarded by its own mutex; every mutation works on a
// private copy of the record so callers never share slices with the store.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/dalemusser/whoseturn/internal/app/store/storeerr"
	"github.com/dalemusser/whoseturn/internal/domain/models"
)

// Groups is an insertion-ordered group collection.
type Groups struct {
	mu     sync.RWMutex
	groups []models.Group
}

func NewGroups() *Groups {
	return &Groups{}
}

func cloneGroup(g models.Group) models.Group {
	g.Members = slices.Clone(g.Members)
	return g
}

func (s *Groups) indexOf(id string) int {
	return slices.IndexFunc(s.groups, func(g models.Group) bool { return g.ID == id })
}

func (s *Groups) Get(_ context.Context, id string) (models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Group{}, storeerr.ErrNotFound
	}
	return cloneGroup(s.groups[i]), nil
}

func (s *Groups) Insert(_ context.Context, g models.Group) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(g.ID) >= 0 {
		return models.Group{}, storeerr.ErrDuplicateID
	}
	g.Version = 1
	s.groups = append(s.groups, cloneGroup(g))
	return cloneGroup(g), nil
}

func (s *Groups) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return storeerr.ErrNotFound
	}
	s.groups = slices.Delete(s.groups, i, i+1)
	return nil
}

// Replace swaps the stored record for g when g.Version matches what is
// stored. The returned group carries the bumped version.
func (s *Groups) Replace(_ context.Context, g models.Group) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(g.ID)
	if i < 0 {
		return models.Group{}, storeerr.ErrNotFound
	}
	if s.groups[i].Version != g.Version {
		return models.Group{}, storeerr.ErrVersionConflict
	}
	g.Version++
	s.groups[i] = cloneGroup(g)
	return cloneGroup(g), nil
}

func (s *Groups) ListForUser(_ context.Context, userID string) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Group{}
	for _, g := range s.groups {
		if g.HasUser(userID) {
			out = append(out, cloneGroup(g))
		}
	}
	return out, nil
}

func (s *Groups) ListByMemberEmail(_ context.Context, email string) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Group{}
	for _, g := range s.groups {
		if slices.ContainsFunc(g.Members, func(m models.Member) bool { return m.Email == email }) {
			out = append(out, cloneGroup(g))
		}
	}
	return out, nil
}

// All returns every stored group in insertion order.
func (s *Groups) All(_ context.Context) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, cloneGroup(g))
	}
	return out, nil
}
