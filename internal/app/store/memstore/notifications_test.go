package memstore_test

import (
	"context"
	"testing"

	"github.com/dalemusser/whoseturn/internal/app/store/memstore"
	"github.com/dalemusser/whoseturn/internal/app/store/storeerr"
	"github.com/dalemusser/whoseturn/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const window = int64(5 * 60 * 1000)

func note(id, groupID, msg, user string, ts int64) models.Notification {
	return models.Notification{ID: id, GroupID: groupID, GroupName: "G", Message: msg, UserID: user, Timestamp: ts}
}

func TestNotifications_DedupWindow(t *testing.T) {
	ctx := context.Background()
	s := memstore.NewNotifications()
	t0 := int64(1_000_000_000)

	_, inserted, err := s.Add(ctx, note("n1", "g1", "hi", "bob", t0), t0-window)
	require.NoError(t, err)
	assert.True(t, inserted)

	// same group+message inside the window, different recipient: suppressed
	_, inserted, err = s.Add(ctx, note("n2", "g1", "hi", "carol", t0+1000), t0+1000-window)
	require.NoError(t, err)
	assert.False(t, inserted)

	// different message: stored
	_, inserted, err = s.Add(ctx, note("n3", "g1", "other", "bob", t0+1000), t0+1000-window)
	require.NoError(t, err)
	assert.True(t, inserted)

	// same pair after the window: stored
	later := t0 + window + 1
	_, inserted, err = s.Add(ctx, note("n4", "g1", "hi", "bob", later), later-window)
	require.NoError(t, err)
	assert.True(t, inserted)

	bob, err := s.ListForUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bob, 3)
	assert.Equal(t, "n4", bob[0].ID)

	carol, err := s.ListForUser(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, carol)
}

func TestNotifications_MarkAsReadIdempotent(t *testing.T) {
	ctx := context.Background()
	s := memstore.NewNotifications()
	_, _, err := s.Add(ctx, note("n1", "g1", "a", "bob", 10), 0)
	require.NoError(t, err)
	_, _, err = s.Add(ctx, note("n2", "g1", "b", "bob", 20), 0)
	require.NoError(t, err)

	n, err := s.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.MarkAsRead(ctx, "n1"))
	once, err := s.ListForUser(ctx, "bob")
	require.NoError(t, err)
	require.NoError(t, s.MarkAsRead(ctx, "n1"))
	twice, err := s.ListForUser(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	n, err = s.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.ErrorIs(t, s.MarkAsRead(ctx, "missing"), storeerr.ErrNotFound)
}
