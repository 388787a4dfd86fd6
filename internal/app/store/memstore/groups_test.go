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

func group(id, creator string, memberIDs ...string) models.Group {
	members := []models.Member{{ID: creator, Name: creator, Email: creator + "@x.com"}}
	for _, m := range memberIDs {
		members = append(members, models.Member{ID: m, Name: m, Email: m + "@x.com"})
	}
	return models.Group{ID: id, Name: id, Description: "d", Members: members, CreatedBy: creator}
}

func TestGroups_InsertRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := memstore.NewGroups()

	stored, err := s.Insert(ctx, group("g1", "alice"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)

	_, err = s.Insert(ctx, group("g1", "bob"))
	assert.ErrorIs(t, err, storeerr.ErrDuplicateID)
}

func TestGroups_ListForUser_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := memstore.NewGroups()
	for _, g := range []models.Group{
		group("g1", "alice", "bob"),
		group("g2", "carol"),
		group("g3", "carol", "alice"),
	} {
		_, err := s.Insert(ctx, g)
		require.NoError(t, err)
	}

	got, err := s.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "g1", got[0].ID)
	assert.Equal(t, "g3", got[1].ID)

	again, err := s.ListForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, got, again)

	none, err := s.ListForUser(ctx, "dave")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGroups_ReplaceVersioning(t *testing.T) {
	ctx := context.Background()
	s := memstore.NewGroups()
	_, err := s.Insert(ctx, group("g1", "alice", "bob"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, group("g2", "alice"))
	require.NoError(t, err)

	first, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	second, err := s.Get(ctx, "g1")
	require.NoError(t, err)

	first.CurrentTurnIndex = 1
	saved, err := s.Replace(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.Version)

	second.Description = "stale"
	_, err = s.Replace(ctx, second)
	assert.ErrorIs(t, err, storeerr.ErrVersionConflict)

	got, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentTurnIndex)
	assert.Equal(t, "d", got.Description)

	other, err := s.Get(ctx, "g2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other.Version)

	_, err = s.Replace(ctx, group("missing", "alice"))
	assert.ErrorIs(t, err, storeerr.ErrNotFound)
}

func TestGroups_ReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := memstore.NewGroups()
	_, err := s.Insert(ctx, group("g1", "alice", "bob"))
	require.NoError(t, err)

	got, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	got.Members[1].ID = "mallory"

	again, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "bob", again.Members[1].ID)
}

func TestGroups_Remove(t *testing.T) {
	ctx := context.Background()
	s := memstore.NewGroups()
	_, err := s.Insert(ctx, group("g1", "alice"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, "g1"))
	assert.ErrorIs(t, s.Remove(ctx, "g1"), storeerr.ErrNotFound)
	_, err = s.Get(ctx, "g1")
	assert.ErrorIs(t, err, storeerr.ErrNotFound)
}

func TestGroups_ListByMemberEmail(t *testing.T) {
	ctx := context.Background()
	s := memstore.NewGroups()
	_, err := s.Insert(ctx, group("g1", "alice", "bob"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, group("g2", "carol"))
	require.NoError(t, err)

	got, err := s.ListByMemberEmail(ctx, "bob@x.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "g1", got[0].ID)
}
