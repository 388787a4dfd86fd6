package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dalemusser/whoseturn/internal/app/store/memstore"
	"github.com/dalemusser/whoseturn/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fixture struct {
	groups *memstore.Groups
	notes  *memstore.Notifications
	closed int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{groups: memstore.NewGroups(), notes: memstore.NewNotifications()}
	_, err := f.groups.Insert(context.Background(), models.Group{
		ID:          "g1",
		Name:        "Dishes",
		Description: "Kitchen duty",
		Members: []models.Member{
			{ID: "alice", Name: "Alice", Email: "alice@x.com"},
			{ID: "bob", Name: "bob", Email: "bob@x.com"},
		},
		CreatedBy: "alice",
		Version:   1,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) open(context.Context, *RootOptions) (*Backend, error) {
	return &Backend{
		Groups:        f.groups,
		Notifications: f.notes,
		Close:         func(context.Context) error { f.closed++; return nil },
	}, nil
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommandWith(f.open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "turnctl", cmd.Use)

	for _, path := range [][]string{
		{"groups", "list"}, {"groups", "show"}, {"groups", "complete"}, {"groups", "nudge"}, {"groups", "delete"},
		{"notifications", "list"}, {"notifications", "unread"}, {"notifications", "read"},
	} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "command %v should exist", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "groups", "list", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGroupsList_Text(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "groups", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "g1")
	assert.Contains(t, out, "Dishes")
	assert.Contains(t, out, "Alice")
	assert.Equal(t, 1, f.closed)
}

func TestGroupsList_ForUserJSON(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "groups", "list", "--user", "carol", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Groups []models.Group `json:"groups"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Data.Groups)
}

func TestGroupsComplete(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "groups", "complete", "g1", "--as", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "now bob's turn")

	g, err := f.groups.Get(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, g.CurrentTurnIndex)

	n, err := f.notes.UnreadCount(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGroupsComplete_OutOfTurnYAML(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "groups", "complete", "g1", "--as", "bob", "--format", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `yaml:"status"`
		Error  struct {
			Code string `yaml:"code"`
		} `yaml:"error"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "not_your_turn", resp.Error.Code)
}

func TestGroupsActions_RequireActor(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "groups", "nudge", "g1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"as"`)
}

func TestGroupsShow_Unknown(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "groups", "show", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "not_found")
}

func TestGroupsDelete_Policy(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "groups", "delete", "g1", "--as", "bob")
	require.Error(t, err)

	_, err = f.run(t, "groups", "delete", "g1", "--as", "bob", "--delete-policy", "any")
	require.NoError(t, err)

	_, err = f.groups.Get(context.Background(), "g1")
	assert.Error(t, err)
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "groups", "nudge", "g1", "--as", "bob")
	require.NoError(t, err)

	out, err := f.run(t, "notifications", "list", "--user", "alice", "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data struct {
			Notifications []models.Notification `json:"notifications"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Notifications, 1)
	note := resp.Data.Notifications[0]
	assert.Equal(t, "bob is reminding you it's your turn!", note.Message)

	out, err = f.run(t, "notifications", "unread", "--user", "alice")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	_, err = f.run(t, "notifications", "read", note.ID)
	require.NoError(t, err)

	out, err = f.run(t, "notifications", "unread", "--user", "alice")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)

	_, err = f.run(t, "notifications", "read", "missing")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestOpenFailure(t *testing.T) {
	cmd := NewRootCommandWith(func(context.Context, *RootOptions) (*Backend, error) {
		return nil, errors.New("connection refused")
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"groups", "list"})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
