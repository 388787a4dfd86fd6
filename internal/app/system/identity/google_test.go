package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dalemusser/whoseturn/internal/app/store/memstore"
	"github.com/dalemusser/whoseturn/internal/app/system/identity"
	"github.com/dalemusser/whoseturn/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type fakeGoogle struct {
	srv  *httptest.Server
	info map[string]any
}

func newFakeGoogle(t *testing.T, info map[string]any) *fakeGoogle {
	t.Helper()
	fg := &fakeGoogle{info: info}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(fg.info)
	})
	fg.srv = httptest.NewServer(mux)
	t.Cleanup(fg.srv.Close)
	return fg
}

func (fg *fakeGoogle) provider(users identity.UserRepo, states identity.StateStore) *identity.Google {
	return identity.NewGoogle(identity.GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://app.test/auth/google/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   fg.srv.URL + "/auth",
			TokenURL:  fg.srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoURL: fg.srv.URL + "/userinfo",
	}, users, states, zap.NewNop())
}

func beginState(t *testing.T, g *identity.Google, returnURL string) string {
	t.Helper()
	raw, err := g.Begin(context.Background(), returnURL)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestGoogle_CreatesAccountAndReturnsURL(t *testing.T) {
	ctx := context.Background()
	fg := newFakeGoogle(t, map[string]any{"id": "g-1", "email": "ada@example.com", "name": "Ada L", "verified_email": true})
	users := memstore.NewUsers()
	g := fg.provider(users, memstore.NewOAuthStates())

	state := beginState(t, g, "/groups")
	who, ret, err := g.Complete(ctx, state, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "/groups", ret)
	assert.Equal(t, "Ada L", who.Name)
	assert.Equal(t, "ada@example.com", who.Email)

	// Second sign-in resolves to the same account by Google id.
	state = beginState(t, g, "")
	again, _, err := g.Complete(ctx, state, "good-code")
	require.NoError(t, err)
	assert.Equal(t, who.ID, again.ID)
}

func TestGoogle_NameFallback(t *testing.T) {
	tests := []struct {
		name string
		info map[string]any
		want string
	}{
		{"email local part", map[string]any{"id": "g-2", "email": "grace@example.com"}, "grace"},
		{"blank name", map[string]any{"id": "g-3", "email": "linus@example.com", "name": "  "}, "linus"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fg := newFakeGoogle(t, tc.info)
			g := fg.provider(memstore.NewUsers(), memstore.NewOAuthStates())

			who, _, err := g.Complete(context.Background(), beginState(t, g, ""), "good-code")
			require.NoError(t, err)
			assert.Equal(t, tc.want, who.Name)
		})
	}
}

func TestGoogle_StateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	fg := newFakeGoogle(t, map[string]any{"id": "g-1", "email": "ada@example.com"})
	g := fg.provider(memstore.NewUsers(), memstore.NewOAuthStates())

	state := beginState(t, g, "")
	_, _, err := g.Complete(ctx, state, "good-code")
	require.NoError(t, err)

	_, _, err = g.Complete(ctx, state, "good-code")
	assert.ErrorIs(t, err, identity.ErrInvalidState)

	_, _, err = g.Complete(ctx, "forged", "good-code")
	assert.ErrorIs(t, err, identity.ErrInvalidState)
}

func TestGoogle_ExchangeFailure(t *testing.T) {
	fg := newFakeGoogle(t, map[string]any{"id": "g-1", "email": "ada@example.com"})
	g := fg.provider(memstore.NewUsers(), memstore.NewOAuthStates())

	_, _, err := g.Complete(context.Background(), beginState(t, g, ""), "bad-code")
	require.Error(t, err)
	assert.NotErrorIs(t, err, identity.ErrInvalidState)
}

func TestGoogle_DoesNotTakeOverLocalAccount(t *testing.T) {
	ctx := context.Background()
	users := memstore.NewUsers()
	_, err := users.Create(ctx, models.User{ID: "local-1", Email: "ada@example.com", Name: "Ada", AuthMethod: identity.MethodLocal})
	require.NoError(t, err)

	fg := newFakeGoogle(t, map[string]any{"id": "g-1", "email": "ada@example.com"})
	g := fg.provider(users, memstore.NewOAuthStates())

	_, _, err = g.Complete(ctx, beginState(t, g, ""), "good-code")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestGoogle_NotConfigured(t *testing.T) {
	g := identity.NewGoogle(identity.GoogleConfig{}, memstore.NewUsers(), memstore.NewOAuthStates(), zap.NewNop())

	assert.False(t, g.Configured())
	_, err := g.Begin(context.Background(), "")
	assert.ErrorIs(t, err, identity.ErrNotConfigured)
}
