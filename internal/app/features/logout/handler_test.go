package logout_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/whoseturn/internal/app/features/logout"
	"github.com/dalemusser/whoseturn/internal/app/system/identity"
	"github.com/dalemusser/whoseturn/internal/testutil"
	"go.uber.org/zap"
)

func TestServeLogout_NoSession(t *testing.T) {
	handler := logout.NewHandler(testutil.NewSessionManager(t), identity.NewHub(zap.NewNop()), zap.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, httptest.NewRequest("POST", "/logout", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	c := testutil.CookieNamed(rec, testutil.SessionName)
	if c == nil {
		t.Fatal("expected session cookie to be set for deletion")
	}
	if c.MaxAge != -1 {
		t.Errorf("cookie MaxAge: got %d, want -1 (delete)", c.MaxAge)
	}
}

func TestServeLogout_WithExistingSession(t *testing.T) {
	logger := zap.NewNop()
	sessionMgr := testutil.NewSessionManager(t)
	hub := identity.NewHub(logger)
	var out []identity.Event
	hub.Subscribe(identity.SignedOut, func(_ context.Context, ev identity.Event) error {
		out = append(out, ev)
		return nil
	})
	handler := logout.NewHandler(sessionMgr, hub, logger)

	rec1 := httptest.NewRecorder()
	if err := sessionMgr.SignIn(rec1, httptest.NewRequest("POST", "/login", nil), testutil.Alice); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	req2 := httptest.NewRequest("POST", "/logout", nil)
	for _, c := range rec1.Result().Cookies() {
		req2.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	handler.ServeLogout(rec2, req2)

	if rec2.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec2.Code)
	}
	if c := testutil.CookieNamed(rec2, testutil.SessionName); c == nil || c.MaxAge != -1 {
		t.Errorf("expected deletion cookie, got %+v", c)
	}
	if len(out) != 1 || out[0].Identity != testutil.Alice {
		t.Errorf("expected one signed-out event for Alice, got %+v", out)
	}
}
