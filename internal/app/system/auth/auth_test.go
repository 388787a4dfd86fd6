package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/whoseturn/internal/app/system/auth"
	"github.com/dalemusser/whoseturn/internal/domain/models"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func TestNewSessionManager_RejectsEmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/groups", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
}

func TestRequireSignedIn_WithUser_Proceeds(t *testing.T) {
	sm := newTestSessionManager(t)

	called := false
	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/groups", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "u1", Name: "Test User", Email: "test@example.com"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestSignIn_CookieRoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	who := models.UserIdentity{ID: "u1", Email: "ada@example.com", Name: "Ada"}

	req1 := httptest.NewRequest("POST", "/login", nil)
	rec1 := httptest.NewRecorder()
	if err := sm.SignIn(rec1, req1, who); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	req2 := httptest.NewRequest("GET", "/me", nil)
	for _, c := range rec1.Result().Cookies() {
		req2.AddCookie(c)
	}

	var got *auth.SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), req2)

	if got == nil {
		t.Fatal("expected user to be loaded from session")
	}
	if got.Identity() != who {
		t.Errorf("identity: got %+v, want %+v", got.Identity(), who)
	}
}

func TestSignOut_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	who := models.UserIdentity{ID: "u1", Email: "ada@example.com", Name: "Ada"}

	req1 := httptest.NewRequest("POST", "/login", nil)
	rec1 := httptest.NewRecorder()
	if err := sm.SignIn(rec1, req1, who); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	req2 := httptest.NewRequest("POST", "/logout", nil)
	for _, c := range rec1.Result().Cookies() {
		req2.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	gotWho, wasIn, err := sm.SignOut(rec2, req2)
	if err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if !wasIn || gotWho != who {
		t.Errorf("SignOut: got (%+v, %v), want (%+v, true)", gotWho, wasIn, who)
	}

	found := false
	for _, c := range rec2.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge != -1 {
				t.Errorf("cookie MaxAge: got %d, want -1", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be set for deletion")
	}
}

func TestLoadSessionUser_TamperedCookieIgnored(t *testing.T) {
	sm := newTestSessionManager(t)

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "garbage"})

	var ok bool
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = auth.CurrentUser(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)

	if ok {
		t.Error("expected no user for a tampered cookie")
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	user, ok := auth.CurrentUser(req)

	if ok {
		t.Error("expected ok to be false when no user in context")
	}
	if user != nil {
		t.Error("expected user to be nil when no user in context")
	}
}
