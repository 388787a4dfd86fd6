package login_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/whoseturn/internal/app/features/errors"
	"github.com/dalemusser/whoseturn/internal/app/features/login"
	"github.com/dalemusser/whoseturn/internal/app/store/memstore"
	"github.com/dalemusser/whoseturn/internal/app/system/identity"
	"github.com/dalemusser/whoseturn/internal/app/system/ratelimit"
	"github.com/dalemusser/whoseturn/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type harness struct {
	router http.Handler
	events []identity.Event
}

func newHarness(t *testing.T, limiter *ratelimit.LoginLimiter) *harness {
	t.Helper()
	logger := zap.NewNop()
	hb := &harness{}
	hub := identity.NewHub(logger)
	hub.Subscribe(identity.SignedIn, func(_ context.Context, ev identity.Event) error {
		hb.events = append(hb.events, ev)
		return nil
	})
	provider := identity.NewLocal(memstore.NewUsers()).WithCost(bcrypt.MinCost)
	h := login.NewHandler(testutil.NewSessionManager(t), uierrors.NewErrorLogger(logger), provider, hub, limiter, logger)
	hb.router = login.Routes(h)
	return hb
}

func (hb *harness) do(method, target string, body any) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	hb.router.ServeHTTP(rec, testutil.NewRequest(method, target, body))
	return rec
}

func TestSignUp_CreatesSessionAndAnnounces(t *testing.T) {
	hb := newHarness(t, nil)

	rec := hb.do("POST", "/signup", map[string]string{"email": "ada@example.com", "password": "pw", "name": "Ada"})
	rec.AssertStatus(t, http.StatusCreated)

	var resp struct {
		User struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.User.Name != "Ada" || resp.User.ID == "" {
		t.Errorf("unexpected user: %+v", resp.User)
	}
	if testutil.CookieNamed(rec.ResponseRecorder, testutil.SessionName) == nil {
		t.Error("expected session cookie to be set")
	}
	if len(hb.events) != 1 || hb.events[0].Identity.ID != resp.User.ID {
		t.Errorf("expected one signed-in event for the new user, got %+v", hb.events)
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	hb := newHarness(t, nil)
	body := map[string]string{"email": "ada@example.com", "password": "pw"}

	hb.do("POST", "/signup", body).AssertStatus(t, http.StatusCreated)
	rec := hb.do("POST", "/signup", body)
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "email_taken")
}

func TestSignIn_WrongPassword(t *testing.T) {
	hb := newHarness(t, nil)
	hb.do("POST", "/signup", map[string]string{"email": "ada@example.com", "password": "pw"}).AssertStatus(t, http.StatusCreated)

	rec := hb.do("POST", "/", map[string]string{"email": "ada@example.com", "password": "nope"})
	rec.AssertStatus(t, http.StatusUnauthorized)
	if testutil.CookieNamed(rec.ResponseRecorder, testutil.SessionName) != nil {
		t.Error("no session cookie expected on failure")
	}
	if len(hb.events) != 1 {
		t.Errorf("failed sign-in must not publish, got %d events", len(hb.events))
	}
}

func TestSignIn_UnknownEmailCreatesAccount(t *testing.T) {
	hb := newHarness(t, nil)

	rec := hb.do("POST", "/", map[string]string{"email": "grace@example.com"})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"name":"grace"`)
}

func TestSignIn_BadInput(t *testing.T) {
	hb := newHarness(t, nil)

	hb.do("POST", "/", map[string]string{"email": "nope"}).AssertStatus(t, http.StatusBadRequest)

	rec := testutil.NewRecorder()
	req := testutil.NewRequest("POST", "/", nil)
	hb.router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestSignIn_RateLimited(t *testing.T) {
	limiter := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	t.Cleanup(limiter.Stop)
	hb := newHarness(t, limiter)
	hb.do("POST", "/signup", map[string]string{"email": "ada@example.com", "password": "pw"}).AssertStatus(t, http.StatusCreated)

	// Sign-up success reset the per-email count.
	hb.do("POST", "/", map[string]string{"email": "ada@example.com", "password": "x"}).AssertStatus(t, http.StatusUnauthorized)
	hb.do("POST", "/", map[string]string{"email": "ada@example.com", "password": "x"}).AssertStatus(t, http.StatusUnauthorized)
	hb.do("POST", "/", map[string]string{"email": "ada@example.com", "password": "pw"}).AssertStatus(t, http.StatusTooManyRequests)
}
