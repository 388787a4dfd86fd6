package oauthstate_test

import (
	"testing"
	"time"

	"github.com/dalemusser/whoseturn/internal/app/store/oauthstate"
	"github.com/dalemusser/whoseturn/internal/testutil"
)

func TestStore_SaveAndValidate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "state-1", "/groups", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	returnURL, valid, err := store.Validate(ctx, "state-1")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !valid {
		t.Error("expected state to be valid")
	}
	if returnURL != "/groups" {
		t.Errorf("returnURL: got %q, want /groups", returnURL)
	}

	// one-time use
	_, valid, err = store.Validate(ctx, "state-1")
	if err != nil {
		t.Fatalf("second Validate failed: %v", err)
	}
	if valid {
		t.Error("expected state to be consumed")
	}
}

func TestStore_ExpiredState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "old", "", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, valid, _ := store.Validate(ctx, "old"); valid {
		t.Error("expected expired state to be invalid")
	}

	if err := store.Save(ctx, "older", "", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	n, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	// the rejected "old" token is still stored until cleanup runs
	if n != 2 {
		t.Errorf("CleanupExpired: got %d, want 2", n)
	}
}
