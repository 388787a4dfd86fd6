package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/whoseturn/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call a handler method directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for inserting test data directly.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// CreateUser inserts a local account and returns it.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         uuid.NewString(),
		Email:      email,
		EmailCI:    text.Fold(email),
		Name:       name,
		AuthMethod: "local",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateGroup inserts a version-1 group whose first member is creator.
// Each extra email becomes a member with a generated id.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, creator models.UserIdentity, emails ...string) models.Group {
	f.t.Helper()

	members := []models.Member{{ID: creator.ID, Name: creator.Name, Email: creator.Email}}
	for _, e := range emails {
		local, _, _ := strings.Cut(e, "@")
		members = append(members, models.Member{ID: uuid.NewString(), Name: local, Email: e})
	}

	now := time.Now().UTC()
	group := models.Group{
		ID:          uuid.NewString(),
		Name:        name,
		Description: "Test group description",
		Members:     members,
		CreatedBy:   creator.ID,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}
