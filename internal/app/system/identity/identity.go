// Package identity adapts sign-in mechanisms to the UserIdentity value the
// rotation core consumes. Two providers exist: Local (accounts kept in the
// users store, optional bcrypt password) and Google (hosted OAuth2). Session
// lifecycle changes are broadcast on a Hub.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/whoseturn/internal/domain/models"
)

// Auth method names stored on User.AuthMethod.
const (
	MethodLocal  = "local"
	MethodGoogle = "google"
)

var (
	ErrInvalidInput       = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with that email already exists")
	ErrNotConfigured      = errors.New("identity provider is not configured")
	ErrInvalidState       = errors.New("invalid or expired oauth state")
)

// Provider is implemented by every sign-in mechanism.
type Provider interface {
	// Method is the auth method name recorded on accounts it creates.
	Method() string
	// Identity re-reads a signed-in user's identity.
	Identity(ctx context.Context, userID string) (models.UserIdentity, error)
}

// UserRepo is the part of the users store the providers need.
type UserRepo interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByAuthReturnID(ctx context.Context, method, returnID string) (models.User, error)
	SetAuthReturnID(ctx context.Context, id, returnID string) error
}

// localPart returns the part of email before '@'.
func localPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// displayName picks the first usable name: the provider's name, then the
// email local part, then "User".
func displayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if l := localPart(strings.TrimSpace(email)); l != "" {
		return l
	}
	return "User"
}
