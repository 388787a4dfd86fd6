package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/whoseturn/internal/app/store/storeerr"
	"github.com/dalemusser/whoseturn/internal/domain/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Local keeps accounts in the users store. Signing in with an unknown email
// creates the account on the spot, named after the email's local part.
// Accounts created through SignUp carry a bcrypt hash that SignIn checks.
type Local struct {
	users UserRepo
	newID func() string
	cost  int
}

// NewLocal returns a Local provider over users.
func NewLocal(users UserRepo) *Local {
	return &Local{users: users, newID: uuid.NewString, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func (l *Local) WithCost(cost int) *Local {
	l.cost = cost
	return l
}

func (l *Local) Method() string { return MethodLocal }

func (l *Local) Identity(ctx context.Context, userID string) (models.UserIdentity, error) {
	u, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return models.UserIdentity{}, err
	}
	return u.Identity(), nil
}

// SignUp creates an account. A blank name falls back to the email local part.
func (l *Local) SignUp(ctx context.Context, email, password, name string) (models.UserIdentity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || !strings.Contains(email, "@") {
		return models.UserIdentity{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return models.UserIdentity{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := l.users.Create(ctx, models.User{
		ID:           l.newID(),
		Email:        email,
		Name:         displayName(name, email),
		AuthMethod:   MethodLocal,
		PasswordHash: string(hash),
	})
	if errors.Is(err, storeerr.ErrDuplicateEmail) {
		return models.UserIdentity{}, ErrEmailTaken
	}
	if err != nil {
		return models.UserIdentity{}, fmt.Errorf("create user: %w", err)
	}
	return u.Identity(), nil
}

// SignIn resolves email to an account, creating one when none exists.
func (l *Local) SignIn(ctx context.Context, email, password string) (models.UserIdentity, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return models.UserIdentity{}, ErrInvalidInput
	}

	u, err := l.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.AuthMethod != MethodLocal {
			return models.UserIdentity{}, ErrInvalidCredentials
		}
		if u.PasswordHash != "" {
			if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
				return models.UserIdentity{}, ErrInvalidCredentials
			}
		}
		return u.Identity(), nil
	case errors.Is(err, storeerr.ErrNotFound):
		// fall through to create
	default:
		return models.UserIdentity{}, fmt.Errorf("lookup user: %w", err)
	}

	u, err = l.users.Create(ctx, models.User{
		ID:         l.newID(),
		Email:      email,
		Name:       displayName("", email),
		AuthMethod: MethodLocal,
	})
	if errors.Is(err, storeerr.ErrDuplicateEmail) {
		// Lost a race with a concurrent sign-in for the same email.
		u, err = l.users.GetByEmail(ctx, email)
	}
	if err != nil {
		return models.UserIdentity{}, fmt.Errorf("create user: %w", err)
	}
	return u.Identity(), nil
}
