// internal/domain/models/user.go
package models

import (
	"time"
)

// UserIdentity is the opaque identity handed to the rotation core by an
// identity provider. It is immutable for the lifetime of a session.
type UserIdentity struct {
	ID    string `bson:"id" json:"id"`
	Email string `bson:"email" json:"email"`
	Name  string `bson:"name" json:"name"`
}

// User is a stored account. Only identity providers read or write users;
// the rotation core never sees anything but the UserIdentity.
//
// NOTE:
//   - EmailCI is the folded email used for lookups; Email keeps what the
//     user typed.
//   - PasswordHash is empty for hosted-provider accounts and for local
//     accounts created by the demo sign-in path.
type User struct {
	ID           string  `bson:"_id" json:"id"`
	Email        string  `bson:"email" json:"email"`
	EmailCI      string  `bson:"email_ci" json:"-"`
	Name         string  `bson:"name" json:"name"`
	AuthMethod   string  `bson:"auth_method" json:"auth_method"` // local | google
	AuthReturnID *string `bson:"auth_return_id,omitempty" json:"-"`
	PasswordHash string  `bson:"password_hash,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Identity projects the stored account onto the value the core consumes.
func (u User) Identity() UserIdentity {
	return UserIdentity{ID: u.ID, Email: u.Email, Name: u.Name}
}
