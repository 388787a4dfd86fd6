// internal/domain/models/group.go
package models

import (
	"time"
)

// Member is one participant in a rotation. ID is unique within a group's
// member list; it equals a UserIdentity.ID once the member has signed in.
type Member struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}

// Group is a rotation: an ordered member list plus the index of the member
// whose turn it is.
//
// NOTE:
//   - Members is never empty and the creator is always present.
//   - 0 <= CurrentTurnIndex < len(Members) holds after every mutation.
//   - Version is bumped on every stored replacement and guards against
//     lost updates from concurrent writers.
type Group struct {
	ID               string   `bson:"_id" json:"id"`
	Name             string   `bson:"name" json:"name"`
	Description      string   `bson:"description" json:"description"`
	Members          []Member `bson:"members" json:"members"`
	CurrentTurnIndex int      `bson:"current_turn_index" json:"currentTurnIndex"`
	CreatedBy        string   `bson:"created_by" json:"createdBy"`

	Version int64 `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// TurnHolder returns the member whose turn it currently is.
// ok is false when the group violates its index invariant.
func (g Group) TurnHolder() (Member, bool) {
	if g.CurrentTurnIndex < 0 || g.CurrentTurnIndex >= len(g.Members) {
		return Member{}, false
	}
	return g.Members[g.CurrentTurnIndex], true
}

// MemberByID finds a member by id.
func (g Group) MemberByID(id string) (Member, bool) {
	for _, m := range g.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// HasUser reports whether userID is a member or the creator of the group.
func (g Group) HasUser(userID string) bool {
	if g.CreatedBy == userID {
		return true
	}
	_, ok := g.MemberByID(userID)
	return ok
}
