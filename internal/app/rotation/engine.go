package rotation

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/whoseturn/internal/domain/models"
	"github.com/google/uuid"
)

// Reason names why an action was rejected. The zero value means accepted.
type Reason string

const (
	NotYourTurn  Reason = "not_your_turn"
	SelfNudge    Reason = "self_nudge"
	NotAMember   Reason = "not_a_member"
	NotCreator   Reason = "not_creator"
	InvalidGroup Reason = "invalid_group"
)

// Notice is a notification the caller should deliver after persisting the
// decision's group.
type Notice struct {
	RecipientID string
	GroupID     string
	GroupName   string
	Message     string
}

// Decision is the outcome of CompleteTurn or NudgeMember.
type Decision struct {
	Group    models.Group
	Notice   *Notice
	Rejected Reason
}

// OK reports whether the action was accepted.
func (d Decision) OK() bool { return d.Rejected == "" }

func reject(g models.Group, why Reason) Decision {
	return Decision{Group: g, Rejected: why}
}

// ValidationError is returned by CreateGroup for bad input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Engine applies the rotation rules.
type Engine struct {
	newID func() string
	now   func() time.Time
}

// New returns an Engine that generates UUID ids and reads the wall clock.
func New() *Engine {
	return NewWith(uuid.NewString, time.Now)
}

// NewWith returns an Engine with caller-supplied id and clock sources.
func NewWith(newID func() string, now func() time.Time) *Engine {
	return &Engine{newID: newID, now: now}
}

// Now exposes the engine's clock so collaborators stamp records consistently.
func (e *Engine) Now() time.Time { return e.now() }

// CreateGroup builds a new rotation. The creator always takes index 0 and
// the first turn; one member follows per non-blank email, in order, with
// duplicates kept.
func (e *Engine) CreateGroup(name, description string, memberEmails []string, creator models.UserIdentity) (models.Group, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return models.Group{}, &ValidationError{Field: "name", Message: "is required"}
	}
	if description == "" {
		return models.Group{}, &ValidationError{Field: "description", Message: "is required"}
	}
	if creator.ID == "" {
		return models.Group{}, &ValidationError{Field: "creator", Message: "must be signed in"}
	}

	members := make([]models.Member, 0, len(memberEmails)+1)
	members = append(members, models.Member{ID: creator.ID, Name: creator.Name, Email: creator.Email})
	for _, email := range memberEmails {
		if strings.TrimSpace(email) == "" {
			continue
		}
		members = append(members, models.Member{
			ID:    e.newID(),
			Name:  MemberName(email),
			Email: email,
		})
	}

	now := e.now().UTC()
	return models.Group{
		ID:               e.newID(),
		Name:             name,
		Description:      description,
		Members:          members,
		CurrentTurnIndex: 0,
		CreatedBy:        creator.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// CompleteTurn advances the rotation when actorID holds the current turn.
// The turn wraps from the last member back to the first.
func (e *Engine) CompleteTurn(g models.Group, actorID string) Decision {
	holder, ok := g.TurnHolder()
	if !ok {
		return reject(g, InvalidGroup)
	}
	if holder.ID != actorID {
		return reject(g, NotYourTurn)
	}

	g.CurrentTurnIndex = (g.CurrentTurnIndex + 1) % len(g.Members)
	g.UpdatedAt = e.now().UTC()
	next := g.Members[g.CurrentTurnIndex]

	return Decision{
		Group: g,
		Notice: &Notice{
			RecipientID: next.ID,
			GroupID:     g.ID,
			GroupName:   g.Name,
			Message:     TurnCompletedMessage(holder.Name),
		},
	}
}

// NudgeMember reminds the turn holder. The nudger must be a member and must
// not be the holder. The group is returned unchanged.
func (e *Engine) NudgeMember(g models.Group, fromUserID string) Decision {
	holder, ok := g.TurnHolder()
	if !ok {
		return reject(g, InvalidGroup)
	}
	if holder.ID == fromUserID {
		return reject(g, SelfNudge)
	}
	from, ok := g.MemberByID(fromUserID)
	if !ok {
		return reject(g, NotAMember)
	}

	return Decision{
		Group: g,
		Notice: &Notice{
			RecipientID: holder.ID,
			GroupID:     g.ID,
			GroupName:   g.Name,
			Message:     NudgeMessage(from.Name),
		},
	}
}

// ClaimMember re-keys the first member invited under the identity's email to
// the identity's id. Nothing changes when the identity is already part of
// the group or no member carries that exact email.
func (e *Engine) ClaimMember(g models.Group, who models.UserIdentity) (models.Group, bool) {
	if who.ID == "" || who.Email == "" {
		return g, false
	}
	if _, already := g.MemberByID(who.ID); already {
		return g, false
	}
	for i, m := range g.Members {
		if m.Email != who.Email {
			continue
		}
		members := make([]models.Member, len(g.Members))
		copy(members, g.Members)
		members[i].ID = who.ID
		if who.Name != "" {
			members[i].Name = who.Name
		}
		g.Members = members
		g.UpdatedAt = e.now().UTC()
		return g, true
	}
	return g, false
}

// MemberName derives a display name from an email: the part before '@'.
func MemberName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// TurnCompletedMessage is sent to the new turn holder.
func TurnCompletedMessage(previous string) string {
	return fmt.Sprintf("It's your turn! %s just completed their turn.", previous)
}

// NudgeMessage is sent to the turn holder when someone nudges them.
func NudgeMessage(from string) string {
	return fmt.Sprintf("%s is reminding you it's your turn!", from)
}
