package rotation

import (
	"fmt"
	"strings"

	"github.com/dalemusser/whoseturn/internal/domain/models"
)

// DeletePolicy decides who may delete a group.
type DeletePolicy string

const (
	// DeleteByCreator allows only the group's creator to delete it.
	DeleteByCreator DeletePolicy = "creator"
	// DeleteByAnyone allows any member (or the creator) to delete it.
	DeleteByAnyone DeletePolicy = "any"
)

// ParseDeletePolicy maps a config string onto a DeletePolicy.
// Blank selects DeleteByCreator.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DeleteByCreator:
		return DeleteByCreator, nil
	case DeleteByAnyone:
		return DeleteByAnyone, nil
	}
	return "", fmt.Errorf("unknown delete policy %q (want %q or %q)", s, DeleteByCreator, DeleteByAnyone)
}

// Check returns the reason actorID may not delete g, or "" when allowed.
func (p DeletePolicy) Check(g models.Group, actorID string) Reason {
	switch p {
	case DeleteByAnyone:
		if !g.HasUser(actorID) {
			return NotAMember
		}
		return ""
	default:
		if g.CreatedBy != actorID {
			return NotCreator
		}
		return ""
	}
}
