// Package turns is the API the presentation layer calls: it loads groups,
// runs the rotation rules, persists the result and delivers notifications.
//
// Expected rejections ("not your turn", self-nudge, unknown ids) come back
// as an Outcome with OK=false. A non-nil error always means the backing
// store failed.
package turns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/whoseturn/internal/app/rotation"
	"github.com/dalemusser/whoseturn/internal/app/store/storeerr"
	"github.com/dalemusser/whoseturn/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotFound is the Outcome reason for an unknown group or notification id.
const NotFound rotation.Reason = "not_found"

// DefaultDedupWindow is how long an identical group+message notification is
// suppressed.
const DefaultDedupWindow = 5 * time.Minute

// maxWriteAttempts bounds the read-validate-replace loop when another writer
// keeps winning the version race.
const maxWriteAttempts = 3

// ErrContention is returned when a group could not be written after
// maxWriteAttempts version conflicts.
var ErrContention = errors.New("group is being modified concurrently; try again")

// Outcome reports whether an operation took effect.
type Outcome struct {
	OK     bool
	Reason rotation.Reason
	// Group is the stored group after the operation, when there is one.
	Group *models.Group
	// Delivered is false when the anti-spam window swallowed the notification.
	Delivered bool
}

func rejected(why rotation.Reason) Outcome { return Outcome{Reason: why} }

// Config tunes the service.
type Config struct {
	DeletePolicy rotation.DeletePolicy
	DedupWindow  time.Duration
}

// Service wires the rotation engine to its stores.
type Service struct {
	groups GroupRepo
	notes  NotificationRepo
	engine *rotation.Engine
	cfg    Config
	newID  func() string
	log    *zap.Logger
}

// New constructs a Service. Zero config values fall back to defaults.
func New(groups GroupRepo, notes NotificationRepo, engine *rotation.Engine, cfg Config, logger *zap.Logger) *Service {
	if cfg.DeletePolicy == "" {
		cfg.DeletePolicy = rotation.DeleteByCreator
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = DefaultDedupWindow
	}
	return &Service{
		groups: groups,
		notes:  notes,
		engine: engine,
		cfg:    cfg,
		newID:  uuid.NewString,
		log:    logger,
	}
}

// CreateGroup builds and stores a new rotation. Invalid input comes back as
// a *rotation.ValidationError.
func (s *Service) CreateGroup(ctx context.Context, name, description string, memberEmails []string, creator models.UserIdentity) (models.Group, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		g, err := s.engine.CreateGroup(name, description, memberEmails, creator)
		if err != nil {
			return models.Group{}, err
		}
		stored, err := s.groups.Insert(ctx, g)
		if errors.Is(err, storeerr.ErrDuplicateID) {
			s.log.Warn("group id collision; regenerating", zap.String("group_id", g.ID))
			continue
		}
		if err != nil {
			return models.Group{}, fmt.Errorf("insert group: %w", err)
		}
		s.log.Info("group created",
			zap.String("group_id", stored.ID),
			zap.String("created_by", creator.ID),
			zap.Int("members", len(stored.Members)))
		return stored, nil
	}
	return models.Group{}, fmt.Errorf("insert group: %w", storeerr.ErrDuplicateID)
}

// DeleteGroup removes a group if the delete policy lets actorID do so.
func (s *Service) DeleteGroup(ctx context.Context, groupID, actorID string) (Outcome, error) {
	g, err := s.groups.Get(ctx, groupID)
	if errors.Is(err, storeerr.ErrNotFound) {
		return rejected(NotFound), nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("load group: %w", err)
	}
	if why := s.cfg.DeletePolicy.Check(g, actorID); why != "" {
		return rejected(why), nil
	}

	if err := s.groups.Remove(ctx, groupID); err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			return rejected(NotFound), nil
		}
		return Outcome{}, fmt.Errorf("remove group: %w", err)
	}
	s.log.Info("group deleted", zap.String("group_id", groupID), zap.String("actor", actorID))
	return Outcome{OK: true}, nil
}

// CompleteTurn advances the group's rotation when actorID holds the turn,
// then notifies the new holder.
func (s *Service) CompleteTurn(ctx context.Context, groupID, actorID string) (Outcome, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		g, err := s.groups.Get(ctx, groupID)
		if errors.Is(err, storeerr.ErrNotFound) {
			return rejected(NotFound), nil
		}
		if err != nil {
			return Outcome{}, fmt.Errorf("load group: %w", err)
		}

		d := s.engine.CompleteTurn(g, actorID)
		if !d.OK() {
			return rejected(d.Rejected), nil
		}

		saved, err := s.groups.Replace(ctx, d.Group)
		switch {
		case errors.Is(err, storeerr.ErrVersionConflict):
			s.log.Debug("complete turn lost version race; retrying",
				zap.String("group_id", groupID), zap.Int("attempt", attempt+1))
			continue
		case errors.Is(err, storeerr.ErrNotFound):
			return rejected(NotFound), nil
		case err != nil:
			return Outcome{}, fmt.Errorf("replace group: %w", err)
		}

		s.log.Info("turn completed",
			zap.String("group_id", groupID),
			zap.String("actor", actorID),
			zap.Int("current_turn_index", saved.CurrentTurnIndex))
		return Outcome{OK: true, Group: &saved, Delivered: s.deliver(ctx, d.Notice)}, nil
	}
	return Outcome{}, ErrContention
}

// NudgeMember sends the current turn holder a reminder from fromUserID.
func (s *Service) NudgeMember(ctx context.Context, groupID, fromUserID string) (Outcome, error) {
	g, err := s.groups.Get(ctx, groupID)
	if errors.Is(err, storeerr.ErrNotFound) {
		return rejected(NotFound), nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("load group: %w", err)
	}

	d := s.engine.NudgeMember(g, fromUserID)
	if !d.OK() {
		return rejected(d.Rejected), nil
	}
	return Outcome{OK: true, Group: &g, Delivered: s.deliver(ctx, d.Notice)}, nil
}

// deliver stores a notice. The group write it follows has already
// succeeded, so a notification failure is logged rather than returned.
func (s *Service) deliver(ctx context.Context, n *rotation.Notice) bool {
	if n == nil {
		return false
	}
	now := s.engine.Now().UnixMilli()
	note := models.Notification{
		ID:        s.newID(),
		GroupID:   n.GroupID,
		GroupName: n.GroupName,
		Message:   n.Message,
		Timestamp: now,
		Read:      false,
		UserID:    n.RecipientID,
	}
	_, inserted, err := s.notes.Add(ctx, note, now-s.cfg.DedupWindow.Milliseconds())
	if err != nil {
		s.log.Error("store notification failed",
			zap.String("group_id", n.GroupID),
			zap.String("recipient", n.RecipientID),
			zap.Error(err))
		return false
	}
	if !inserted {
		s.log.Debug("notification suppressed by anti-spam window",
			zap.String("group_id", n.GroupID),
			zap.String("recipient", n.RecipientID))
	}
	return inserted
}

// ListGroupsForUser returns the groups userID belongs to or created.
func (s *Service) ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	groups, err := s.groups.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// ListNotificationsForUser returns userID's notifications, newest first.
func (s *Service) ListNotificationsForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	notes, err := s.notes.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notes, nil
}

// MarkNotificationRead flags a notification as read. Repeating it is harmless.
func (s *Service) MarkNotificationRead(ctx context.Context, notificationID string) (Outcome, error) {
	err := s.notes.MarkAsRead(ctx, notificationID)
	if errors.Is(err, storeerr.ErrNotFound) {
		return rejected(NotFound), nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("mark notification read: %w", err)
	}
	return Outcome{OK: true}, nil
}

// UnreadCount returns how many of userID's notifications are unread.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.notes.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// ClaimMemberships links members invited under who.Email to who.ID, so an
// invited person sees their groups after signing in. It returns how many
// groups changed.
func (s *Service) ClaimMemberships(ctx context.Context, who models.UserIdentity) (int, error) {
	if who.Email == "" {
		return 0, nil
	}
	groups, err := s.groups.ListByMemberEmail(ctx, who.Email)
	if err != nil {
		return 0, fmt.Errorf("list groups by email: %w", err)
	}

	claimed := 0
	for _, g := range groups {
		ok, err := s.claimOne(ctx, g, who)
		if err != nil {
			return claimed, err
		}
		if ok {
			claimed++
		}
	}
	if claimed > 0 {
		s.log.Info("memberships claimed", zap.String("user_id", who.ID), zap.Int("groups", claimed))
	}
	return claimed, nil
}

func (s *Service) claimOne(ctx context.Context, g models.Group, who models.UserIdentity) (bool, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		next, ok := s.engine.ClaimMember(g, who)
		if !ok {
			return false, nil
		}
		_, err := s.groups.Replace(ctx, next)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, storeerr.ErrNotFound) {
			return false, nil
		}
		if !errors.Is(err, storeerr.ErrVersionConflict) {
			return false, fmt.Errorf("replace group: %w", err)
		}
		if g, err = s.groups.Get(ctx, g.ID); err != nil {
			if errors.Is(err, storeerr.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("reload group: %w", err)
		}
	}
	return false, ErrContention
}
