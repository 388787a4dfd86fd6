// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"errors"

	"github.com/dalemusser/whoseturn/internal/app/store/storeerr"
	"github.com/dalemusser/whoseturn/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_notification_user_ts"),
		},
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "message", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_notification_dedup"),
		},
	})
	return err
}

// Add inserts n unless a notification for the same group with the same
// message was stamped after since. inserted is false when suppressed.
//
// The check and the insert are two round trips; two writers racing inside
// the same millisecond window can both insert. The dedup is advisory.
func (s *Store) Add(ctx context.Context, n models.Notification, since int64) (models.Notification, bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"group_id":  n.GroupID,
		"message":   n.Message,
		"timestamp": bson.M{"$gt": since},
	}).Err()
	if err == nil {
		return models.Notification{}, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Notification{}, false, err
	}

	if _, err := s.c.InsertOne(ctx, n); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Notification{}, false, storeerr.ErrDuplicateID
		}
		return models.Notification{}, false, err
	}
	return n, true, nil
}

// ListForUser returns the user's notifications, newest first.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAsRead sets read=true. Marking an already-read notification succeeds.
func (s *Store) MarkAsRead(ctx context.Context, id string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return storeerr.ErrNotFound
	}
	return nil
}

func (s *Store) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
}
