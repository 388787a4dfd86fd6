// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

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
	return &Store{c: db.Collection("groups")}
}

// EnsureIndexes creates the lookup indexes used by ListForUser and
// ListByMemberEmail.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "members.id", Value: 1}}, Options: options.Index().SetName("idx_group_member_id")},
		{Keys: bson.D{{Key: "created_by", Value: 1}}, Options: options.Index().SetName("idx_group_created_by")},
		{Keys: bson.D{{Key: "members.email", Value: 1}}, Options: options.Index().SetName("idx_group_member_email")},
	})
	return err
}

func (s *Store) Get(ctx context.Context, id string) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, storeerr.ErrNotFound
		}
		return models.Group{}, err
	}
	return g, nil
}

// Insert stores a new group at version 1.
func (s *Store) Insert(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now
	g.Version = 1
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, storeerr.ErrDuplicateID
		}
		return models.Group{}, err
	}
	return g, nil
}

// Remove deletes a group by ID.
func (s *Store) Remove(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storeerr.ErrNotFound
	}
	return nil
}

// Replace writes g over the stored record only if the stored version still
// equals g.Version. The returned group carries the new version.
func (s *Store) Replace(ctx context.Context, g models.Group) (models.Group, error) {
	expected := g.Version
	g.Version = expected + 1
	g.UpdatedAt = time.Now().UTC()

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": g.ID, "version": expected}, g)
	if err != nil {
		return models.Group{}, err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": g.ID})
		if err != nil {
			return models.Group{}, err
		}
		if n == 0 {
			return models.Group{}, storeerr.ErrNotFound
		}
		return models.Group{}, storeerr.ErrVersionConflict
	}
	return g, nil
}

// ListForUser returns groups the user belongs to or created, oldest first.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]models.Group, error) {
	return s.find(ctx, bson.M{"$or": bson.A{
		bson.M{"members.id": userID},
		bson.M{"created_by": userID},
	}})
}

// ListByMemberEmail returns groups with at least one member invited under email.
func (s *Store) ListByMemberEmail(ctx context.Context, email string) ([]models.Group, error) {
	return s.find(ctx, bson.M{"members.email": email})
}

// All returns every group, oldest first.
func (s *Store) All(ctx context.Context) ([]models.Group, error) {
	return s.find(ctx, bson.M{})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	groups := []models.Group{}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
