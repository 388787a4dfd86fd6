package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/whoseturn/internal/app/rotation"
	groupstore "github.com/dalemusser/whoseturn/internal/app/store/groups"
	notificationstore "github.com/dalemusser/whoseturn/internal/app/store/notifications"
	"github.com/dalemusser/whoseturn/internal/app/turns"
	"github.com/dalemusser/whoseturn/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// GroupStore is the group repository plus the unscoped listing operators need.
type GroupStore interface {
	turns.GroupRepo
	All(ctx context.Context) ([]models.Group, error)
}

// Backend is the store a command runs against.
type Backend struct {
	Groups        GroupStore
	Notifications turns.NotificationRepo
	Close         func(ctx context.Context) error
}

// Opener connects to a Backend using the global flags.
type Opener func(ctx context.Context, opts *RootOptions) (*Backend, error)

// OpenMongo connects to the configured MongoDB database.
func OpenMongo(ctx context.Context, opts *RootOptions) (*Backend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(opts.MongoDatabase)
	return &Backend{
		Groups:        groupstore.New(db),
		Notifications: notificationstore.New(db),
		Close:         client.Disconnect,
	}, nil
}

// service builds a turn service over b. Logs go to stderr when verbose.
func (b *Backend) service(opts *RootOptions) (*turns.Service, error) {
	policy, err := rotation.ParseDeletePolicy(opts.DeletePolicy)
	if err != nil {
		return nil, err
	}
	logger := zap.NewNop()
	if opts.Verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}
	return turns.New(b.Groups, b.Notifications, rotation.New(), turns.Config{DeletePolicy: policy}, logger), nil
}

// withBackend opens the backend, runs fn, and closes the backend.
func withBackend(ctx context.Context, opts *RootOptions, fn func(*Backend) error) error {
	b, err := opts.open(ctx, opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open store", err)
	}
	if b.Close != nil {
		defer func() { _ = b.Close(context.Background()) }()
	}
	return fn(b)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
