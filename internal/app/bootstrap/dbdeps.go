// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/whoseturn/internal/app/system/identity"
	"github.com/dalemusser/whoseturn/internal/app/turns"
	"go.mongodb.org/mongo-driver/mongo"
)

// OAuthStateRepo is the one-time OAuth state collection plus the sweep the
// cleanup worker runs.
type OAuthStateRepo interface {
	Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error
	Validate(ctx context.Context, state string) (returnURL string, valid bool, err error)
	CleanupExpired(ctx context.Context) (int64, error)
}

// DBDeps holds the storage back end chosen by storage_type. The Mongo fields
// are nil when running in memory.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Groups        turns.GroupRepo
	Notifications turns.NotificationRepo
	Users         identity.UserRepo
	OAuthStates   OAuthStateRepo

	// Populated by Startup, read by BuildHandler and Shutdown.
	runtime *runtime
}
