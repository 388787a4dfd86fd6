// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	groupstore "github.com/dalemusser/whoseturn/internal/app/store/groups"
	"github.com/dalemusser/whoseturn/internal/app/store/memstore"
	notificationstore "github.com/dalemusser/whoseturn/internal/app/store/notifications"
	"github.com/dalemusser/whoseturn/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/whoseturn/internal/app/store/users"
	"github.com/dalemusser/whoseturn/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB builds the stores for the configured storage_type. For Mongo it
// connects, pings the primary, and hands every store the same database.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	if appCfg.StorageType == StorageMemory {
		logger.Info("using in-memory stores")
		return DBDeps{
			Groups:        memstore.NewGroups(),
			Notifications: memstore.NewNotifications(),
			Users:         memstore.NewUsers(),
			OAuthStates:   memstore.NewOAuthStates(),
			runtime:       &runtime{},
		}, nil
	}

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	db := client.Database(appCfg.MongoDatabase)
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Groups:        groupstore.New(db),
		Notifications: notificationstore.New(db),
		Users:         userstore.New(db),
		OAuthStates:   oauthstate.New(db),
		runtime:       &runtime{},
	}, nil
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureSchema creates indexes for every store that has them. The in-memory
// stores have none.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	stores := map[string]any{
		"groups":        deps.Groups,
		"notifications": deps.Notifications,
		"users":         deps.Users,
		"oauth_states":  deps.OAuthStates,
	}
	for name, s := range stores {
		ix, ok := s.(indexer)
		if !ok {
			continue
		}
		if err := ix.EnsureIndexes(ctx); err != nil {
			logger.Error("ensure indexes failed", zap.String("collection", name), zap.Error(err))
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return nil
}
