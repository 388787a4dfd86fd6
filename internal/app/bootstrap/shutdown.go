// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background work and disconnects MongoDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if rt := deps.runtime; rt != nil {
		if rt.cleanup != nil {
			rt.cleanup.Stop()
		}
		if rt.limiter != nil {
			rt.limiter.Stop()
		}
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting WhoseTurn MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
