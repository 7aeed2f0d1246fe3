// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Shutdown stops background work and cleanly tears down DB connections and
// other resources. svc may be nil when startup failed part way.
func Shutdown(ctx context.Context, deps DBDeps, svc *Services, logger *zap.Logger) error {
	var errs []error

	if svc != nil {
		if svc.ResetCleanup != nil {
			svc.ResetCleanup.Stop()
		}
		for _, c := range svc.closers {
			c()
		}
		svc.Reporter.Flush(2 * time.Second)
	}

	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			logger.Error("Redis close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
