// internal/app/bootstrap/run.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Run executes the service lifecycle: LoadConfig, ValidateConfig,
// ConnectDB, EnsureSchema, Startup, BuildHandler, serve until ctx is
// cancelled or SIGINT/SIGTERM arrives, then Shutdown.
func Run(ctx context.Context, args []string) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := ValidateConfig(cfg, logger); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := ConnectDB(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var svc *Services
	serveErr := func() error {
		if err := EnsureSchema(ctx, deps, logger); err != nil {
			return err
		}
		if svc, err = Startup(ctx, cfg, deps, logger); err != nil {
			return err
		}
		handler, err := BuildHandler(cfg, deps, svc, logger)
		if err != nil {
			return err
		}
		return serve(ctx, cfg, handler, logger)
	}()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := Shutdown(shutdownCtx, deps, svc, logger); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

// serve runs the HTTP server until ctx is done, then drains in-flight
// requests for up to cfg.ShutdownTimeout.
func serve(ctx context.Context, cfg AppConfig, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute, // uploads
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// NewLogger builds the zap logger: JSON production config in prod,
// human-readable development config elsewhere.
func NewLogger(env, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	if env == "prod" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
