// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/portfolio/internal/app/store/audit"
	userstore "github.com/dalemusser/portfolio/internal/app/store/users"
	"github.com/dalemusser/portfolio/internal/app/system/auditlog"
	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/app/system/errreport"
	"github.com/dalemusser/portfolio/internal/app/system/mailer"
	"github.com/dalemusser/portfolio/internal/app/system/ratelimit"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
	"github.com/dalemusser/portfolio/internal/app/system/tokens"
	"github.com/dalemusser/portfolio/internal/app/system/workers"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Services are the long-lived collaborators built once at startup and
// shared by the handlers.
type Services struct {
	Tokens    *tokens.Service
	Sessions  *auth.SessionManager
	Reporter  *errreport.Service
	Storage   storage.Store
	LocalFile *storage.Local // set only for the local backend; serves /files
	Mailer    *mailer.Mailer
	AuditLog  *auditlog.Logger

	ContactLimit ratelimit.Store
	ForgotLimit  ratelimit.Store
	LoginLimiter *ratelimit.LoginLimiter

	ResetCleanup *workers.ResetTokenCleanup

	closers []func()
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, cfg AppConfig, deps DBDeps, logger *zap.Logger) (*Services, error) {
	timeouts.Configure(timeouts.Config{
		Ping:   cfg.TimeoutPing,
		Short:  cfg.TimeoutShort,
		Medium: cfg.TimeoutMedium,
		Long:   cfg.TimeoutLong,
	})
	t := timeouts.Current()
	logger.Info("request timeouts",
		zap.Duration("ping", t.Ping), zap.Duration("short", t.Short),
		zap.Duration("medium", t.Medium), zap.Duration("long", t.Long))

	reporter, err := errreport.New(cfg.SentryDSN, cfg.Env, cfg.Version, logger)
	if err != nil {
		return nil, err
	}
	respond.Configure(respond.Options{Production: cfg.Production(), Reporter: reporter})

	svc := &Services{Reporter: reporter}

	svc.Tokens, err = tokens.New(cfg.JWTSecret, cfg.JWTExpire)
	if err != nil {
		return nil, err
	}
	svc.Sessions, err = auth.NewSessionManager(cfg.SessionKey, cfg.SessionName, cfg.SessionDomain,
		svc.Tokens.TTL(), cfg.Production(), logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	if err := initStorage(ctx, cfg, svc, logger); err != nil {
		return nil, err
	}

	svc.Mailer = mailer.New(mailer.Config{
		Host:     cfg.MailSMTPHost,
		Port:     cfg.MailSMTPPort,
		Username: cfg.MailSMTPUser,
		Password: cfg.MailSMTPPass,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
	}, logger)
	if !svc.Mailer.Enabled() {
		logger.Info("mail_smtp_host not set, email disabled")
	}

	svc.AuditLog = auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  cfg.AuditLogAuth,
		Admin: cfg.AuditLogAdmin,
	})

	svc.ContactLimit = svc.limiter(deps, "contact", cfg.ContactRateLimit, cfg.ContactRateWindow)
	svc.ForgotLimit = svc.limiter(deps, "forgot", cfg.ForgotRateLimit, cfg.ForgotRateWindow)
	svc.LoginLimiter = ratelimit.NewLoginLimiter(
		svc.limiter(deps, "login_ip", cfg.LoginRateLimit, cfg.LoginRateWindow),
		svc.limiter(deps, "login_email", cfg.LoginRateLimit, cfg.LoginRateWindow),
		logger,
	)

	users := userstore.New(deps.MongoDatabase)
	if err := ensureAdmin(ctx, users, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}

	svc.ResetCleanup = workers.NewResetTokenCleanup(users, logger, cfg.ResetCleanupInterval)
	svc.ResetCleanup.Start()

	return svc, nil
}

// limiter returns a Redis-backed store when Redis is connected, otherwise a
// per-process one.
func (s *Services) limiter(deps DBDeps, name string, limit int, window time.Duration) ratelimit.Store {
	if deps.Redis != nil {
		return ratelimit.NewRedis(deps.Redis, name, limit, window)
	}
	l := ratelimit.New(limit, window)
	s.closers = append(s.closers, l.Close)
	return l
}

func initStorage(ctx context.Context, cfg AppConfig, svc *Services, logger *zap.Logger) error {
	switch cfg.StorageType {
	case "s3":
		s3cfg := storage.S3Config{
			Region:          cfg.StorageS3Region,
			Bucket:          cfg.StorageS3Bucket,
			Prefix:          cfg.StorageS3Prefix,
			Endpoint:        cfg.StorageS3Endpoint,
			AccessKeyID:     cfg.StorageS3AccessKey,
			SecretAccessKey: cfg.StorageS3SecretKey,
			BaseURL:         strings.TrimRight(cfg.StorageS3PublicURL, "/"),
		}
		if s3cfg.Endpoint != "" {
			// S3-compatible services (MinIO, R2) address buckets by path.
			s3cfg.UsePathStyle = true
			if s3cfg.BaseURL == "" {
				s3cfg.BaseURL = strings.TrimRight(s3cfg.Endpoint, "/") + "/" + s3cfg.Bucket
			}
		}
		if strings.Trim(s3cfg.Prefix, "/") == "" {
			s3cfg.Prefix = "portfolio"
		}
		s3store, err := storage.NewS3(ctx, s3cfg)
		if err != nil {
			return err
		}
		svc.Storage = s3store
		logger.Info("file storage: s3", zap.String("bucket", cfg.StorageS3Bucket))
	default:
		local, err := storage.NewLocal(storage.LocalConfig{
			BasePath: cfg.StorageLocalPath,
			BaseURL:  cfg.StorageLocalURL,
		})
		if err != nil {
			return err
		}
		svc.Storage = local
		svc.LocalFile = local
		logger.Info("file storage: local", zap.String("path", cfg.StorageLocalPath))
	}
	return nil
}

// adminStore is the subset of the user store ensureAdmin needs.
type adminStore interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (models.User, error)
}

// ensureAdmin makes sure the configured admin email belongs to an admin.
// An existing user is promoted; a missing one is created with password.
// The stored password of an existing user is never changed.
func ensureAdmin(ctx context.Context, users adminStore, name, email, password string, logger *zap.Logger) error {
	if email == "" {
		return nil
	}

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role == models.RoleAdmin {
			return nil
		}
		role := models.RoleAdmin
		if _, err := users.Update(ctx, u.ID, models.UserPatch{Role: &role}); err != nil {
			return err
		}
		logger.Info("promoted user to admin", zap.String("email", u.Email))
		return nil
	case !errors.Is(err, userstore.ErrNotFound):
		return err
	}

	if password == "" {
		logger.Warn("admin_email set but no admin user exists and admin_password is empty; skipping admin creation",
			zap.String("email", email))
		return nil
	}
	nu := models.User{Name: name, Email: email, Role: models.RoleAdmin}
	nu.SetPassword(password)
	created, err := users.Create(ctx, nu)
	if err != nil {
		return err
	}
	logger.Info("created admin user", zap.String("email", created.Email))
	return nil
}
