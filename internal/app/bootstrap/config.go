// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dalemusser/portfolio/internal/app/system/auditlog"
	"github.com/dalemusser/portfolio/internal/app/system/authutil"
	"github.com/dalemusser/portfolio/internal/app/system/tokens"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "PORTFOLIO"

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// configKey is one configuration setting. Default fixes the type of the
// matching command-line flag.
type configKey struct {
	Name    string
	Default any
	Desc    string
}

// appConfigKeys defines the configuration keys for the portfolio API.
// Each is available as:
//   - a config file key: mongo_uri, session_name, etc.
//   - an environment variable: PORTFOLIO_MONGO_URI, PORTFOLIO_SESSION_NAME, etc.
//   - a command-line flag: --mongo_uri, --session_name, etc.
var appConfigKeys = []configKey{
	{Name: "env", Default: "dev", Desc: "Runtime environment: dev, test or prod"},
	{Name: "log_level", Default: "info", Desc: "Log level: debug, info, warn, error"},
	{Name: "version", Default: "dev", Desc: "Release version reported by the API"},

	{Name: "http_port", Default: 8000, Desc: "HTTP listen port (PORT is also honored)"},
	{Name: "shutdown_timeout", Default: 15 * time.Second, Desc: "Grace period for in-flight requests on shutdown"},
	{Name: "cors_allowed_origins", Default: "http://localhost:3000", Desc: "Comma-separated frontend origins"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "portfolio", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 0, Desc: "MongoDB min connection pool size"},

	{Name: "jwt_secret", Default: "", Desc: "Secret used to sign bearer tokens (required)"},
	{Name: "jwt_expire", Default: "30d", Desc: "Bearer token lifetime (e.g. 30d, 12h, 90m, 3600)"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "portfolio-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "redis_addr", Default: "", Desc: "Redis address for shared rate limits (blank keeps them in memory)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	{Name: "contact_rate_limit", Default: 5, Desc: "Contact messages allowed per IP per window"},
	{Name: "contact_rate_window", Default: time.Hour, Desc: "Contact rate limit window"},
	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per IP and per email per window"},
	{Name: "login_rate_window", Default: 15 * time.Minute, Desc: "Login rate limit window"},
	{Name: "forgot_rate_limit", Default: 5, Desc: "Password reset requests allowed per IP per window"},
	{Name: "forgot_rate_window", Default: time.Hour, Desc: "Password reset rate limit window"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3 configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "portfolio/", Desc: "S3 key prefix"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "S3-compatible endpoint URL (blank for AWS)"},
	{Name: "storage_s3_access_key", Default: "", Desc: "S3 access key (blank uses the default credential chain)"},
	{Name: "storage_s3_secret_key", Default: "", Desc: "S3 secret key"},
	{Name: "storage_s3_public_url", Default: "", Desc: "Public base URL for stored objects (CDN)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank disables mail)"},
	{Name: "mail_smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@localhost", Desc: "From email address"},
	{Name: "mail_from_name", Default: "Portfolio", Desc: "From display name"},

	{Name: "site_name", Default: "Portfolio", Desc: "Site name used in mail"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Frontend base URL for links in mail"},
	{Name: "reset_path", Default: "/reset-password", Desc: "Frontend path that accepts password reset tokens"},
	{Name: "contact_notify_to", Default: "", Desc: "Email notified of new contact messages (blank disables)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Admin bootstrap
	{Name: "admin_name", Default: "Admin", Desc: "Name of the bootstrap admin"},
	{Name: "admin_email", Default: "", Desc: "Email of the admin user (promotes/creates on startup)"},
	{Name: "admin_password", Default: "", Desc: "Initial password for a newly created admin"},

	{Name: "sentry_dsn", Default: "", Desc: "Sentry DSN (blank disables error reporting)"},

	{Name: "timeout_ping", Default: 2 * time.Second, Desc: "Timeout for health pings"},
	{Name: "timeout_short", Default: 5 * time.Second, Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: 10 * time.Second, Desc: "Timeout for list queries"},
	{Name: "timeout_long", Default: 30 * time.Second, Desc: "Timeout for uploads and bulk work"},

	{Name: "reset_cleanup_interval", Default: time.Hour, Desc: "How often expired reset tokens are cleared"},
}

// LoadConfig builds the AppConfig from args and the environment.
//
// Precedence, lowest first: defaults, config file (config.yaml/json/toml in
// the working directory, or --config), .env, environment variables,
// command-line flags. A missing config file or .env is not an error.
func LoadConfig(args []string) (AppConfig, error) {
	fs := pflag.NewFlagSet("portfolio", pflag.ContinueOnError)
	configFile := fs.String("config", "", "Path to a config file (yaml, json or toml)")
	for _, k := range appConfigKeys {
		switch d := k.Default.(type) {
		case string:
			fs.String(k.Name, d, k.Desc)
		case int:
			fs.Int(k.Name, d, k.Desc)
		case bool:
			fs.Bool(k.Name, d, k.Desc)
		case time.Duration:
			fs.Duration(k.Name, d, k.Desc)
		default:
			return AppConfig{}, fmt.Errorf("config key %s: unsupported default type %T", k.Name, d)
		}
	}
	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for _, k := range appConfigKeys {
		v.SetDefault(k.Name, k.Default)
	}
	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("read config %s: %w", *configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return AppConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv("http_port", EnvPrefix+"_HTTP_PORT", "PORT"); err != nil {
		return AppConfig{}, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return AppConfig{}, err
	}

	return AppConfig{
		Env:      strings.ToLower(v.GetString("env")),
		LogLevel: v.GetString("log_level"),
		Version:  v.GetString("version"),

		HTTPPort:           v.GetInt("http_port"),
		ShutdownTimeout:    v.GetDuration("shutdown_timeout"),
		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),

		MongoURI:         v.GetString("mongo_uri"),
		MongoDatabase:    v.GetString("mongo_database"),
		MongoMaxPoolSize: uint64(max(v.GetInt("mongo_max_pool_size"), 0)),
		MongoMinPoolSize: uint64(max(v.GetInt("mongo_min_pool_size"), 0)),

		JWTSecret: v.GetString("jwt_secret"),
		JWTExpire: v.GetString("jwt_expire"),

		SessionKey:    v.GetString("session_key"),
		SessionName:   v.GetString("session_name"),
		SessionDomain: v.GetString("session_domain"),

		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),

		ContactRateLimit:  v.GetInt("contact_rate_limit"),
		ContactRateWindow: v.GetDuration("contact_rate_window"),
		LoginRateLimit:    v.GetInt("login_rate_limit"),
		LoginRateWindow:   v.GetDuration("login_rate_window"),
		ForgotRateLimit:   v.GetInt("forgot_rate_limit"),
		ForgotRateWindow:  v.GetDuration("forgot_rate_window"),

		// File storage
		StorageType:      strings.ToLower(v.GetString("storage_type")),
		StorageLocalPath: v.GetString("storage_local_path"),
		StorageLocalURL:  strings.TrimRight(v.GetString("storage_local_url"), "/"),

		// S3
		StorageS3Region:    v.GetString("storage_s3_region"),
		StorageS3Bucket:    v.GetString("storage_s3_bucket"),
		StorageS3Prefix:    v.GetString("storage_s3_prefix"),
		StorageS3Endpoint:  v.GetString("storage_s3_endpoint"),
		StorageS3AccessKey: v.GetString("storage_s3_access_key"),
		StorageS3SecretKey: v.GetString("storage_s3_secret_key"),
		StorageS3PublicURL: v.GetString("storage_s3_public_url"),

		// Email/SMTP
		MailSMTPHost: v.GetString("mail_smtp_host"),
		MailSMTPPort: v.GetInt("mail_smtp_port"),
		MailSMTPUser: v.GetString("mail_smtp_user"),
		MailSMTPPass: v.GetString("mail_smtp_pass"),
		MailFrom:     v.GetString("mail_from"),
		MailFromName: v.GetString("mail_from_name"),

		SiteName:        v.GetString("site_name"),
		BaseURL:         strings.TrimRight(v.GetString("base_url"), "/"),
		ResetPath:       v.GetString("reset_path"),
		ContactNotifyTo: v.GetString("contact_notify_to"),

		// Audit logging
		AuditLogAuth:  strings.ToLower(v.GetString("audit_log_auth")),
		AuditLogAdmin: strings.ToLower(v.GetString("audit_log_admin")),

		AdminName:     v.GetString("admin_name"),
		AdminEmail:    v.GetString("admin_email"),
		AdminPassword: v.GetString("admin_password"),

		SentryDSN: v.GetString("sentry_dsn"),

		TimeoutPing:   v.GetDuration("timeout_ping"),
		TimeoutShort:  v.GetDuration("timeout_short"),
		TimeoutMedium: v.GetDuration("timeout_medium"),
		TimeoutLong:   v.GetDuration("timeout_long"),

		ResetCleanupInterval: v.GetDuration("reset_cleanup_interval"),
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig rejects settings the service cannot start with.
//
// It catches configuration errors early, before attempting to connect:
// the MongoDB URI format, the token signing settings and a coherent
// storage backend.
func ValidateConfig(cfg AppConfig, logger *zap.Logger) error {
	var errs []error

	switch cfg.Env {
	case "dev", "test", "prod":
	default:
		errs = append(errs, fmt.Errorf("env must be dev, test or prod, got %q", cfg.Env))
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("http_port %d out of range", cfg.HTTPPort))
	}

	if err := wafflemongo.ValidateURI(cfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		errs = append(errs, fmt.Errorf("invalid MongoDB URI: %w", err))
	}
	if cfg.MongoDatabase == "" {
		errs = append(errs, errors.New("mongo_database is required"))
	}

	// Same check Issue makes per request, done once up front.
	if _, err := tokens.New(cfg.JWTSecret, cfg.JWTExpire); err != nil {
		errs = append(errs, fmt.Errorf("jwt settings: %w", err))
	}
	if cfg.Production() && cfg.SessionKey == devSessionKey {
		errs = append(errs, errors.New("session_key must be changed in production"))
	}

	switch cfg.StorageType {
	case "local":
		if cfg.StorageLocalPath == "" || cfg.StorageLocalURL == "" {
			errs = append(errs, errors.New("local storage needs storage_local_path and storage_local_url"))
		}
	case "s3":
		if cfg.StorageS3Bucket == "" || cfg.StorageS3Region == "" {
			errs = append(errs, errors.New("s3 storage needs storage_s3_bucket and storage_s3_region"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage_type must be local or s3, got %q", cfg.StorageType))
	}

	for name, val := range map[string]string{"audit_log_auth": cfg.AuditLogAuth, "audit_log_admin": cfg.AuditLogAdmin} {
		switch val {
		case auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off:
		default:
			errs = append(errs, fmt.Errorf("%s must be all, db, log or off, got %q", name, val))
		}
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authutil.ValidatePassword(cfg.AdminPassword); err != nil {
			errs = append(errs, fmt.Errorf("admin_password: %w", err))
		}
	}

	return errors.Join(errs...)
}
