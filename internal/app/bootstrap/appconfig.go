// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds the service configuration.
//
// Values come from defaults, an optional config file, a .env file,
// PORTFOLIO_* environment variables and command-line flags (see LoadConfig).
// The struct is passed to every lifecycle step, so anything needed during
// startup, request handling or shutdown lives here.
type AppConfig struct {
	Env      string // dev, test or prod
	LogLevel string // debug, info, warn, error
	Version  string // reported by GET / and to Sentry as the release

	// HTTP server
	HTTPPort           int
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string // frontend origins allowed to call the API with credentials

	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string
	JWTExpire string // e.g. 30d, 12h, 90m or seconds

	// Session cookie carrying the token for the browser frontend
	SessionKey    string
	SessionName   string
	SessionDomain string

	// Redis backs the rate limiters when set; otherwise they are per process.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limits
	ContactRateLimit  int
	ContactRateWindow time.Duration
	LoginRateLimit    int
	LoginRateWindow   time.Duration
	ForgotRateLimit   int
	ForgotRateWindow  time.Duration

	// File storage configuration
	StorageType      string // "local" or "s3"
	StorageLocalPath string // directory for uploaded files
	StorageLocalURL  string // URL prefix the files are served under

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string
	StorageS3Endpoint  string // S3-compatible endpoint (MinIO, R2); blank for AWS
	StorageS3AccessKey string // blank uses the default AWS credential chain
	StorageS3SecretKey string
	StorageS3PublicURL string // CDN or public bucket URL used in stored links

	// Email/SMTP configuration
	MailSMTPHost string // blank disables mail
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Site identity and links used in mail
	SiteName        string
	BaseURL         string // frontend base URL, e.g. https://example.com
	ResetPath       string // frontend page receiving reset tokens
	ContactNotifyTo string // owner inbox for new contact messages; blank disables

	// Audit logging: all, db, log or off
	AuditLogAuth  string
	AuditLogAdmin string

	// Admin bootstrap
	AdminName     string
	AdminEmail    string
	AdminPassword string

	// Error reporting
	SentryDSN string

	// Timeouts per operation class
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	ResetCleanupInterval time.Duration
}

// Production reports whether the service runs with production settings.
func (c AppConfig) Production() bool { return c.Env == "prod" }
