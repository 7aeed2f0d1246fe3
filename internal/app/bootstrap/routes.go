// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	aboutfeature "github.com/dalemusser/portfolio/internal/app/features/about"
	auditfeature "github.com/dalemusser/portfolio/internal/app/features/auditlog"
	contactfeature "github.com/dalemusser/portfolio/internal/app/features/contact"
	errorsfeature "github.com/dalemusser/portfolio/internal/app/features/errors"
	healthfeature "github.com/dalemusser/portfolio/internal/app/features/health"
	homefeature "github.com/dalemusser/portfolio/internal/app/features/home"
	loginfeature "github.com/dalemusser/portfolio/internal/app/features/login"
	usersfeature "github.com/dalemusser/portfolio/internal/app/features/users"
	userstore "github.com/dalemusser/portfolio/internal/app/store/users"
	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/app/system/ratelimit"
	"github.com/dalemusser/portfolio/internal/app/system/reqlog"
	"github.com/dalemusser/portfolio/internal/app/system/uploads"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router).
//
// It is called after configuration, DB connections, schema setup and
// Startup have completed. Global middleware runs in this order: request
// id, real IP, request logging, panic recovery, CORS, then credential
// loading so auth.CurrentUser works in every handler.
func BuildHandler(cfg AppConfig, deps DBDeps, svc *Services, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(reqlog.Middleware(logger, "/health"))
	r.Use(middleware.Recoverer)
	r.Use(svc.Reporter.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global auth middleware: resolves a bearer token or session cookie to
	// the current user.
	authn := auth.NewAuthenticator(svc.Sessions, svc.Tokens, userstore.New(db), logger)
	r.Use(authn.LoadUser)

	// JSON 404/405. Set before mounting so sub-routers inherit them.
	errorsHandler := errorsfeature.NewHandler(logger)
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	homeHandler := homefeature.NewHandler(cfg.SiteName+" API", cfg.Version, logger)
	homefeature.Routes(r, homeHandler)

	// Uploaded files, when stored on local disk
	if svc.LocalFile != nil {
		r.Handle(cfg.StorageLocalURL+"/*", uploads.Handler(svc.LocalFile))
	}

	aboutHandler := aboutfeature.NewHandler(db, svc.Storage, svc.AuditLog, logger)
	r.Mount("/about", aboutfeature.Routes(aboutHandler))

	contactHandler := contactfeature.NewHandler(db, svc.Mailer, contactfeature.Notify{
		To:       cfg.ContactNotifyTo,
		SiteName: cfg.SiteName,
		AdminURL: cfg.BaseURL + "/admin/contacts",
	}, svc.AuditLog, logger)
	contactLimit := ratelimit.PerIP(svc.ContactLimit, "Too many messages sent. Please try again later.", logger)
	r.Mount("/contact", contactfeature.Routes(contactHandler, contactLimit))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, svc.Tokens, svc.Sessions, svc.LoginLimiter,
		svc.Mailer, svc.AuditLog, cfg.SiteName, cfg.BaseURL+cfg.ResetPath, logger)
	forgotLimit := ratelimit.PerIP(svc.ForgotLimit, "Too many password reset requests. Please try again later.", logger)
	r.Mount("/auth", loginfeature.Routes(loginHandler, forgotLimit))

	// User management
	usersHandler := usersfeature.NewHandler(db, svc.AuditLog, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	// Audit log (admin)
	auditHandler := auditfeature.NewHandler(db, logger)
	r.Mount("/audit", auditfeature.Routes(auditHandler))

	return r, nil
}
