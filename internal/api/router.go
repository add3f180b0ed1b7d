package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/securebdd/accounts-api/internal/api/handler"
	"github.com/securebdd/accounts-api/internal/api/middleware"
	"github.com/securebdd/accounts-api/internal/auth/token"
	"github.com/securebdd/accounts-api/internal/core/ports"
	"github.com/securebdd/accounts-api/internal/core/service"
	"github.com/securebdd/accounts-api/internal/infrastructure/config"
	mongodb "github.com/securebdd/accounts-api/internal/infrastructure/db/mongo"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil when the service runs on the in-process failure tracker.
func NewRouter(db *mongo.Database, rdb *redis.Client, tracker ports.FailureTracker, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	auditRepo := mongodb.NewDeletionAuditRepository(db)
	codec := token.NewCodec(cfg.TokenSecret, log)
	accountService := service.NewAccountService(userRepo, auditRepo, codec, cfg.TokenTTL, log)
	accountHandler := handler.NewAccountHandler(accountService)

	// --- Global middleware: authentication resolves an identity (never
	// rejects), authorization gates role and ownership once one exists. ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("accounts"))
	e.Use(middleware.Authenticate(codec, userRepo, log))
	e.Use(middleware.Authorize(log))

	// --- Brute-force protection on the credential routes only. Failures
	// are recorded on login alone; register is merely blocked. ---
	registerThrottle := middleware.Throttle(tracker, false, log)
	loginThrottle := middleware.Throttle(tracker, true, log)

	// --- Account routes ---
	e.GET("/home/", accountHandler.Home)
	e.POST("/register/", accountHandler.Register, registerThrottle)
	e.POST("/login/", accountHandler.Login, loginThrottle)
	e.POST("/logout/", accountHandler.Logout)
	e.GET("/user/me/", accountHandler.Profile)
	e.GET("/user/:id/", accountHandler.Profile)

	// --- Admin routes ---
	e.GET("/admin/users/", accountHandler.AdminListUsers)
	e.POST("/admin/users/delete/:id", accountHandler.AdminDeleteUser)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e
}
