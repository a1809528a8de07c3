package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/bazaar/marketplace-api/docs"
	"github.com/bazaar/marketplace-api/internal/api/handler"
	"github.com/bazaar/marketplace-api/internal/api/middleware"
	"github.com/bazaar/marketplace-api/internal/core/domain"
	"github.com/bazaar/marketplace-api/internal/core/ports"
	mongodb "github.com/bazaar/marketplace-api/internal/infrastructure/db/mongo"
	redisstore "github.com/bazaar/marketplace-api/internal/infrastructure/db/redis"
)

// Deps carries everything the router needs. Mongo and Redis are optional and
// only feed the readiness probe.
type Deps struct {
	Log          zerolog.Logger
	ExposeErrors bool

	Auth  ports.AuthService
	Users ports.UserService
	Guard ports.SessionGuard

	Mongo *mongo.Database
	Redis *redis.Client

	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.ExposeErrors)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.BodyLimit("1M"))

	promCfg := echoprometheus.MiddlewareConfig{Subsystem: "marketplace"}
	var metricsHandler echo.HandlerFunc
	if d.Registry != nil {
		promCfg.Registerer = d.Registry
		metricsHandler = echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry})
	} else {
		metricsHandler = echoprometheus.NewHandler()
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promCfg))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users)
	adminHandler := handler.NewAdminHandler(d.Users)
	authenticate := middleware.Authenticate(d.Guard)
	adminOnly := middleware.Authorize(d.Guard, domain.Roles(domain.RoleAdmin))

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh-token", authHandler.RefreshToken)
	auth.POST("/logout", authHandler.Logout, authenticate)

	// --- Profile routes ---
	users := e.Group("/users", authenticate)
	users.GET("/profile", userHandler.GetProfile)
	users.PUT("/profile", userHandler.UpdateProfile)
	users.PUT("/change-password", userHandler.ChangePassword)

	// --- Admin routes ---
	admin := e.Group("/admin", authenticate, adminOnly)
	admin.GET("/users/:userId", adminHandler.GetUser)
	admin.PATCH("/users/:userId/status", adminHandler.SetStatus)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(readinessChecks(d))

	e.GET("/health", healthHandler.Liveness)           // liveness: is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness: are dependencies up?

	e.GET("/metrics", metricsHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func readinessChecks(d Deps) map[string]handler.Check {
	checks := make(map[string]handler.Check)
	if d.Mongo != nil {
		db := d.Mongo
		checks["mongodb"] = func(ctx context.Context) error {
			return mongodb.Ping(ctx, db)
		}
	}
	if d.Redis != nil {
		rdb := d.Redis
		checks["redis"] = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}
	return checks
}

// requestLogger emits one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
