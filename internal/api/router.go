package api

import (
	"fmt"
	"path/filepath"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/phonebook/phonebook-api/internal/api/handler"
	"github.com/phonebook/phonebook-api/internal/api/middleware"
	"github.com/phonebook/phonebook-api/internal/core/ports"
	"github.com/phonebook/phonebook-api/internal/infrastructure/http/handlers"
	"github.com/phonebook/phonebook-api/internal/infrastructure/storage"
)

const metricsSubsystem = "phonebook"

// Deps carries everything the router mounts. Services are built by the caller.
type Deps struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Contacts *handler.ContactHandler

	Authenticator ports.Authenticator
	Readiness     map[string]handlers.Check

	// PublicDir is the static root; avatars are served from PublicDir/avatars.
	PublicDir      string
	AvatarMaxBytes int64

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware(metricsSubsystem))

	authRequired := middleware.Auth(d.Authenticator)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.GET("/verify/:token", d.Auth.Verify)
	auth.POST("/verify", d.Auth.ResendVerification)

	auth.POST("/logout", d.Auth.Logout, authRequired)
	auth.GET("/current", d.Users.Current, authRequired)
	auth.PATCH("", d.Users.UpdateSubscription, authRequired)
	auth.PATCH("/", d.Users.UpdateSubscription, authRequired)
	auth.PATCH("/avatar", d.Users.UpdateAvatar,
		authRequired,
		echomiddleware.BodyLimit(fmt.Sprintf("%dB", d.AvatarMaxBytes)),
	)

	// --- Contacts (owner-scoped) ---
	validID := middleware.ValidID("id")
	contacts := e.Group("/contacts", authRequired)
	contacts.GET("", d.Contacts.List)
	contacts.POST("", d.Contacts.Create, middleware.RequireBody("missing fields"))
	contacts.GET("/:id", d.Contacts.Get, validID)
	contacts.PUT("/:id", d.Contacts.Update, validID, middleware.RequireBody("missing fields"))
	contacts.PATCH("/:id/favorite", d.Contacts.UpdateFavorite, validID, middleware.RequireBody("missing field favorite"))
	contacts.DELETE("/:id", d.Contacts.Delete, validID)

	// --- Static avatars ---
	e.Static("/"+storage.AvatarPrefix, filepath.Join(d.PublicDir, storage.AvatarPrefix))

	// --- Health probes (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)                   // liveness  – is the process alive?
	e.GET("/health/ready", handlers.NewReadinessHandler(d.Readiness).Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
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
				Msg("request")
			return nil
		},
	})
}
