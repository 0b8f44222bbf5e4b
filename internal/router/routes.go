package router

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/octobees/campsites/api/internal/auth"
	"github.com/octobees/campsites/api/internal/config"
	"github.com/octobees/campsites/api/internal/handler"
	"github.com/octobees/campsites/api/internal/metrics"
	middlewarepkg "github.com/octobees/campsites/api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Campsites *handler.CampsitesHandler
	Places    *handler.PlacesHandler
}

// Register wires middleware and all HTTP routes for the API. A nil jwtManager
// leaves the write endpoints open.
func Register(e *echo.Echo, cfg *config.Config, log zerolog.Logger, provider *metrics.Provider, jwtManager *auth.JWTManager, handlers Handlers) {
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(log))
	e.Use(middlewarepkg.Metrics(provider))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
	}))

	e.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(provider.Handler()))

	e.GET("/campsites", handlers.Campsites.List)
	e.GET("/campsites/campsite/:id", handlers.Campsites.Get)

	var guard []echo.MiddlewareFunc
	if jwtManager != nil {
		guard = append(guard, middlewarepkg.JWT(jwtManager), middlewarepkg.RequireScope(auth.ScopeWrite))
	}
	e.POST("/campsites/campsite", handlers.Campsites.Create, guard...)
	e.PATCH("/campsites/campsite/:id", handlers.Campsites.Update, guard...)
	e.DELETE("/campsites/campsite/:id", handlers.Campsites.Delete, guard...)
	upload := append(append([]echo.MiddlewareFunc{}, guard...), middlewarepkg.RateLimiter(cfg.RateLimitUpload))
	e.POST("/campsites/upload", handlers.Campsites.Upload, upload...)

	e.GET("/places", handlers.Places.List)
	e.GET("/places/place/:id", handlers.Places.Get)
}
