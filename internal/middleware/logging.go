package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/octobees/campsites/api/internal/logger"
)

// Logging attaches a request-scoped zerolog logger to the request context and
// writes one access line per request.
func Logging(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			rid := RequestIDFromContext(c)
			req := c.Request()
			ctx := logger.WithRequestID(req.Context(), base, rid)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			var event *zerolog.Event
			switch {
			case status >= 500:
				event = zerolog.Ctx(ctx).Error().Err(err)
			case status >= 400:
				event = zerolog.Ctx(ctx).Warn()
			default:
				event = zerolog.Ctx(ctx).Info()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("route", c.Path()).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Msg("request")

			return err
		}
	}
}
