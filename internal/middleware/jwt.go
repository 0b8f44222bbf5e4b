package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/campsites/api/internal/auth"
)

// JWT validates bearer tokens and stores the claims in the request context.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return errorJSON(c, http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return errorJSON(c, http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := manager.ParseToken(strings.TrimSpace(parts[1]))
			if err != nil {
				return errorJSON(c, http.StatusUnauthorized, "invalid token")
			}

			c.Set(ContextKeySubject, claims.Subject)
			c.Set(ContextKeyClaims, claims)

			return next(c)
		}
	}
}

// RequireScope enforces that the authenticated token grants scope. It must run
// after JWT.
func RequireScope(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ContextKeyClaims).(*authpkg.Claims)
			if !ok || claims == nil {
				return errorJSON(c, http.StatusForbidden, "missing scope")
			}
			if !claims.HasScope(scope) {
				return errorJSON(c, http.StatusForbidden, "insufficient scope")
			}
			return next(c)
		}
	}
}

func errorJSON(c echo.Context, status int, detail string) error {
	return c.JSON(status, map[string]string{"status": "error", "detail": detail})
}
