package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"gamehub/internal/auth"
	apperrors "gamehub/internal/errors"
)

// RequireRole rejects accounts whose role the policy does not permit. It
// must run after SessionGuard.
func RequireRole(policy auth.RolePolicy, logger *slog.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return errorResponse(c, logger, apperrors.ErrUnauthenticated)
			}
			if !policy.Permits(user) {
				return errorResponse(c, logger, apperrors.ErrForbidden)
			}
			return next(c)
		}
	}
}
