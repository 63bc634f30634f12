package middleware

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "gamehub/internal/errors"
)

func errorResponse(c echo.Context, logger *slog.Logger, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logger.ErrorContext(c.Request().Context(), "session check failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
