// Package middleware holds the echo middleware guarding the API.
package middleware

import (
	"context"
	"log/slog"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"gamehub/internal/auth"
	apperrors "gamehub/internal/errors"
	"gamehub/internal/metrics"
	"gamehub/internal/model"
)

const (
	claimsContextKey = "session_claims"
	userContextKey   = "session_user"
)

// SessionResolver maps validated claims to the live account.
type SessionResolver interface {
	ResolveSession(ctx context.Context, claims *auth.Claims) (*model.User, error)
}

// SessionConfig wires the session guard.
type SessionConfig struct {
	JWT      *auth.JWTService
	Resolver SessionResolver
	Metrics  metrics.AuthRecorder
	Logger   *slog.Logger
}

// SessionGuard reads the session cookie, validates the token and attaches
// the live account to the context. Missing, tampered and expired tokens
// all fail with the same 401.
func SessionGuard(cfg SessionConfig) echo.MiddlewareFunc {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	parse := echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + auth.SessionCookieName,
		ContextKey:  claimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return cfg.JWT.ValidateToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			cfg.Metrics.RecordSessionRejected(metrics.ReasonInvalidToken)
			return errorResponse(c, cfg.Logger, apperrors.ErrUnauthenticated)
		},
	})

	resolve := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(claimsContextKey).(*auth.Claims)
			if !ok {
				return errorResponse(c, cfg.Logger, apperrors.ErrUnauthenticated)
			}
			user, err := cfg.Resolver.ResolveSession(c.Request().Context(), claims)
			if err != nil {
				return errorResponse(c, cfg.Logger, err)
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return parse(resolve(next))
	}
}

// SessionParser attaches the token claims when the cookie carries a valid
// token and otherwise lets the request through untouched. The account is not
// re-read, so it suits routes that must work for blocked or ended sessions.
func SessionParser(cfg SessionConfig) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + auth.SessionCookieName,
		ContextKey:  claimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return cfg.JWT.ValidateToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// CurrentUser returns the account attached by SessionGuard.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(userContextKey).(*model.User)
	return user, ok && user != nil
}

// CurrentClaims returns the token claims attached by SessionGuard or SessionParser.
func CurrentClaims(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}
