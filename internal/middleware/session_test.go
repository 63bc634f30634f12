package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamehub/internal/auth"
	apperrors "gamehub/internal/errors"
	"gamehub/internal/model"
)

type stubResolver struct {
	user *model.User
	err  error
	seen *auth.Claims
}

func (s *stubResolver) ResolveSession(_ context.Context, claims *auth.Claims) (*model.User, error) {
	s.seen = claims
	return s.user, s.err
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newGuardedEcho(jwtSvc *auth.JWTService, resolver SessionResolver) *echo.Echo {
	e := echo.New()
	guard := SessionGuard(SessionConfig{JWT: jwtSvc, Resolver: resolver})
	e.GET("/private", func(c echo.Context) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		claims, _ := CurrentClaims(c)
		return c.JSON(http.StatusOK, echo.Map{"id": user.ID, "jti": claims.ID})
	}, guard)
	return e
}

func doRequest(e *echo.Echo, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSessionGuard_ValidSession(t *testing.T) {
	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	jwtSvc := auth.NewJWTService("secret", time.Hour, auth.WithClock(clk.Now))
	resolver := &stubResolver{user: &model.User{ID: 7, Status: model.StatusActive}}
	e := newGuardedEcho(jwtSvc, resolver)

	token, err := jwtSvc.GenerateSessionToken(7)
	require.NoError(t, err)

	rec := doRequest(e, &http.Cookie{Name: auth.SessionCookieName, Value: token.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"jti":"`+token.ID+`"}`, rec.Body.String())
	require.NotNil(t, resolver.seen)
	assert.Equal(t, uint(7), resolver.seen.UserID)
}

func TestSessionGuard_Rejections(t *testing.T) {
	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	jwtSvc := auth.NewJWTService("secret", time.Hour, auth.WithClock(clk.Now))
	token, err := jwtSvc.GenerateSessionToken(7)
	require.NoError(t, err)
	otherSecret, err := auth.NewJWTService("other", time.Hour, auth.WithClock(clk.Now)).GenerateSessionToken(7)
	require.NoError(t, err)

	tests := []struct {
		name       string
		cookie     *http.Cookie
		advance    time.Duration
		resolver   *stubResolver
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no cookie",
			resolver:   &stubResolver{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHENTICATED",
		},
		{
			name:       "garbage token",
			cookie:     &http.Cookie{Name: auth.SessionCookieName, Value: "not-a-jwt"},
			resolver:   &stubResolver{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHENTICATED",
		},
		{
			name:       "wrong signing key",
			cookie:     &http.Cookie{Name: auth.SessionCookieName, Value: otherSecret.Token},
			resolver:   &stubResolver{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHENTICATED",
		},
		{
			name:       "expired at exactly exp",
			cookie:     &http.Cookie{Name: auth.SessionCookieName, Value: token.Token},
			advance:    time.Hour,
			resolver:   &stubResolver{user: &model.User{ID: 7, Status: model.StatusActive}},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHENTICATED",
		},
		{
			name:       "account gone or revoked",
			cookie:     &http.Cookie{Name: auth.SessionCookieName, Value: token.Token},
			resolver:   &stubResolver{err: apperrors.ErrUnauthenticated},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHENTICATED",
		},
		{
			name:       "suspended account",
			cookie:     &http.Cookie{Name: auth.SessionCookieName, Value: token.Token},
			resolver:   &stubResolver{err: &apperrors.AccountStatusError{Status: model.StatusSuspended}},
			wantStatus: http.StatusForbidden,
			wantCode:   "ACCOUNT_SUSPENDED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := clk.now
			clk.now = start.Add(tt.advance)
			defer func() { clk.now = start }()

			rec := doRequest(newGuardedEcho(jwtSvc, tt.resolver), tt.cookie)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestSessionGuard_ValidOneSecondBeforeExpiry(t *testing.T) {
	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	jwtSvc := auth.NewJWTService("secret", time.Hour, auth.WithClock(clk.Now))
	token, err := jwtSvc.GenerateSessionToken(7)
	require.NoError(t, err)

	clk.now = clk.now.Add(time.Hour - time.Second)
	rec := doRequest(newGuardedEcho(jwtSvc, &stubResolver{user: &model.User{ID: 7}}), &http.Cookie{Name: auth.SessionCookieName, Value: token.Token})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		user       *model.User
		wantStatus int
	}{
		{"admin allowed", &model.User{ID: 1, Role: model.RoleAdmin}, http.StatusOK},
		{"user forbidden", &model.User{ID: 2, Role: model.RoleUser}, http.StatusForbidden},
		{"no session", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			attach := func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					if tt.user != nil {
						c.Set(userContextKey, tt.user)
					}
					return next(c)
				}
			}
			e.GET("/admin", func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			}, attach, RequireRole(auth.AdminOnly, nil))

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestSessionParser(t *testing.T) {
	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	jwtSvc := auth.NewJWTService("secret", time.Hour, auth.WithClock(clk.Now))
	token, err := jwtSvc.GenerateSessionToken(7)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/private", func(c echo.Context) error {
		claims, ok := CurrentClaims(c)
		if !ok {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, claims.ID)
	}, SessionParser(SessionConfig{JWT: jwtSvc}))

	tests := []struct {
		name    string
		cookie  *http.Cookie
		advance time.Duration
		want    string
	}{
		{"valid token", &http.Cookie{Name: auth.SessionCookieName, Value: token.Token}, 0, token.ID},
		{"no cookie", nil, 0, "anonymous"},
		{"garbage token", &http.Cookie{Name: auth.SessionCookieName, Value: "not-a-jwt"}, 0, "anonymous"},
		{"expired token", &http.Cookie{Name: auth.SessionCookieName, Value: token.Token}, time.Hour, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := clk.now
			clk.now = start.Add(tt.advance)
			defer func() { clk.now = start }()

			rec := doRequest(e, tt.cookie)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}
