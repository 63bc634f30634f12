package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "jwt"

// SessionCookie builds the cookie for a freshly issued session token. Its
// expiry is the token's own expiry.
func SessionCookie(token *SessionToken, production bool, now time.Time) *http.Cookie {
	maxAge := int(token.ExpiresAt.Sub(now).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token.Token,
		Path:     "/",
		Expires:  token.ExpiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   production,
		SameSite: sameSite(production),
	}
}

// ExpiredSessionCookie overwrites the session cookie with one that is already expired.
func ExpiredSessionCookie(production bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   production,
		SameSite: sameSite(production),
	}
}

func sameSite(production bool) http.SameSite {
	if production {
		return http.SameSiteStrictMode
	}
	return http.SameSiteLaxMode
}
