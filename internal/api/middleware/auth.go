package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

const (
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "token"

	IdentityKey = "identity"
	RoleKey     = "role"
)

// Auth resolves the session token from the Authorization header or the
// session cookie and injects the caller's identity into the context.
// Rejections are returned as domain errors for the HTTP error handler. A
// rejected cookie token is expired in the response.
func Auth(auth ports.AuthService, secureCookie bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, fromCookie, err := sessionToken(c)
			if err != nil {
				return err
			}

			id, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if fromCookie && (errors.Is(err, domain.ErrInvalidToken) || errors.Is(err, domain.ErrSessionUserGone)) {
					ExpireSessionCookie(c, secureCookie)
				}
				return err
			}

			c.Set(IdentityKey, *id)
			c.Set(RoleKey, string(id.Role))

			return next(c)
		}
	}
}

// sessionToken prefers a bearer header over the cookie. A header that is
// present but not a bearer credential is rejected rather than ignored.
func sessionToken(c echo.Context) (token string, fromCookie bool, err error) {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", false, domain.ErrInvalidToken
		}
		return strings.TrimSpace(parts[1]), false, nil
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, true, nil
	}
	return "", false, domain.ErrMissingToken
}

// ExpireSessionCookie tells the browser to drop the session cookie.
func ExpireSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
