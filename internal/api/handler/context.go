package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/farmguardian/farm-guardian/internal/api/middleware"
	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// ctxIdentity returns the caller injected by the Auth middleware. A missing
// identity means the route was mounted without the session gate; it is
// treated the same as a request without a token.
func ctxIdentity(c echo.Context) (ports.Identity, error) {
	id, ok := c.Get(middleware.IdentityKey).(ports.Identity)
	if !ok || id.UserID == "" {
		return ports.Identity{}, domain.ErrMissingToken
	}
	return id, nil
}
