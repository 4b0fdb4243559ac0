package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
)

// RBAC enforces role-based access control. It must run after Auth and
// panics when given a role the domain does not know.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		if !r.Valid() {
			panic(fmt.Sprintf("rbac: unknown role %q", r))
		}
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(RoleKey).(string)
			if _, ok := allowed[role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
