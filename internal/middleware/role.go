package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces that the
// authenticated account holds one of the specified roles (USER or
// ADMIN).  Catalog administration — genres, roles, permissions — is
// restricted to ADMIN accounts.  Note this account role is entirely
// separate from in-room membership roles resolved by the permission
// resolver; the two authority domains never mix.  It assumes JWTAuth
// has stored the role claim in the context under "role".
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("role")
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
