package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
)

// requireRoles builds a middleware that aborts with 403 Forbidden unless
// the role set placed into the context by JWTAuth satisfies allowed.
func requireRoles(allowed func([]string) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			have, ok := c.Get("roles").([]string)
			if !ok || !allowed(have) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireEventManager gates event and tier management and the check-in
// scanner.  Creators and organizers both pass; the policy itself lives
// in model.CanManageEvents.
func RequireEventManager() echo.MiddlewareFunc {
	return requireRoles(model.CanManageEvents)
}

// RequireAdmin gates the back office (categories, banners, user roles,
// stats, ticket overrides).  Only organizers pass, per model.IsAdmin.
func RequireAdmin() echo.MiddlewareFunc {
	return requireRoles(model.IsAdmin)
}

