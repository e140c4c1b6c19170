package rbac

import (
	"net/http"

	"commerce-platform/internal/auth"
	"commerce-platform/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// RequireAnyRole allows access if the caller holds any of the provided roles.
// Rules:
// - Admin bypasses all checks
// - Guest/Visitor are restricted roles, denied unless explicitly allowed
// Chain this after auth.RequireAuth; it reads the user from context.
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		u, err := auth.CurrentUser(c.Request.Context())
		if err != nil {
			httpapi.AbortUnauthorized(c)
			return
		}

		if IsAdmin(u) {
			c.Next()
			return
		}

		for _, role := range u.Roles {
			if _, ok := allowedSet[role]; ok {
				c.Next()
				return
			}
		}
		httpapi.AbortWithError(c, http.StatusForbidden, "", "You do not have permission to perform this action")
	}
}

// RequireAdmin is shorthand for admin-only routes.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := auth.CurrentUser(c.Request.Context())
		if err != nil {
			httpapi.AbortUnauthorized(c)
			return
		}
		if !IsAdmin(u) {
			httpapi.AbortWithError(c, http.StatusForbidden, "", "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}
