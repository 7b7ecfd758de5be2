package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/facilitydesk/backend/internal/access"
	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		actorVal, ok := c.Get(ContextActor)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		actor := actorVal.(access.Actor)
		if _, ok := allowed[actor.Role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaff allows only triage-capable roles (maintenance, admin, super_admin).
func RequireStaff() gin.HandlerFunc {
	return RequireRole(models.RoleMaintenance, models.RoleAdmin, models.RoleSuperAdmin)
}
