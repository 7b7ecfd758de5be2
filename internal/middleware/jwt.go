package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/facilitydesk/backend/internal/access"
	"github.com/facilitydesk/backend/internal/auth"
	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/response"
)

const (
	// ContextActor is the key for the resolved access.Actor in gin context.
	ContextActor = "actor"
	// ContextUserEmail is the key for user email in gin context.
	ContextUserEmail = "user_email"
)

// JWT returns a middleware that validates JWT and sets the resolved actor in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextActor, access.Actor{
			UserID:         claims.UserID,
			Role:           models.Role(claims.Role),
			OrganizationID: claims.OrganizationID,
		})
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// Actor returns the resolved actor set by the JWT middleware.
func Actor(c *gin.Context) access.Actor {
	return c.MustGet(ContextActor).(access.Actor)
}
