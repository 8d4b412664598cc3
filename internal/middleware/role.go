package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/adeldevs/campus-flare-85986/internal/models"
	"github.com/adeldevs/campus-flare-85986/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles.
// It must run after Auth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		profile, ok := ProfileFrom(c)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if _, ok := allowed[profile.Role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
