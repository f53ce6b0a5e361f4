package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/omegabiochem/WebApp-sub000/internal/models"
	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
	appErrors "github.com/omegabiochem/WebApp-sub000/pkg/errors"
	"github.com/omegabiochem/WebApp-sub000/pkg/response"
)

// RequireRoles admits only callers whose token role is listed. It must run
// after JWT.
func RequireRoles(roles ...workflow.Role) gin.HandlerFunc {
	allowed := make(map[workflow.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		claims, ok := value.(*models.JWTClaims)
		if !exists || !ok || claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(claims.Role)+" may not use this endpoint"))
			c.Abort()
			return
		}
		c.Next()
	}
}
