package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/agendahof/agendahof-server/internal/pkg/response"
	"github.com/agendahof/agendahof-server/internal/service"
)

// RequireActiveAccess blocks write operations for accounts whose trial,
// subscription and courtesy access have all lapsed. Reads stay open so the
// user can still see existing data.
func RequireActiveAccess(entitlementService *service.EntitlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		active, err := entitlementService.IsActive(userID)
		if err != nil {
			response.ServerError(c, "entitlement check failed")
			c.Abort()
			return
		}

		if !active {
			response.AccessExpiredError(c, "trial or subscription expired")
			c.Abort()
			return
		}

		c.Next()
	}
}
