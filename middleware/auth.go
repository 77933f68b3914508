package middleware

import (
	"strings"

	"tutorbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OptionalAuthMiddleware resolves the claimant when a bearer token is present.
// Booking is open to anonymous visitors, so a missing or invalid token never
// blocks the request; it just leaves the claimant unset and the hold flow
// falls back to a guest identity.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		userID, err := utils.ExtractIDFromToken(token)
		if err != nil {
			utils.GetLogger().Debug("ignoring invalid bearer token", zap.Error(err))
			c.Next()
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}
