package mock

import (
	"strings"

	"github.com/gin-gonic/gin"

	"harborview.com/shiftman/security"
)

// authentication rejects requests without a valid bearer token and stores
// the parsed claims on the context.
func authentication(base64Secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(401, gin.H{"code": "unauthorized", "message": "missing bearer token"})
			return
		}

		claims, err := security.ParseSessionToken(strings.TrimPrefix(header, "Bearer "), base64Secret)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"code": "unauthorized", "message": "invalid session token"})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}
