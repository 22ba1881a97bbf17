package security

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminSecretMiddleware guards destructive routes with a shared secret
// carried in the X-Admin-Secret header. An empty configured secret leaves
// the routes open, which is the development default.
func AdminSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret != "" {
			provided := c.GetHeader("X-Admin-Secret")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "unauthorized",
					"message": "admin secret required",
				})
				return
			}
		}
		c.Next()
	}
}
