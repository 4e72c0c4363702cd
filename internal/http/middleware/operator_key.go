package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// OperatorKeyMiddleware is the second gate on admin endpoints: on top of an
// admin-role token the caller must present the operator override key, checked
// against its bcrypt hash from configuration. An empty hash disables the gate
// (development).
func OperatorKeyMiddleware(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			c.Next()
			return
		}

		key := c.GetHeader("X-Operator-Key")
		if key == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operator key required"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operator key rejected"})
			return
		}
		c.Next()
	}
}
