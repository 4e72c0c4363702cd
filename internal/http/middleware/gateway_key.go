package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GatewayKeyMiddleware gates the payment callback behind the shared secret
// agreed with the gateway, presented in X-Gateway-Key and compared in
// constant time. An empty secret disables the gate (development).
func GatewayKeyMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		key := c.GetHeader("X-Gateway-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "gateway key rejected"})
			return
		}
		c.Next()
	}
}
