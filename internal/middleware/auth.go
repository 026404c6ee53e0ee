package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminAuth gates a route group on the isAdmin flag injected by UserAuth. It
// must run after UserAuth in the chain; the token is only parsed once.
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("isAdmin")
		admin, _ := value.(bool)
		if !exists || !admin {
			log.Println("[AUTH] [ERROR] admin access denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
