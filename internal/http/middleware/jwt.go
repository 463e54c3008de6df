package middleware

import (
	"net/http"
	"strings"

	"kanban/internal/service"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// JWT validates the bearer token and stores its claims on the context.
// A missing or malformed header is 401; a bad or expired token is 403.
func JWT(tokens *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by JWT.
func ClaimsFrom(c *gin.Context) (*service.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*service.Claims)
	return claims, ok
}
