package middleware

import (
	"net/http"
	"strings"

	"stryvepay/internal/pkg/jwt"
	"stryvepay/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ShopKey is the gin context key holding the authenticated shop domain.
const ShopKey = "shop"

// SessionTokenAuth requires a Shopify session token as a bearer token and
// stores the shop it was issued for under ShopKey.
func SessionTokenAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Error(c, http.StatusUnauthorized, "AUTH_INVALID", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired session token")
			c.Abort()
			return
		}

		c.Set(ShopKey, claims.Shop())
		c.Next()
	}
}
