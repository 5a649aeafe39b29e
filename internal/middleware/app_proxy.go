package middleware

import (
	"net/http"

	"stryvepay/internal/pkg/response"
	"stryvepay/internal/pkg/shopify"

	"github.com/gin-gonic/gin"
)

// AppProxyAuth verifies the signature on storefront requests forwarded by a
// Shopify app proxy and stores the shop under ShopKey. An empty secret skips
// the signature check (local development only).
func AppProxyAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		shop := shopify.NormalizeShop(query.Get("shop"))
		if shop == "" {
			response.CheckoutError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		if secret != "" && !shopify.VerifyProxySignature(query, secret) {
			response.CheckoutError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		c.Set(ShopKey, shop)
		c.Next()
	}
}
