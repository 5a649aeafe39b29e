package middleware

import (
	"bytes"
	"io"
	"net/http"

	"stryvepay/internal/pkg/response"
	"stryvepay/internal/pkg/shopify"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

// ShopifyWebhookHMAC verifies X-Shopify-Hmac-Sha256 over the raw body and
// puts the body back for the handler. An empty secret disables the check.
func ShopifyWebhookHMAC(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_BODY", "Unable to read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if !shopify.VerifyWebhookHMAC(body, c.GetHeader(shopify.HeaderHmac), secret) {
			response.Error(c, http.StatusUnauthorized, "INVALID_HMAC", "Webhook signature mismatch")
			c.Abort()
			return
		}

		c.Next()
	}
}
