package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const (
	HeaderHmac   = "X-Shopify-Hmac-Sha256"
	HeaderTopic  = "X-Shopify-Topic"
	HeaderDomain = "X-Shopify-Shop-Domain"
)

// VerifyWebhookHMAC checks the base64 HMAC-SHA256 Shopify puts on webhook
// deliveries against the raw request body.
func VerifyWebhookHMAC(body []byte, signature, secret string) bool {
	signature = strings.TrimSpace(signature)
	if signature == "" || secret == "" {
		return false
	}
	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, SignWebhook(body, secret))
}

func SignWebhook(body []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

// NormalizeShop lowercases a shop handle and appends .myshopify.com to bare
// handles.
func NormalizeShop(shop string) string {
	shop = strings.ToLower(strings.TrimSpace(shop))
	if shop == "" {
		return ""
	}
	if !strings.Contains(shop, ".") {
		shop += ".myshopify.com"
	}
	return shop
}

// VerifyProxySignature checks the signature Shopify adds to app proxy
// requests: hex HMAC-SHA256 over the sorted key=value pairs (repeated values
// joined by commas) concatenated without separators.
func VerifyProxySignature(query url.Values, secret string) bool {
	signature := query.Get("signature")
	if signature == "" || secret == "" {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, SignProxyQuery(query, secret))
}

func SignProxyQuery(query url.Values, secret string) []byte {
	keys := make([]string, 0, len(query))
	for k := range query {
		if k != "signature" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(query[k], ","))
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(b.String()))
	return mac.Sum(nil)
}
