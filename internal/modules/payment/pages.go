package payment

import (
	"html/template"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

type page struct {
	Title   string
	Message string
}

var (
	invalidCallbackPage = page{Title: "Invalid Callback", Message: "Missing parameters."}
	notFoundPage        = page{Title: "Payment Not Found", Message: "Could not find payment record."}
	errorPage           = page{Title: "Payment Error", Message: "An error occurred."}
)

var pageTemplate = template.Must(template.New("page").Parse(`<html><body><h1>{{.Title}}</h1><p>{{.Message}}</p><p><a href="{{.StoreURL}}">Return to store</a></p></body></html>`))

// renderPage writes a minimal HTML page linking back to the store. Without a
// shop the link points at shopify.com.
func renderPage(c *gin.Context, status int, p page, shop string) {
	storeURL := "https://shopify.com"
	if strings.TrimSpace(shop) != "" {
		storeURL = StoreURL(shop)
	}

	c.Render(status, render.HTML{
		Template: pageTemplate,
		Name:     "page",
		Data: struct {
			page
			StoreURL string
		}{p, storeURL},
	})
}
