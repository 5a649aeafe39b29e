package merchant

import (
	"errors"
	"net/http"
	"strings"

	"stryvepay/internal/middleware"
	"stryvepay/internal/pkg/response"
	"stryvepay/internal/pkg/shopify"
	"stryvepay/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes expects rg to sit behind SessionTokenAuth.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings", h.GetSettings)
	rg.PUT("/settings", h.UpdateSettings)
	rg.GET("/payments", h.ListPayments)
}

// RegisterWebhookRoutes expects rg to sit behind ShopifyWebhookHMAC.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/shopify", h.Webhook)
}

// GetSettings godoc
// @Summary      Get Stryve settings
// @Tags         Settings
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} SettingsResponse
// @Router       /api/v1/settings [get]
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.service.GetSettings(c.Request.Context(), c.GetString(middleware.ShopKey))
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load settings")
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary      Save Stryve settings
// @Tags         Settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body UpdateSettingsRequest true "Settings"
// @Success      200 {object} SettingsResponse
// @Failure      400 {object} map[string]interface{}
// @Router       /api/v1/settings [put]
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	req.APIKey = strings.TrimSpace(req.APIKey)
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(c, errs)
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), c.GetString(middleware.ShopKey), req)
	if err != nil {
		if errors.Is(err, ErrAPIKeyRequired) {
			response.ValidationError(c, map[string]string{"apiKey": "required"})
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save settings")
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// ListPayments godoc
// @Summary      Recent Stryve payments
// @Description  Latest 50 payments for the shop, newest first
// @Tags         Payments
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} PaymentItem
// @Router       /api/v1/payments [get]
func (h *Handler) ListPayments(c *gin.Context) {
	items, err := h.service.RecentPayments(c.Request.Context(), c.GetString(middleware.ShopKey))
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load payments")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": items})
}

// Webhook godoc
// @Summary      Shopify webhooks
// @Description  app/uninstalled, shop/redact, customers/data_request, customers/redact
// @Tags         Webhooks
// @Param        X-Shopify-Topic header string true "Webhook topic"
// @Param        X-Shopify-Shop-Domain header string true "Shop domain"
// @Success      200
// @Failure      404 {object} map[string]interface{}
// @Router       /webhooks/shopify [post]
func (h *Handler) Webhook(c *gin.Context) {
	topic := strings.ToLower(strings.TrimSpace(c.GetHeader(shopify.HeaderTopic)))
	shop := c.GetHeader(shopify.HeaderDomain)
	if shop != "" {
		shop = shopify.NormalizeShop(shop)
	}

	err := h.service.HandleWebhook(c.Request.Context(), topic, shop)
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case errors.Is(err, ErrUnknownTopic):
		response.Error(c, http.StatusNotFound, "UNKNOWN_TOPIC", "Unhandled webhook topic")
	case errors.Is(err, ErrShopRequired):
		response.Error(c, http.StatusBadRequest, "SHOP_REQUIRED", "Missing shop domain header")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process webhook")
	}
}
