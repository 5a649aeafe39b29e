package settlement

import (
	"errors"
	"net/http"

	"stryvepay/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/stryve", h.Notify)
}

// Notify godoc
// @Summary      Stryve settlement notification
// @Description  Resolves or rejects the Shopify payment session named in the payload
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Param        body body Notification true "Settlement payload"
// @Success      200 {object} Result
// @Failure      400 {object} map[string]string
// @Failure      502 {object} map[string]string
// @Router       /webhooks/stryve [post]
func (h *Handler) Notify(c *gin.Context) {
	var n Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		response.CheckoutError(c, http.StatusBadRequest, "Invalid payload")
		return
	}

	res, err := h.service.Settle(c.Request.Context(), n)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingSessionID):
			response.CheckoutError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrPlatformFailure):
			_ = c.Error(err)
			response.CheckoutError(c, http.StatusBadGateway, "Failed to settle payment session")
		default:
			_ = c.Error(err)
			response.CheckoutError(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	response.Checkout(c, http.StatusOK, res)
}
