package payment

import (
	"errors"
	"net/http"

	"stryvepay/internal/middleware"
	"stryvepay/internal/pkg/response"
	"stryvepay/internal/pkg/stryve"
	"stryvepay/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

const notConfiguredMessage = "Stryve is not configured. Please set your API key in the app settings."

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

// RegisterCheckoutRoutes expects rg to sit behind a middleware that sets the shop.
func (h *Handler) RegisterCheckoutRoutes(rg *gin.RouterGroup) {
	rg.POST("/create-stryve-order", h.CreateOrder)
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/payments/callback", h.Callback)
}

// CreateOrder godoc
// @Summary      Create Stryve order
// @Description  Creates a hosted-checkout order on Stryve and returns the payment URL
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        body body CreateOrderRequest true "Checkout payload"
// @Success      200 {object} CreateOrderResponse
// @Failure      400 {object} map[string]string
// @Failure      401 {object} map[string]string
// @Failure      502 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /apps/stryve/create-stryve-order [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	shop := c.GetString(middleware.ShopKey)
	if shop == "" {
		response.CheckoutError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.loggerf("level=warn msg=invalid create-order payload shop=%s err=%v", shop, err)
		response.CheckoutError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.CheckoutError(c, http.StatusBadRequest, "Invalid currency code")
		return
	}

	resp, err := h.service.CreateOrder(c.Request.Context(), shop, req)
	if err != nil {
		h.writeCreateError(c, shop, err)
		return
	}
	response.Checkout(c, http.StatusOK, resp)
}

func (h *Handler) writeCreateError(c *gin.Context, shop string, err error) {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		response.CheckoutError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotConfigured):
		response.CheckoutError(c, http.StatusBadRequest, notConfiguredMessage)
	default:
		if msg, ok := stryve.UpstreamMessage(err); ok {
			response.CheckoutError(c, http.StatusBadGateway, msg)
			return
		}
		h.loggerf("level=error msg=create-order failed shop=%s err=%v", shop, err)
		_ = c.Error(err)
		response.CheckoutError(c, http.StatusInternalServerError, "Failed to create payment")
	}
}

// Callback godoc
// @Summary      Stryve customer return
// @Description  Verifies the payment with Stryve and redirects the customer to the store or the cart
// @Tags         Checkout
// @Produce      html
// @Param        shop query string true "Shop domain"
// @Param        ref query string true "Merchant reference"
// @Param        status query string false "Status reported by Stryve (untrusted)"
// @Param        order_id query string false "Stryve order id"
// @Success      302
// @Failure      400 {string} string "html"
// @Failure      404 {string} string "html"
// @Failure      500 {string} string "html"
// @Router       /payments/callback [get]
func (h *Handler) Callback(c *gin.Context) {
	params := CallbackParams{
		Shop:              c.Query("shop"),
		Ref:               c.Query("ref"),
		MerchantReference: c.Query("merchant_reference"),
		Status:            c.Query("status"),
		Message:           c.Query("message"),
		OrderID:           c.Query("order_id"),
	}

	result, err := h.service.HandleCallback(c.Request.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCallback):
			renderPage(c, http.StatusBadRequest, invalidCallbackPage, params.Shop)
		case errors.Is(err, ErrRecordNotFound):
			renderPage(c, http.StatusNotFound, notFoundPage, params.Shop)
		default:
			h.loggerf("level=error msg=callback failed shop=%s ref=%s err=%v", params.Shop, params.Ref, err)
			_ = c.Error(err)
			renderPage(c, http.StatusInternalServerError, errorPage, params.Shop)
		}
		return
	}

	c.Redirect(http.StatusFound, result.RedirectURL)
}
