package main

import (
	"net/http"

	"stryvepay/internal/config"
	"stryvepay/internal/events"
	"stryvepay/internal/metrics"
	"stryvepay/internal/middleware"
	"stryvepay/internal/modules/merchant"
	"stryvepay/internal/modules/payment"
	"stryvepay/internal/modules/settlement"
	"stryvepay/internal/pkg/jwt"
	"stryvepay/internal/pkg/logger"
	"stryvepay/internal/pkg/shopify"
	"stryvepay/internal/pkg/stryve"
	"stryvepay/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const landingPage = `<!doctype html><html><head><title>Stryve Payments</title></head><body><h1>Stryve Payments</h1><p>Shopify payment gateway for Stryve.</p></body></html>`

func newRouter(
	cfg *config.Config,
	db *gorm.DB,
	appLogger *zap.Logger,
	reg *prometheus.Registry,
	paymentMetrics *metrics.PaymentMetrics,
	publisher events.Publisher,
) (*gin.Engine, error) {
	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}

	paymentRepo := repository.NewStryvePaymentRepository(db)
	settingsRepo := repository.NewMerchantSettingsRepository(db)
	shopDataRepo := repository.NewShopDataRepository(db)

	stryveClient := stryve.NewClient(cfg.Stryve.Timeout, stryve.WithObserver(paymentMetrics.ObserveStryveCall))
	sessionTokens := jwt.New(cfg.Shopify.APISecret, cfg.Shopify.APIKey)

	paymentLog := logger.Printf(appLogger.With(zap.String("component", "payment")))
	paymentService, err := payment.NewService(paymentRepo, settingsRepo, stryveClient, cfg.Shopify.AppURL, paymentLog)
	if err != nil {
		return nil, err
	}
	paymentService.WithPublisher(publisher).WithMetrics(paymentMetrics)
	paymentHandler := payment.NewHandler(paymentService, paymentLog)

	platform := shopify.NewPaymentsClient(cfg.Shopify.PaymentsURL, cfg.Shopify.PaymentToken, cfg.Stryve.Timeout)
	settlementService := settlement.NewService(platform, paymentMetrics, logger.Printf(appLogger.With(zap.String("component", "settlement"))))
	settlementHandler := settlement.NewHandler(settlementService)

	merchantService := merchant.NewService(settingsRepo, paymentRepo, shopDataRepo, logger.Printf(appLogger.With(zap.String("component", "merchant"))))
	merchantHandler := merchant.NewHandler(merchantService)

	r := gin.New()
	r.Use(middleware.ErrorLogger(appLogger.With(zap.String("component", "http"))))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(landingPage))
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	public := r.Group("")
	paymentHandler.RegisterPublicRoutes(public)
	settlementHandler.RegisterRoutes(public)

	// Storefront checkout calls arrive through the Shopify app proxy.
	appProxy := r.Group("/apps/stryve", middleware.AppProxyAuth(cfg.Shopify.APISecret))
	paymentHandler.RegisterCheckoutRoutes(appProxy)

	embedded := r.Group("/api", middleware.SessionTokenAuth(sessionTokens))
	paymentHandler.RegisterCheckoutRoutes(embedded)
	merchantHandler.RegisterAdminRoutes(embedded.Group("/v1"))

	merchantHandler.RegisterWebhookRoutes(r.Group("", middleware.ShopifyWebhookHMAC(cfg.Shopify.APISecret)))

	return r, nil
}
