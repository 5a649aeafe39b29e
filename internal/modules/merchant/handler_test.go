package merchant

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stryvepay/internal/database"
	"stryvepay/internal/domain"
	"stryvepay/internal/middleware"
	"stryvepay/internal/pkg/shopify"
	"stryvepay/internal/pkg/stryve"
	"stryvepay/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testShop      = "demo.myshopify.com"
	webhookSecret = "shpss_test"
)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:merchant_test_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, ""))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	svc := NewService(
		repository.NewMerchantSettingsRepository(db),
		repository.NewStryvePaymentRepository(db),
		repository.NewShopDataRepository(db),
		nil,
	)
	h := NewHandler(svc)

	r := gin.New()
	admin := r.Group("/api/v1", func(c *gin.Context) {
		c.Set(middleware.ShopKey, testShop)
		c.Next()
	})
	h.RegisterAdminRoutes(admin)
	h.RegisterWebhookRoutes(r.Group("", middleware.ShopifyWebhookHMAC(webhookSecret)))

	return &testEnv{db: db, router: r}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) webhook(topic, shop string, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", bytes.NewReader(body))
	req.Header.Set(shopify.HeaderTopic, topic)
	req.Header.Set(shopify.HeaderDomain, shop)
	req.Header.Set(shopify.HeaderHmac, signature)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func sign(body []byte) string {
	return base64.StdEncoding.EncodeToString(shopify.SignWebhook(body, webhookSecret))
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func seedPayment(t *testing.T, db *gorm.DB, shop, ref string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&domain.StryvePayment{
		ID:                uuid.NewString(),
		Shop:              shop,
		MerchantReference: ref,
		Amount:            "10.00",
		Currency:          "EGP",
		Status:            domain.PaymentStatusPending,
		PaymentURL:        "https://pay.example/" + ref,
		CallbackURL:       "https://app.example/payments/callback",
		CreatedAt:         createdAt,
	}).Error)
}

func TestSettings_DefaultsWhenMissing(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got SettingsResponse
	decodeData(t, w, &got)
	assert.Equal(t, SettingsResponse{Sandbox: true, ResolvedBaseURL: stryve.SandboxBaseURL}, got)
}

func TestSettings_SaveAndMask(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, http.MethodPut, "/api/v1/settings", `{"apiKey":"  sk_live_abcdef123456  ","baseUrl":"https://stryve.example/api/v1/"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var saved SettingsResponse
	decodeData(t, w, &saved)
	assert.Equal(t, "***123456", saved.APIKey)
	assert.True(t, saved.HasAPIKey)
	assert.True(t, saved.Sandbox)
	assert.False(t, saved.Debug)
	assert.Equal(t, "https://stryve.example/api/v1", saved.ResolvedBaseURL)
	assert.NotContains(t, w.Body.String(), "sk_live")

	stored, err := repository.NewMerchantSettingsRepository(env.db).GetByShop(context.Background(), testShop)
	require.NoError(t, err)
	assert.Equal(t, "sk_live_abcdef123456", stored.APIKey)

	w = env.do(t, http.MethodPut, "/api/v1/settings", `{"apiKey":"sk_live_abcdef123456","sandbox":false,"debug":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	var updated SettingsResponse
	decodeData(t, w, &updated)
	assert.False(t, updated.Sandbox)
	assert.True(t, updated.Debug)
	assert.Empty(t, updated.BaseURL)
	assert.Equal(t, stryve.ProductionBaseURL, updated.ResolvedBaseURL)

	w = env.do(t, http.MethodPut, "/api/v1/settings", `{"apiKey":"sk_live_abcdef123456"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var kept SettingsResponse
	decodeData(t, w, &kept)
	assert.False(t, kept.Sandbox)
	assert.True(t, kept.Debug)
}

func TestSettings_Validation(t *testing.T) {
	env := setupEnv(t)

	for _, body := range []string{
		`{"baseUrl":"https://stryve.example"}`,
		`{"apiKey":"   "}`,
		`{"apiKey":"k","baseUrl":"not a url"}`,
	} {
		w := env.do(t, http.MethodPut, "/api/v1/settings", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR", body)
	}

	w := env.do(t, http.MethodPut, "/api/v1/settings", `[]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPayments_NewestFirstAndScopedToShop(t *testing.T) {
	env := setupEnv(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedPayment(t, env.db, testShop, "SHOP-OLD", base)
	seedPayment(t, env.db, testShop, "SHOP-NEW", base.Add(time.Hour))
	seedPayment(t, env.db, "other.myshopify.com", "SHOP-OTHER", base.Add(2*time.Hour))

	w := env.do(t, http.MethodGet, "/api/v1/payments", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Payments []PaymentItem `json:"payments"`
	}
	decodeData(t, w, &got)
	require.Len(t, got.Payments, 2)
	assert.Equal(t, "SHOP-NEW", got.Payments[0].MerchantReference)
	assert.Equal(t, "SHOP-OLD", got.Payments[1].MerchantReference)
}

func TestWebhook_UninstallPurgesShop(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	require.NoError(t, repository.NewMerchantSettingsRepository(env.db).Upsert(ctx, &domain.MerchantSettings{Shop: testShop, APIKey: "k", Sandbox: true}))
	seedPayment(t, env.db, testShop, "SHOP-1", time.Now())
	seedPayment(t, env.db, "other.myshopify.com", "SHOP-2", time.Now())

	body := []byte(`{"id":1}`)
	w := env.webhook("app/uninstalled", "demo", body, sign(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	require.NoError(t, env.db.Model(&domain.StryvePayment{}).Where("shop = ?", testShop).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&domain.StryvePayment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err := repository.NewMerchantSettingsRepository(env.db).GetByShop(ctx, testShop)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWebhook_Topics(t *testing.T) {
	env := setupEnv(t)
	body := []byte(`{}`)

	tests := []struct {
		topic  string
		shop   string
		status int
	}{
		{"customers/data_request", testShop, http.StatusOK},
		{"customers/redact", testShop, http.StatusOK},
		{"shop/redact", testShop, http.StatusOK},
		{"SHOP/REDACT", testShop, http.StatusOK},
		{"shop/redact", "", http.StatusBadRequest},
		{"orders/create", testShop, http.StatusNotFound},
	}
	for _, tt := range tests {
		w := env.webhook(tt.topic, tt.shop, body, sign(body))
		assert.Equal(t, tt.status, w.Code, tt.topic)
	}
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	env := setupEnv(t)
	seedPayment(t, env.db, testShop, "SHOP-1", time.Now())

	body := []byte(`{"id":1}`)
	w := env.webhook("app/uninstalled", testShop, body, sign([]byte(`{"id":2}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&domain.StryvePayment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "", maskKey(""))
	assert.Equal(t, "***abc", maskKey("abc"))
	assert.Equal(t, "***456789", maskKey("0123456789"))
}
