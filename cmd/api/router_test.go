package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"stryvepay/internal/config"
	"stryvepay/internal/database"
	"stryvepay/internal/events"
	"stryvepay/internal/metrics"
	"stryvepay/internal/pkg/jwt"
	"stryvepay/internal/pkg/shopify"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testShop   = "demo.myshopify.com"
	testSecret = "shpss_secret"
	testAPIKey = "app-api-key"
)

func newFakeStryve(t *testing.T, verifiedStatus string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/payment-gateway/authenticate", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"token":"tok-1"}`)
	})
	mux.HandleFunc("/payment-gateway/create-order", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		ref := r.MultipartForm.Value["merchant_reference"][0]
		fmt.Fprintf(w, `{"success":true,"order":{"id":"ord-77","merchant_reference":%q,"status":"pending","payment_url":"https://pay.stryve.me/ord-77"}}`, ref)
	})
	mux.HandleFunc("/payment-gateway/get-order", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ord-77", r.URL.Query().Get("order_id"))
		fmt.Fprintf(w, `{"success":true,"order":{"id":"ord-77","status":%q}}`, verifiedStatus)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AppEnv: "test",
		Shopify: config.ShopifyConfig{
			AppURL:    "https://app.example.com",
			APIKey:    testAPIKey,
			APISecret: testSecret,
		},
		Stryve:             config.StryveConfig{Timeout: 5 * time.Second},
		CORSAllowedOrigins: []string{"*"},
	}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:router_test_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, ""))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	reg := prometheus.NewRegistry()
	r, err := newRouter(cfg, db, zap.NewNop(), reg, metrics.NewPaymentMetrics(reg), events.NopPublisher{})
	require.NoError(t, err)
	return r
}

func sessionToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.New(testSecret, testAPIKey).GenerateToken(testShop, time.Minute)
	require.NoError(t, err)
	return token
}

func proxyQuery(shop string) string {
	q := url.Values{}
	q.Set("shop", shop)
	q.Set("path_prefix", "/apps/stryve")
	q.Set("timestamp", "1772366400")
	q.Set("signature", hex.EncodeToString(shopify.SignProxyQuery(q, testSecret)))
	return q.Encode()
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckoutFlow(t *testing.T) {
	stryveSrv := newFakeStryve(t, "paid")
	r := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(fmt.Sprintf(`{"apiKey":"sk_test_123456789","baseUrl":%q}`, stryveSrv.URL)))
	req.Header.Set("Authorization", "Bearer "+sessionToken(t))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/apps/stryve/create-stryve-order?"+proxyQuery("demo"), strings.NewReader(`{"amount":"100.00","currencyCode":"EGP"}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created struct {
		PaymentURL        string `json:"payment_url"`
		StryveOrderID     string `json:"stryve_order_id"`
		MerchantReference string `json:"merchant_reference"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "https://pay.stryve.me/ord-77", created.PaymentURL)
	assert.Equal(t, "ord-77", created.StryveOrderID)
	assert.True(t, strings.HasPrefix(created.MerchantReference, "SHOP-"))

	callback := fmt.Sprintf("/payments/callback?shop=%s&ref=%s&status=failed", testShop, url.QueryEscape(created.MerchantReference))
	w = serve(r, httptest.NewRequest(http.MethodGet, callback, nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://demo.myshopify.com", w.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t))
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"paid"`)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), `stryve_orders_created_total{result="ok"} 1`)
	assert.Contains(t, string(body), `stryve_callbacks_total{outcome="success",verified="true"} 1`)
}

func TestRouter_Authentication(t *testing.T) {
	r := newTestServer(t)

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"unsigned app proxy", httptest.NewRequest(http.MethodPost, "/apps/stryve/create-stryve-order?shop=demo.myshopify.com", strings.NewReader(`{"amount":"1"}`)), http.StatusUnauthorized},
		{"tampered app proxy", httptest.NewRequest(http.MethodPost, "/apps/stryve/create-stryve-order?"+strings.Replace(proxyQuery(testShop), "demo", "evil", 1), strings.NewReader(`{"amount":"1"}`)), http.StatusUnauthorized},
		{"embedded without token", httptest.NewRequest(http.MethodPost, "/api/create-stryve-order", strings.NewReader(`{"amount":"1"}`)), http.StatusUnauthorized},
		{"settings without token", httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil), http.StatusUnauthorized},
		{"unsigned webhook", httptest.NewRequest(http.MethodPost, "/webhooks/shopify", strings.NewReader(`{}`)), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, serve(r, tt.req).Code)
		})
	}
}

func TestRouter_NotConfiguredShop(t *testing.T) {
	r := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/create-stryve-order", strings.NewReader(`{"amount":"10"}`))
	req.Header.Set("Authorization", "Bearer "+sessionToken(t))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Stryve is not configured. Please set your API key in the app settings."}`, w.Body.String())
}

func TestRouter_OpsEndpoints(t *testing.T) {
	r := newTestServer(t)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Stryve Payments")
}
