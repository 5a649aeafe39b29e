package stryve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultTimeout = 30 * time.Second

const (
	authenticatePath = "/payment-gateway/authenticate"
	createOrderPath  = "/payment-gateway/create-order"
	getOrderPath     = "/payment-gateway/get-order"
)

// Observer receives the outcome of every Stryve call. result is "ok" or "error".
type Observer func(operation, result string, elapsed time.Duration)

// Client talks to the Stryve SME checkout API. It holds no credentials and no
// tokens: every CreateOrder fetches a fresh single-use token.
type Client struct {
	httpClient *http.Client
	observe    Observer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		observe:    func(string, string, time.Duration) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Order   json.RawMessage `json:"order"`
}

func (e envelope) failed() bool {
	return e.Success != nil && !*e.Success
}

// Authenticate exchanges an API key for a single-use token (30 minute expiry).
func (c *Client) Authenticate(ctx context.Context, apiKey, baseURL string) (token string, err error) {
	start := time.Now()
	defer func() { c.observe("authenticate", resultOf(err), time.Since(start)) }()

	body, contentType, err := encodeForm([][2]string{{"api_key", apiKey}})
	if err != nil {
		return "", fmt.Errorf("encode authenticate form: %w", err)
	}

	status, env, _, err := c.do(ctx, http.MethodPost, baseURL+authenticatePath, body, contentType)
	if err != nil {
		return "", &AuthenticationError{Message: err.Error(), StatusCode: status}
	}
	if !isSuccess(status) || env.failed() {
		return "", &AuthenticationError{Message: env.Message, StatusCode: status}
	}
	if env.Token == "" {
		msg := env.Message
		if msg == "" {
			msg = "No token received"
		}
		return "", &AuthenticationError{Message: msg, StatusCode: status}
	}
	return env.Token, nil
}

// CreateOrder authenticates and creates a hosted-checkout order. The total is
// computed by Stryve from the items.
func (c *Client) CreateOrder(ctx context.Context, p CreateOrderParams) (*Order, error) {
	token, err := c.Authenticate(ctx, p.APIKey, p.BaseURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	order, err := c.createOrder(ctx, token, p)
	c.observe("create_order", resultOf(err), time.Since(start))
	return order, err
}

func (c *Client) createOrder(ctx context.Context, token string, p CreateOrderParams) (*Order, error) {
	fields := [][2]string{
		{"token", token},
		{"merchant_reference", p.MerchantReference},
		{"callback_url", p.CallbackURL},
	}
	for i, item := range p.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		fields = append(fields,
			[2]string{prefix + "[name]", item.Name},
			[2]string{prefix + "[quantity]", itemQuantity(item.Quantity)},
			[2]string{prefix + "[price]", itemPrice(item.Price)},
		)
		if strings.TrimSpace(item.Description) != "" {
			fields = append(fields, [2]string{prefix + "[description]", item.Description})
		}
	}
	for _, f := range p.Customer.fields() {
		if strings.TrimSpace(f[1]) == "" {
			continue
		}
		fields = append(fields, [2]string{"customer_details[" + f[0] + "]", f[1]})
	}

	body, contentType, err := encodeForm(fields)
	if err != nil {
		return nil, fmt.Errorf("encode create-order form: %w", err)
	}

	status, env, raw, err := c.do(ctx, http.MethodPost, p.BaseURL+createOrderPath, body, contentType)
	if err != nil {
		return nil, &OrderCreationError{Message: err.Error(), StatusCode: status}
	}
	if !isSuccess(status) || env.failed() {
		return nil, &OrderCreationError{Message: env.Message, StatusCode: status}
	}

	order, err := unwrapOrder(env, raw)
	if err != nil {
		return nil, &OrderCreationError{Message: err.Error(), StatusCode: status}
	}
	if order.PaymentURL == "" {
		msg := env.Message
		if msg == "" {
			msg = "No payment URL received"
		}
		return nil, &OrderCreationError{Message: msg, StatusCode: status}
	}
	return order, nil
}

// GetOrder fetches an order for server-side verification. OrderID is preferred;
// otherwise the merchant reference is sent under Stryve's "mechant_reference"
// query key (sic, that is the name the API expects).
func (c *Client) GetOrder(ctx context.Context, p GetOrderParams) (order *Order, err error) {
	q := url.Values{}
	q.Set("api_key", p.APIKey)
	switch {
	case p.OrderID != "":
		q.Set("order_id", p.OrderID)
	case p.MerchantReference != "":
		q.Set("mechant_reference", p.MerchantReference)
	default:
		return nil, ErrInvalidArgument
	}

	start := time.Now()
	defer func() { c.observe("get_order", resultOf(err), time.Since(start)) }()

	status, env, raw, err := c.do(ctx, http.MethodGet, p.BaseURL+getOrderPath+"?"+q.Encode(), nil, "")
	if err != nil {
		return nil, &VerificationError{Message: err.Error(), StatusCode: status}
	}
	if !isSuccess(status) || env.failed() {
		return nil, &VerificationError{Message: env.Message, StatusCode: status}
	}

	order, err = unwrapOrder(env, raw)
	if err != nil {
		return nil, &VerificationError{Message: err.Error(), StatusCode: status}
	}
	return order, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (int, envelope, []byte, error) {
	var env envelope

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, env, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, env, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, env, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		if !isSuccess(resp.StatusCode) {
			return resp.StatusCode, envelope{}, raw, nil
		}
		return resp.StatusCode, env, raw, fmt.Errorf("invalid JSON response: %w", err)
	}
	return resp.StatusCode, env, raw, nil
}

func unwrapOrder(env envelope, raw []byte) (*Order, error) {
	src := raw
	if len(env.Order) > 0 && string(env.Order) != "null" {
		src = env.Order
	}
	var order Order
	if err := json.Unmarshal(src, &order); err != nil {
		return nil, fmt.Errorf("invalid order payload: %w", err)
	}
	return &order, nil
}

func encodeForm(fields [][2]string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func resultOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
