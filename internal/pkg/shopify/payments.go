package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultPaymentsURL = "https://api.shopify.com/payments"

var ErrPlatformRejected = errors.New("shopify rejected payment session call")

// PaymentsClient resolves and rejects payment sessions on the Shopify
// payments platform. Calls are made once; nothing is retried.
type PaymentsClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewPaymentsClient(baseURL, token string, timeout time.Duration) *PaymentsClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultPaymentsURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PaymentsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *PaymentsClient) Resolve(ctx context.Context, sessionID string) error {
	return c.post(ctx, sessionID, "resolve", struct{}{})
}

func (c *PaymentsClient) Reject(ctx context.Context, sessionID, reason string) error {
	return c.post(ctx, sessionID, "reject", map[string]string{"reason": reason})
}

func (c *PaymentsClient) post(ctx context.Context, sessionID, action string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", action, err)
	}

	endpoint := fmt.Sprintf("%s/payment_sessions/%s/%s", c.baseURL, url.PathEscape(sessionID), action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s payment session: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned HTTP %d: %s", ErrPlatformRejected, action, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
