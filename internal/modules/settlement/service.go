package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	ActionResolve = "resolve"
	ActionReject  = "reject"

	defaultRejectReason = "Payment failed"
)

var (
	ErrMissingSessionID = errors.New("shopify_session_id or merchant_reference is required")
	ErrPlatformFailure  = errors.New("payment platform call failed")
)

// Notification is the settlement payload Stryve posts once a payment has a
// final outcome.
type Notification struct {
	ShopifySessionID  Identifier `json:"shopify_session_id"`
	MerchantReference Identifier `json:"merchant_reference"`
	Status            string     `json:"status"`
	Message           string     `json:"message"`
	Reason            string     `json:"reason"`
}

func (n Notification) SessionID() string {
	if id := strings.TrimSpace(string(n.ShopifySessionID)); id != "" {
		return id
	}
	return strings.TrimSpace(string(n.MerchantReference))
}

// Identifier decodes from a JSON string or number. Stryve echoes references
// back in whichever form it stored them.
type Identifier string

func (id *Identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = Identifier(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*id = Identifier(n.String())
	return nil
}

type Result struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	Reason    string `json:"reason,omitempty"`
}

type Service struct {
	platform platformClient
	metrics  metricsRecorder
	loggerf  func(format string, args ...interface{})
}

func NewService(platform platformClient, metrics metricsRecorder, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{platform: platform, metrics: metrics, loggerf: loggerf}
}

// Settle forwards a single resolve or reject to the platform. Nothing is
// retried: a failed call is reported to the caller as ErrPlatformFailure.
func (s *Service) Settle(ctx context.Context, n Notification) (*Result, error) {
	sessionID := n.SessionID()
	if sessionID == "" {
		s.metrics.RecordSettlement("none", "invalid")
		return nil, ErrMissingSessionID
	}

	res := &Result{SessionID: sessionID}
	var err error
	if isSuccess(n.Status) {
		res.Action = ActionResolve
		err = s.platform.Resolve(ctx, sessionID)
	} else {
		res.Action = ActionReject
		res.Reason = rejectReason(n)
		err = s.platform.Reject(ctx, sessionID, res.Reason)
	}

	if err != nil {
		s.metrics.RecordSettlement(res.Action, "error")
		s.loggerf("level=error msg=settlement failed session=%s action=%s err=%v", sessionID, res.Action, err)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrPlatformFailure, res.Action, sessionID, err)
	}

	s.metrics.RecordSettlement(res.Action, "ok")
	s.loggerf("level=info msg=payment session settled session=%s action=%s", sessionID, res.Action)
	return res, nil
}

// "success" is what Stryve sends on this transport; "paid" is the status the
// gateway reports everywhere else.
func isSuccess(status string) bool {
	return status == "success" || status == "paid"
}

func rejectReason(n Notification) string {
	if r := strings.TrimSpace(n.Message); r != "" {
		return r
	}
	if r := strings.TrimSpace(n.Reason); r != "" {
		return r
	}
	return defaultRejectReason
}

type nopMetrics struct{}

func (nopMetrics) RecordSettlement(string, string) {}
