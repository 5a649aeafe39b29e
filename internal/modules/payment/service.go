package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"stryvepay/internal/domain"
	"stryvepay/internal/events"
	"stryvepay/internal/pkg/money"
	"stryvepay/internal/pkg/stryve"
	"stryvepay/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNotConfigured   = errors.New("stryve is not configured for this shop")
	ErrInvalidAmount   = errors.New("amount must be a positive decimal")
	ErrInvalidCallback = errors.New("callback is missing shop or reference")
	ErrRecordNotFound  = errors.New("payment record not found")
)

// Placeholders for customer details Stryve requires but checkout may not supply.
const (
	placeholderFirstName = "Shopify"
	placeholderLastName  = "Customer"
	placeholderPhone     = "0000000000"

	orderItemName = "Order Payment"
)

type Service struct {
	payments  paymentRepo
	settings  settingsReader
	stryve    stryveGateway
	publisher eventPublisher
	metrics   metricsRecorder
	loggerf   func(format string, args ...interface{})

	appURL       string
	now          func() time.Time
	newReference func() string
}

// NewService wires the checkout workflows. appURL is the public base of this
// service; Stryve sends customers back to {appURL}/payments/callback.
func NewService(payments paymentRepo, settings settingsReader, gateway stryveGateway, appURL string, loggerf func(format string, args ...interface{})) (*Service, error) {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	now := time.Now
	gen, err := newReferenceGenerator(now)
	if err != nil {
		return nil, err
	}
	return &Service{
		payments:     payments,
		settings:     settings,
		stryve:       gateway,
		publisher:    events.NopPublisher{},
		metrics:      nopMetrics{},
		loggerf:      loggerf,
		appURL:       strings.TrimRight(appURL, "/"),
		now:          now,
		newReference: gen,
	}, nil
}

func (s *Service) WithPublisher(p eventPublisher) *Service {
	if p != nil {
		s.publisher = p
	}
	return s
}

func (s *Service) WithMetrics(m metricsRecorder) *Service {
	if m != nil {
		s.metrics = m
	}
	return s
}

// CreateOrder registers a hosted-checkout order with Stryve and records it as
// pending. Nothing is written unless Stryve accepted the order.
func (s *Service) CreateOrder(ctx context.Context, shop string, req CreateOrderRequest) (*CreateOrderResponse, error) {
	if err := money.RequirePositive(req.Amount); err != nil {
		s.metrics.RecordOrderCreated("invalid")
		return nil, ErrInvalidAmount
	}

	settings, err := s.loadSettings(ctx, shop)
	if err != nil {
		s.metrics.RecordOrderCreated("error")
		return nil, err
	}
	if !settings.Configured() {
		s.metrics.RecordOrderCreated("not_configured")
		return nil, ErrNotConfigured
	}

	baseURL := stryve.ResolveBaseURL(settings.BaseURL, settings.Sandbox)
	reference := s.newReference()
	callbackURL := s.callbackURL(shop, reference)
	amount := req.Amount.String()
	currency := money.Currency(req.CurrencyCode)

	if settings.Debug {
		s.loggerf("level=debug msg=stryve create-order shop=%s base_url=%s sandbox=%t merchant_reference=%s", shop, baseURL, settings.Sandbox, reference)
	}

	order, err := s.stryve.CreateOrder(ctx, stryve.CreateOrderParams{
		APIKey:            settings.APIKey,
		BaseURL:           baseURL,
		MerchantReference: reference,
		CallbackURL:       callbackURL,
		Items: []stryve.Item{{
			Name:        orderItemName,
			Quantity:    1,
			Price:       amount,
			Description: "Shopify order - " + currency,
		}},
		Customer: customerDetails(req.ShippingAddress),
	})
	if err != nil {
		s.metrics.RecordOrderCreated("upstream_error")
		s.loggerf("level=error msg=stryve create-order failed shop=%s merchant_reference=%s err=%v", shop, reference, err)
		return nil, err
	}

	record := &domain.StryvePayment{
		ID:                uuid.NewString(),
		Shop:              shop,
		MerchantReference: reference,
		StryveOrderID:     optional(order.ID),
		Amount:            amount,
		Currency:          currency,
		Status:            domain.PaymentStatusPending,
		PaymentURL:        order.PaymentURL,
		CallbackURL:       callbackURL,
		Test:              settings.Sandbox,
	}
	if err := s.payments.Create(ctx, record); err != nil {
		s.metrics.RecordOrderCreated("error")
		return nil, fmt.Errorf("save payment failed: %w", err)
	}

	s.metrics.RecordOrderCreated("ok")
	s.publish(ctx, record, "", false)
	s.loggerf("level=info msg=stryve order created shop=%s merchant_reference=%s stryve_order_id=%s", shop, reference, order.ID)

	return &CreateOrderResponse{
		PaymentURL:        order.PaymentURL,
		StryveOrderID:     order.ID,
		MerchantReference: reference,
	}, nil
}

func (s *Service) loadSettings(ctx context.Context, shop string) (*domain.MerchantSettings, error) {
	settings, err := s.settings.GetByShop(ctx, shop)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

func (s *Service) callbackURL(shop, reference string) string {
	q := url.Values{}
	q.Set("shop", shop)
	q.Set("ref", reference)
	return s.appURL + "/payments/callback?" + q.Encode()
}

func customerDetails(addr *ShippingAddress) stryve.CustomerDetails {
	if addr == nil {
		addr = &ShippingAddress{}
	}
	return stryve.CustomerDetails{
		FirstName:      fallback(addr.FirstName, placeholderFirstName),
		LastName:       fallback(addr.LastName, placeholderLastName),
		Phone:          fallback(addr.Phone, placeholderPhone),
		AddressLine:    strings.TrimSpace(addr.Address1),
		AddressCity:    strings.TrimSpace(addr.City),
		AddressCountry: strings.TrimSpace(addr.CountryCode),
	}
}

func (s *Service) publish(ctx context.Context, p *domain.StryvePayment, previous domain.StryvePaymentStatus, verified bool) {
	event := events.PaymentEvent{
		Shop:              p.Shop,
		MerchantReference: p.MerchantReference,
		Status:            string(p.Status),
		PreviousStatus:    string(previous),
		Verified:          verified,
		OccurredAt:        s.now().UTC(),
	}
	if p.StryveOrderID != nil {
		event.StryveOrderID = *p.StryveOrderID
	}
	if err := s.publisher.PublishPaymentEvent(ctx, event); err != nil {
		s.loggerf("level=error msg=failed to publish payment event shop=%s merchant_reference=%s err=%v", p.Shop, p.MerchantReference, err)
	}
}

func fallback(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

type nopMetrics struct{}

func (nopMetrics) RecordOrderCreated(string)   {}
func (nopMetrics) RecordCallback(string, bool) {}
