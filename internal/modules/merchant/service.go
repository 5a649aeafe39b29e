package merchant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stryvepay/internal/domain"
	"stryvepay/internal/pkg/stryve"
	"stryvepay/internal/repository"
)

const recentPaymentsLimit = 50

var (
	ErrAPIKeyRequired = errors.New("api key is required")
	ErrUnknownTopic   = errors.New("unhandled webhook topic")
	ErrShopRequired   = errors.New("shop is required")
)

type Service struct {
	settings settingsRepo
	payments paymentLister
	purger   shopPurger
	loggerf  func(format string, args ...interface{})
	now      func() time.Time
}

func NewService(settings settingsRepo, payments paymentLister, purger shopPurger, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{settings: settings, payments: payments, purger: purger, loggerf: loggerf, now: time.Now}
}

// GetSettings never returns the stored key, only its last six characters.
// A shop without settings gets sandbox defaults.
func (s *Service) GetSettings(ctx context.Context, shop string) (*SettingsResponse, error) {
	current, err := s.settings.GetByShop(ctx, shop)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if current == nil {
		return &SettingsResponse{Sandbox: true, ResolvedBaseURL: stryve.ResolveBaseURL("", true)}, nil
	}
	return toSettingsResponse(current), nil
}

func (s *Service) UpdateSettings(ctx context.Context, shop string, req UpdateSettingsRequest) (*SettingsResponse, error) {
	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	current, err := s.settings.GetByShop(ctx, shop)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	now := s.now()
	next := &domain.MerchantSettings{Shop: shop, Sandbox: true, CreatedAt: now}
	if current != nil {
		next.Sandbox = current.Sandbox
		next.Debug = current.Debug
		next.CreatedAt = current.CreatedAt
	}
	next.APIKey = apiKey
	next.BaseURL = strings.TrimSpace(req.BaseURL)
	next.UpdatedAt = now
	if req.Sandbox != nil {
		next.Sandbox = *req.Sandbox
	}
	if req.Debug != nil {
		next.Debug = *req.Debug
	}

	if err := s.settings.Upsert(ctx, next); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	s.loggerf("level=info msg=stryve settings saved shop=%s sandbox=%t debug=%t custom_base_url=%t", shop, next.Sandbox, next.Debug, next.BaseURL != "")
	return toSettingsResponse(next), nil
}

func (s *Service) RecentPayments(ctx context.Context, shop string) ([]PaymentItem, error) {
	rows, err := s.payments.ListRecent(ctx, shop, recentPaymentsLimit)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	items := make([]PaymentItem, 0, len(rows))
	for _, p := range rows {
		items = append(items, toPaymentItem(p))
	}
	return items, nil
}

// HandleWebhook applies a Shopify lifecycle or compliance topic. Uninstall and
// shop/redact delete everything stored for the shop; customer topics are
// acknowledged since no customer data is kept beyond payment records.
func (s *Service) HandleWebhook(ctx context.Context, topic, shop string) error {
	switch topic {
	case TopicAppUninstalled, TopicShopRedact:
		if strings.TrimSpace(shop) == "" {
			return ErrShopRequired
		}
		res, err := s.purger.PurgeShop(ctx, shop)
		if err != nil {
			return fmt.Errorf("purge shop: %w", err)
		}
		s.loggerf("level=info msg=shop data purged topic=%s shop=%s payments=%d settings=%d", topic, shop, res.Payments, res.Settings)
		return nil
	case TopicCustomersDataRequest, TopicCustomersRedact:
		s.loggerf("level=info msg=compliance webhook acknowledged topic=%s shop=%s", topic, shop)
		return nil
	default:
		return ErrUnknownTopic
	}
}

const (
	TopicAppUninstalled       = "app/uninstalled"
	TopicShopRedact           = "shop/redact"
	TopicCustomersDataRequest = "customers/data_request"
	TopicCustomersRedact      = "customers/redact"
)

func toSettingsResponse(s *domain.MerchantSettings) *SettingsResponse {
	return &SettingsResponse{
		APIKey:          maskKey(s.APIKey),
		HasAPIKey:       s.APIKey != "",
		BaseURL:         s.BaseURL,
		ResolvedBaseURL: stryve.ResolveBaseURL(s.BaseURL, s.Sandbox),
		Sandbox:         s.Sandbox,
		Debug:           s.Debug,
	}
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) > 6 {
		key = key[len(key)-6:]
	}
	return "***" + key
}
