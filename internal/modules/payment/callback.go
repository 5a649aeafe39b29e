package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"stryvepay/internal/domain"
	"stryvepay/internal/pkg/shopify"
	"stryvepay/internal/pkg/stryve"
	"stryvepay/internal/repository"
)

const maxStatusLen = 32

// HandleCallback re-verifies a payment with Stryve when the customer returns
// and decides where to send them. The status in the redirect is only a hint:
// a successful get-order always wins over it. When verification is impossible
// or fails the hint is used so the customer is not stranded.
func (s *Service) HandleCallback(ctx context.Context, p CallbackParams) (*CallbackResult, error) {
	shop := strings.TrimSpace(p.Shop)
	ref := strings.TrimSpace(p.Ref)
	if ref == "" {
		ref = strings.TrimSpace(p.MerchantReference)
	}
	if shop == "" || ref == "" {
		return nil, ErrInvalidCallback
	}

	record, err := s.payments.GetByReference(ctx, shop, ref)
	if errors.Is(err, repository.ErrNotFound) {
		s.loggerf("level=warn msg=callback for unknown payment shop=%s ref=%s", shop, ref)
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}

	settings, err := s.loadSettings(ctx, shop)
	if err != nil {
		s.loggerf("level=error msg=callback settings lookup failed, continuing unverified shop=%s ref=%s err=%v", shop, ref, err)
		settings = nil
	}
	debug := settings != nil && settings.Debug
	if debug {
		s.loggerf("level=debug msg=stryve callback received shop=%s ref=%s status=%s order_id=%s message=%q", shop, ref, p.Status, p.OrderID, p.Message)
	}

	status := clipStatus(p.Status)
	verified := false
	learnedOrderID := ""

	if settings.Configured() {
		order, verr := s.verify(ctx, settings, record, p.OrderID)
		switch {
		case verr != nil:
			s.loggerf("level=warn msg=stryve verification failed, using callback status shop=%s ref=%s callback_status=%s err=%v", shop, ref, p.Status, verr)
		case order.MerchantReference != "" && order.MerchantReference != ref:
			s.loggerf("level=warn msg=stryve order belongs to another reference shop=%s ref=%s order_ref=%s order_id=%s", shop, ref, order.MerchantReference, order.ID)
			status = stryve.StatusFailed
		case order.Status != "":
			status = clipStatus(order.Status)
			verified = true
			learnedOrderID = order.ID
			if debug {
				s.loggerf("level=debug msg=stryve callback verified shop=%s ref=%s status=%s", shop, ref, status)
			}
		}
	} else {
		s.loggerf("level=warn msg=callback not verified, shop has no api key shop=%s ref=%s", shop, ref)
	}

	if learnedOrderID == "" && record.StryveOrderID == nil {
		learnedOrderID = strings.TrimSpace(p.OrderID)
	}

	// An empty status carries no information; keep the stored one but still
	// send the customer to the failure page.
	persisted := domain.StryvePaymentStatus(status)
	if persisted == "" {
		persisted = record.Status
	}

	previous, err := s.payments.UpdateStatus(ctx, shop, ref, persisted, learnedOrderID)
	if err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	record.Status = persisted
	if learnedOrderID != "" {
		record.StryveOrderID = &learnedOrderID
	}
	s.publish(ctx, record, previous, verified)

	succeeded := domain.StryvePaymentStatus(status).Succeeded()
	outcome := "failure"
	if succeeded {
		outcome = "success"
	}
	s.metrics.RecordCallback(outcome, verified)
	s.loggerf("level=info msg=stryve callback handled shop=%s ref=%s status=%s previous=%s verified=%t outcome=%s", shop, ref, status, previous, verified, outcome)

	return &CallbackResult{
		Shop:           shop,
		Status:         status,
		PreviousStatus: string(previous),
		Verified:       verified,
		RedirectURL:    RedirectTarget(shop, succeeded),
	}, nil
}

// verify prefers the order id Stryve gave us at creation, then the one on the
// callback, then the merchant reference.
func (s *Service) verify(ctx context.Context, settings *domain.MerchantSettings, record *domain.StryvePayment, callbackOrderID string) (*stryve.Order, error) {
	orderID := strings.TrimSpace(callbackOrderID)
	if record.StryveOrderID != nil && *record.StryveOrderID != "" {
		orderID = *record.StryveOrderID
	}
	return s.stryve.GetOrder(ctx, stryve.GetOrderParams{
		APIKey:            settings.APIKey,
		BaseURL:           stryve.ResolveBaseURL(settings.BaseURL, settings.Sandbox),
		OrderID:           orderID,
		MerchantReference: record.MerchantReference,
	})
}

// RedirectTarget is the store home on success and the cart otherwise.
func RedirectTarget(shop string, succeeded bool) string {
	home := StoreURL(shop)
	if succeeded {
		return home
	}
	return home + "/cart"
}

func StoreURL(shop string) string {
	return "https://" + shopify.NormalizeShop(shop)
}

// clipStatus bounds a status to maxStatusLen runes. Invalid bytes become
// U+FFFD so a mangled hint can never collapse into a known status.
func clipStatus(status string) string {
	status = strings.ToValidUTF8(strings.TrimSpace(status), "\uFFFD")
	if utf8.RuneCountInString(status) <= maxStatusLen {
		return status
	}
	runes := []rune(status)
	return string(runes[:maxStatusLen])
}
