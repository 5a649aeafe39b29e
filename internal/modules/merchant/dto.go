package merchant

import (
	"time"

	"stryvepay/internal/domain"
)

type SettingsResponse struct {
	APIKey          string `json:"apiKey"`
	HasAPIKey       bool   `json:"hasApiKey"`
	BaseURL         string `json:"baseUrl"`
	ResolvedBaseURL string `json:"resolvedBaseUrl"`
	Sandbox         bool   `json:"sandbox"`
	Debug           bool   `json:"debug"`
}

// UpdateSettingsRequest leaves sandbox/debug untouched when they are omitted.
type UpdateSettingsRequest struct {
	APIKey  string `json:"apiKey" validate:"required,max=512"`
	BaseURL string `json:"baseUrl" validate:"omitempty,url,max=512"`
	Sandbox *bool  `json:"sandbox"`
	Debug   *bool  `json:"debug"`
}

type PaymentItem struct {
	MerchantReference string    `json:"merchantReference"`
	StryveOrderID     string    `json:"stryveOrderId,omitempty"`
	Amount            string    `json:"amount"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	Test              bool      `json:"test"`
	CreatedAt         time.Time `json:"createdAt"`
}

func toPaymentItem(p domain.StryvePayment) PaymentItem {
	item := PaymentItem{
		MerchantReference: p.MerchantReference,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            string(p.Status),
		Test:              p.Test,
		CreatedAt:         p.CreatedAt,
	}
	if p.StryveOrderID != nil {
		item.StryveOrderID = *p.StryveOrderID
	}
	return item
}
