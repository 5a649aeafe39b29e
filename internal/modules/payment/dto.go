package payment

import "github.com/shopspring/decimal"

// CreateOrderRequest is what the checkout extension posts. Amount accepts a
// JSON number or a numeric string.
type CreateOrderRequest struct {
	Amount          decimal.Decimal  `json:"amount" example:"100.00"`
	CurrencyCode    string           `json:"currencyCode" validate:"omitempty,len=3,alpha" example:"EGP"`
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
}

type ShippingAddress struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Phone       string `json:"phone"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
}

type CreateOrderResponse struct {
	PaymentURL        string `json:"payment_url" example:"https://app.stryve.me/pay/6b1f..."`
	StryveOrderID     string `json:"stryve_order_id,omitempty" example:"6b1f5c7e-0a4d-4c55-9a55-0a4f4b7d2f11"`
	MerchantReference string `json:"merchant_reference" example:"SHOP-1760000000000-k3x9qa"`
}

// CallbackParams are the query parameters on the customer's return from
// Stryve. Shop and Ref are ours; the rest come from Stryve and are untrusted.
type CallbackParams struct {
	Shop              string
	Ref               string
	MerchantReference string
	Status            string
	Message           string
	OrderID           string
}

type CallbackResult struct {
	Shop           string
	Status         string
	PreviousStatus string
	Verified       bool
	RedirectURL    string
}
