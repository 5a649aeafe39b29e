package stryve

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Order statuses reported by Stryve.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusPaid       = "paid"
	StatusFailed     = "failed"
)

type Item struct {
	Name        string
	Quantity    int
	Price       string
	Description string
}

// CustomerDetails maps onto customer_details[...]. Blank fields are not sent.
type CustomerDetails struct {
	FirstName      string
	LastName       string
	Phone          string
	Email          string
	AddressLine    string
	AddressCity    string
	AddressCountry string
}

func (c CustomerDetails) fields() [][2]string {
	return [][2]string{
		{"first_name", c.FirstName},
		{"last_name", c.LastName},
		{"phone", c.Phone},
		{"email", c.Email},
		{"address_line", c.AddressLine},
		{"address_city", c.AddressCity},
		{"address_country", c.AddressCountry},
	}
}

type CreateOrderParams struct {
	APIKey            string
	BaseURL           string
	MerchantReference string
	CallbackURL       string
	Items             []Item
	Customer          CustomerDetails
}

type GetOrderParams struct {
	APIKey            string
	BaseURL           string
	OrderID           string
	MerchantReference string
}

// Order is the order object returned by create-order and get-order. Only the
// fields the app acts on are decoded; the rest of the payload varies by
// environment and is ignored.
type Order struct {
	ID                string `json:"id"`
	MerchantReference string `json:"merchant_reference"`
	Status            string `json:"status"`
	PaymentURL        string `json:"payment_url"`
}

func itemQuantity(q int) string {
	if q < 1 {
		q = 1
	}
	return strconv.Itoa(q)
}

func itemPrice(p string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(p))
	if err != nil {
		return "0"
	}
	return d.String()
}
