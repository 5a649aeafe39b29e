package domain

import "time"

type StryvePaymentStatus string

const (
	PaymentStatusPending    StryvePaymentStatus = "pending"
	PaymentStatusProcessing StryvePaymentStatus = "processing"
	PaymentStatusPaid       StryvePaymentStatus = "paid"
	PaymentStatusFailed     StryvePaymentStatus = "failed"
)

// Succeeded reports whether the customer should land on the store rather than
// the cart. Anything outside paid/processing/pending counts as failure.
func (s StryvePaymentStatus) Succeeded() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusProcessing, PaymentStatusPending:
		return true
	}
	return false
}

// StryvePayment is one checkout attempt. Amount, currency, URLs and the test
// flag are captured at creation; only Status and StryveOrderID change later.
type StryvePayment struct {
	ID                string              `gorm:"type:varchar(36);primaryKey" json:"id"`
	Shop              string              `gorm:"type:varchar(255);not null;uniqueIndex:idx_stryve_payments_shop_ref,priority:1" json:"shop"`
	MerchantReference string              `gorm:"type:varchar(64);not null;uniqueIndex:idx_stryve_payments_shop_ref,priority:2" json:"merchant_reference"`
	StryveOrderID     *string             `gorm:"type:varchar(64);index" json:"stryve_order_id"`
	Amount            string              `gorm:"type:varchar(32);not null" json:"amount"`
	Currency          string              `gorm:"type:varchar(8);not null" json:"currency"`
	Status            StryvePaymentStatus `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	PaymentURL        string              `gorm:"type:text;not null" json:"payment_url"`
	CallbackURL       string              `gorm:"type:text;not null" json:"callback_url"`
	Test              bool                `gorm:"not null;default:false" json:"test"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func (StryvePayment) TableName() string { return "stryve_payments" }
