package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "EGP"

var ErrNonPositive = errors.New("amount must be greater than zero")

// Parse reads a decimal amount such as "100.00" and rejects zero or negative values.
func Parse(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, err
	}
	return d, RequirePositive(d)
}

func RequirePositive(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrNonPositive
	}
	return nil
}

// Currency upper-cases an ISO code, falling back to DefaultCurrency.
func Currency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency
	}
	return code
}
