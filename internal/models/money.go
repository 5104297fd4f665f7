package models

import (
	"github.com/shopspring/decimal"

	"github.com/przhevallsky/transferboss/internal/custom_err"
)

const (
	AmountScale int32 = 2
	RateScale   int32 = 6
)

type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if !IsCurrencyCode(currency) {
		return Money{}, custom_err.NewValidationError("currency", currency, "must be a 3-letter ISO 4217 code")
	}
	if amount.IsNegative() {
		return Money{}, custom_err.NewValidationError("amount", amount.String(), "must not be negative")
	}
	return Money{Amount: amount, Currency: currency}, nil
}

func (m Money) String() string {
	return m.Amount.StringFixed(AmountScale) + " " + m.Currency
}

// IsCurrencyCode reports whether s looks like an ISO 4217 alphabetic code.
func IsCurrencyCode(s string) bool {
	return isUpperAlpha(s, 3)
}

// IsCountryCode reports whether s looks like an ISO 3166-1 alpha-2 code.
func IsCountryCode(s string) bool {
	return isUpperAlpha(s, 2)
}

func isUpperAlpha(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
