package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/przhevallsky/transferboss/internal/custom_err"
)

type DeliveryMethod string

const (
	DeliveryBankDeposit  DeliveryMethod = "BANK_DEPOSIT"
	DeliveryCashPickup   DeliveryMethod = "CASH_PICKUP"
	DeliveryMobileWallet DeliveryMethod = "MOBILE_WALLET"
)

var AllDeliveryMethods = []DeliveryMethod{
	DeliveryBankDeposit,
	DeliveryCashPickup,
	DeliveryMobileWallet,
}

func ParseDeliveryMethod(s string) (DeliveryMethod, error) {
	m := DeliveryMethod(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllDeliveryMethods {
		if m == known {
			return m, nil
		}
	}
	return "", custom_err.NewValidationError("delivery_method", s, "unknown delivery method")
}

type Corridor struct {
	SourceCountry string
	DestCountry   string
}

func NewCorridor(source, dest string) (Corridor, error) {
	if !IsCountryCode(source) {
		return Corridor{}, custom_err.NewValidationError("source_country", source, "must be a 2-letter ISO 3166-1 code")
	}
	if !IsCountryCode(dest) {
		return Corridor{}, custom_err.NewValidationError("dest_country", dest, "must be a 2-letter ISO 3166-1 code")
	}
	return Corridor{SourceCountry: source, DestCountry: dest}, nil
}

// ID is the machine form, e.g. "US_PH".
func (c Corridor) ID() string {
	return c.SourceCountry + "_" + c.DestCountry
}

func (c Corridor) String() string {
	return c.SourceCountry + " → " + c.DestCountry
}

// DefaultMinimumAmount applies to corridors whose rule carries no minimum.
var DefaultMinimumAmount = decimal.RequireFromString("1.00")

type CorridorRule struct {
	Corridor        Corridor
	DeliveryMethods []DeliveryMethod
	MinimumAmount   decimal.Decimal
}

func (r CorridorRule) Supports(method DeliveryMethod) bool {
	for _, m := range r.DeliveryMethods {
		if m == method {
			return true
		}
	}
	return false
}

func (r CorridorRule) Minimum() decimal.Decimal {
	if r.MinimumAmount.IsPositive() {
		return r.MinimumAmount
	}
	return DefaultMinimumAmount
}

func (r CorridorRule) MethodNames() []string {
	names := make([]string, 0, len(r.DeliveryMethods))
	for _, m := range r.DeliveryMethods {
		names = append(names, string(m))
	}
	return names
}
