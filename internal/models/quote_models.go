package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuoteRequest struct {
	QuoteID         uuid.UUID
	Send            Money
	ReceiveCurrency string
	Corridor        Corridor
	DeliveryMethod  DeliveryMethod
}

type Quote struct {
	ID           uuid.UUID
	Receive      Money
	ExchangeRate decimal.Decimal
	Fee          Money
	ExpiresAt    time.Time
}

func (q *Quote) IsExpired(now time.Time) bool {
	return !q.ExpiresAt.IsZero() && now.After(q.ExpiresAt)
}
