package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/przhevallsky/transferboss/internal/custom_err"
)

// Transfer is the aggregate root. Money and route fields are populated by
// NewTransfer or by the repository; only TransitionTo changes state afterwards.
type Transfer struct {
	ID             uuid.UUID
	IdempotencyKey uuid.UUID
	SenderID       uuid.UUID
	QuoteID        uuid.UUID
	RecipientID    uuid.UUID

	SendAmount      decimal.Decimal
	SendCurrency    string
	ReceiveAmount   decimal.Decimal
	ReceiveCurrency string
	ExchangeRate    decimal.Decimal
	FeeAmount       decimal.Decimal
	FeeCurrency     string

	SourceCountry  string
	DestCountry    string
	DeliveryMethod DeliveryMethod

	Status       TransferStatus
	StatusReason *string
	PaymentID    *uuid.UUID
	PayoutID     *uuid.UUID

	Purpose       *string
	ReferenceNote *string

	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

type NewTransferParams struct {
	ID             uuid.UUID
	IdempotencyKey uuid.UUID
	SenderID       uuid.UUID
	QuoteID        uuid.UUID
	RecipientID    uuid.UUID
	Send           Money
	Receive        Money
	ExchangeRate   decimal.Decimal
	Fee            Money
	Corridor       Corridor
	DeliveryMethod DeliveryMethod
	Purpose        string
	ReferenceNote  string
}

func NewTransfer(p NewTransferParams, now time.Time) *Transfer {
	return &Transfer{
		ID:              p.ID,
		IdempotencyKey:  p.IdempotencyKey,
		SenderID:        p.SenderID,
		QuoteID:         p.QuoteID,
		RecipientID:     p.RecipientID,
		SendAmount:      p.Send.Amount.Round(AmountScale),
		SendCurrency:    p.Send.Currency,
		ReceiveAmount:   p.Receive.Amount.Round(AmountScale),
		ReceiveCurrency: p.Receive.Currency,
		ExchangeRate:    p.ExchangeRate.Round(RateScale),
		FeeAmount:       p.Fee.Amount.Round(AmountScale),
		FeeCurrency:     p.Fee.Currency,
		SourceCountry:   p.Corridor.SourceCountry,
		DestCountry:     p.Corridor.DestCountry,
		DeliveryMethod:  p.DeliveryMethod,
		Status:          StatusCreated,
		Purpose:         optional(p.Purpose),
		ReferenceNote:   optional(p.ReferenceNote),
		Version:         0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (t *Transfer) Corridor() Corridor {
	return Corridor{SourceCountry: t.SourceCountry, DestCountry: t.DestCountry}
}

// TransitionTo moves the transfer to target. An illegal move leaves t untouched.
func (t *Transfer) TransitionTo(target TransferStatus, reason string, now time.Time) error {
	if !CanTransitionTo(t.Status, target) {
		return &custom_err.InvalidTransitionError{
			TransferID: t.ID,
			From:       string(t.Status),
			To:         string(target),
			Allowed:    statusNames(transitions[t.Status]),
		}
	}

	t.Status = target
	t.StatusReason = optional(reason)
	t.UpdatedAt = now
	if IsTerminal(target) {
		completed := now
		t.CompletedAt = &completed
	}
	return nil
}

func (t *Transfer) IsCancellable() bool {
	return CanTransitionTo(t.Status, StatusCancelled)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Cursor is a position in the (created_at desc, id desc) ordering.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

type TransferPage struct {
	Items      []*Transfer
	NextCursor string
	HasMore    bool
}
