package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/przhevallsky/transferboss/internal/custom_err"
)

const (
	maxPurposeLen       = 100
	maxReferenceNoteLen = 140
)

// CreateTransferRequest тело запроса POST /api/v1/transfers
type CreateTransferRequest struct {
	RecipientID     uuid.UUID       `json:"recipient_id"`
	QuoteID         uuid.UUID       `json:"quote_id"`
	SendAmount      decimal.Decimal `json:"send_amount"`
	SendCurrency    string          `json:"send_currency"`
	ReceiveCurrency string          `json:"receive_currency"`
	SourceCountry   string          `json:"source_country"`
	DestCountry     string          `json:"dest_country"`
	DeliveryMethod  string          `json:"delivery_method"`
	Purpose         string          `json:"purpose,omitempty"`
	ReferenceNote   string          `json:"reference_note,omitempty"`
}

// ToCommand дополняет тело запроса данными из заголовков и токена
func (r CreateTransferRequest) ToCommand(idempotencyKey, senderID uuid.UUID) CreateTransferCommand {
	return CreateTransferCommand{
		IdempotencyKey:  idempotencyKey,
		SenderID:        senderID,
		RecipientID:     r.RecipientID,
		QuoteID:         r.QuoteID,
		SendAmount:      r.SendAmount,
		SendCurrency:    strings.ToUpper(strings.TrimSpace(r.SendCurrency)),
		ReceiveCurrency: strings.ToUpper(strings.TrimSpace(r.ReceiveCurrency)),
		SourceCountry:   strings.ToUpper(strings.TrimSpace(r.SourceCountry)),
		DestCountry:     strings.ToUpper(strings.TrimSpace(r.DestCountry)),
		DeliveryMethod:  r.DeliveryMethod,
		Purpose:         strings.TrimSpace(r.Purpose),
		ReferenceNote:   strings.TrimSpace(r.ReferenceNote),
	}
}

type CreateTransferCommand struct {
	IdempotencyKey  uuid.UUID
	SenderID        uuid.UUID
	RecipientID     uuid.UUID
	QuoteID         uuid.UUID
	SendAmount      decimal.Decimal
	SendCurrency    string
	ReceiveCurrency string
	SourceCountry   string
	DestCountry     string
	DeliveryMethod  string
	Purpose         string
	ReferenceNote   string
}

// Validate checks shape only. Corridor rules are applied by the service.
func (c CreateTransferCommand) Validate() error {
	if c.IdempotencyKey == uuid.Nil {
		return custom_err.NewValidationError("idempotency_key", "", "is required")
	}
	if c.SenderID == uuid.Nil {
		return custom_err.NewValidationError("sender_id", "", "is required")
	}
	if c.RecipientID == uuid.Nil {
		return custom_err.NewValidationError("recipient_id", "", "is required")
	}
	if c.QuoteID == uuid.Nil {
		return custom_err.NewValidationError("quote_id", "", "is required")
	}
	if !c.SendAmount.IsPositive() {
		return custom_err.NewValidationError("send_amount", c.SendAmount.String(), "must be greater than zero")
	}
	if !c.SendAmount.Equal(c.SendAmount.Round(AmountScale)) {
		return custom_err.NewValidationError("send_amount", c.SendAmount.String(), "must have at most 2 decimal places")
	}
	if !IsCurrencyCode(c.SendCurrency) {
		return custom_err.NewValidationError("send_currency", c.SendCurrency, "must be a 3-letter ISO 4217 code")
	}
	if !IsCurrencyCode(c.ReceiveCurrency) {
		return custom_err.NewValidationError("receive_currency", c.ReceiveCurrency, "must be a 3-letter ISO 4217 code")
	}
	if _, err := NewCorridor(c.SourceCountry, c.DestCountry); err != nil {
		return err
	}
	if _, err := ParseDeliveryMethod(c.DeliveryMethod); err != nil {
		return err
	}
	if len(c.Purpose) > maxPurposeLen {
		return custom_err.NewValidationError("purpose", c.Purpose, "is too long")
	}
	if len(c.ReferenceNote) > maxReferenceNoteLen {
		return custom_err.NewValidationError("reference_note", c.ReferenceNote, "is too long")
	}
	return nil
}
