package models

import (
	"time"

	"github.com/google/uuid"
)

type RecipientBrief struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name,omitempty"`
	Country string    `json:"country,omitempty"`
}

// TransferView ответ API по одному переводу, он же кэшируется в Redis
type TransferView struct {
	ID              uuid.UUID      `json:"id"`
	SenderID        uuid.UUID      `json:"sender_id"`
	Status          string         `json:"status"`
	DisplayStatus   string         `json:"display_status"`
	Cancellable     bool           `json:"cancellable"`
	StatusReason    string         `json:"status_reason,omitempty"`
	SendAmount      string         `json:"send_amount"`
	SendCurrency    string         `json:"send_currency"`
	ReceiveAmount   string         `json:"receive_amount"`
	ReceiveCurrency string         `json:"receive_currency"`
	ExchangeRate    string         `json:"exchange_rate"`
	FeeAmount       string         `json:"fee_amount"`
	FeeCurrency     string         `json:"fee_currency"`
	Corridor        string         `json:"corridor"`
	DeliveryMethod  string         `json:"delivery_method"`
	Recipient       RecipientBrief `json:"recipient"`
	Purpose         string         `json:"purpose,omitempty"`
	ReferenceNote   string         `json:"reference_note,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

// NewTransferView builds the sender-facing view. recipient may be nil.
func NewTransferView(t *Transfer, recipient *Recipient) *TransferView {
	v := &TransferView{
		ID:              t.ID,
		SenderID:        t.SenderID,
		Status:          string(t.Status),
		DisplayStatus:   DisplayStatus(t.Status),
		Cancellable:     t.IsCancellable(),
		StatusReason:    deref(t.StatusReason),
		SendAmount:      t.SendAmount.StringFixed(AmountScale),
		SendCurrency:    t.SendCurrency,
		ReceiveAmount:   t.ReceiveAmount.StringFixed(AmountScale),
		ReceiveCurrency: t.ReceiveCurrency,
		ExchangeRate:    t.ExchangeRate.StringFixed(RateScale),
		FeeAmount:       t.FeeAmount.StringFixed(AmountScale),
		FeeCurrency:     t.FeeCurrency,
		Corridor:        t.Corridor().String(),
		DeliveryMethod:  string(t.DeliveryMethod),
		Recipient:       RecipientBrief{ID: t.RecipientID},
		Purpose:         deref(t.Purpose),
		ReferenceNote:   deref(t.ReferenceNote),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		CompletedAt:     t.CompletedAt,
	}
	if recipient != nil {
		v.Recipient.Name = recipient.DisplayName()
		v.Recipient.Country = recipient.Country
	}
	return v
}

type Pagination struct {
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

type TransferListResponse struct {
	Items      []*TransferView `json:"items"`
	Pagination Pagination      `json:"pagination"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
