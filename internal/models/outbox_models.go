package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OutboxEventType string

const (
	EventTransferCreated       OutboxEventType = "TRANSFER_CREATED"
	EventTransferStatusChanged OutboxEventType = "TRANSFER_STATUS_CHANGED"
	EventPaymentRequested      OutboxEventType = "PAYMENT_REQUESTED"
	EventComplianceRequested   OutboxEventType = "COMPLIANCE_REQUESTED"
	EventPayoutRequested       OutboxEventType = "PAYOUT_REQUESTED"
	EventRefundRequested       OutboxEventType = "REFUND_REQUESTED"
)

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "PENDING"
	OutboxSent    OutboxStatus = "SENT"
	OutboxFailed  OutboxStatus = "FAILED"
)

const (
	EntityTypeTransfer = "TRANSFER"

	// PayloadSchemaVersion grows only when fields are added.
	PayloadSchemaVersion = 1
)

// OutboxEvent is written by this service and updated only by the relay.
type OutboxEvent struct {
	ID          uuid.UUID
	EntityType  string
	EntityID    uuid.UUID
	EventType   OutboxEventType
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
	Topic       *string
	Offset      *int64
}

// TransferCreatedPayload контракт с relay и потребителями, поля только добавляются
type TransferCreatedPayload struct {
	SchemaVersion    int       `json:"schema_version"`
	EventID          uuid.UUID `json:"event_id"`
	TransferID       uuid.UUID `json:"transfer_id"`
	SenderID         uuid.UUID `json:"sender_id"`
	SendAmount       string    `json:"send_amount"`
	SendCurrency     string    `json:"send_currency"`
	ReceiveAmount    string    `json:"receive_amount"`
	ReceiveCurrency  string    `json:"receive_currency"`
	ExchangeRate     string    `json:"exchange_rate"`
	FeeAmount        string    `json:"fee_amount"`
	DeliveryMethod   string    `json:"delivery_method"`
	SourceCountry    string    `json:"source_country"`
	DestCountry      string    `json:"dest_country"`
	RecipientID      uuid.UUID `json:"recipient_id"`
	RecipientName    string    `json:"recipient_name"`
	RecipientCountry string    `json:"recipient_country"`
	CreatedAt        time.Time `json:"created_at"`
}

type TransferStatusChangedPayload struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       uuid.UUID `json:"event_id"`
	TransferID    uuid.UUID `json:"transfer_id"`
	SenderID      uuid.UUID `json:"sender_id"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	Reason        string    `json:"reason,omitempty"`
	Version       int       `json:"version"`
	ChangedAt     time.Time `json:"changed_at"`
}

func NewTransferCreatedEvent(t *Transfer, r *Recipient, now time.Time) (*OutboxEvent, error) {
	eventID := uuid.New()
	payload := TransferCreatedPayload{
		SchemaVersion:    PayloadSchemaVersion,
		EventID:          eventID,
		TransferID:       t.ID,
		SenderID:         t.SenderID,
		SendAmount:       t.SendAmount.StringFixed(AmountScale),
		SendCurrency:     t.SendCurrency,
		ReceiveAmount:    t.ReceiveAmount.StringFixed(AmountScale),
		ReceiveCurrency:  t.ReceiveCurrency,
		ExchangeRate:     t.ExchangeRate.StringFixed(RateScale),
		FeeAmount:        t.FeeAmount.StringFixed(AmountScale),
		DeliveryMethod:   string(t.DeliveryMethod),
		SourceCountry:    t.SourceCountry,
		DestCountry:      t.DestCountry,
		RecipientID:      r.ID,
		RecipientName:    r.DisplayName(),
		RecipientCountry: r.Country,
		CreatedAt:        t.CreatedAt,
	}
	return newOutboxEvent(eventID, t.ID, EventTransferCreated, payload, now)
}

// NewStatusChangedEvent expects t to already carry the new status.
func NewStatusChangedEvent(t *Transfer, from TransferStatus, now time.Time) (*OutboxEvent, error) {
	eventID := uuid.New()
	payload := TransferStatusChangedPayload{
		SchemaVersion: PayloadSchemaVersion,
		EventID:       eventID,
		TransferID:    t.ID,
		SenderID:      t.SenderID,
		FromStatus:    string(from),
		ToStatus:      string(t.Status),
		Reason:        deref(t.StatusReason),
		Version:       t.Version + 1,
		ChangedAt:     now,
	}
	return newOutboxEvent(eventID, t.ID, EventTransferStatusChanged, payload, now)
}

func newOutboxEvent(id, entityID uuid.UUID, eventType OutboxEventType, payload any, now time.Time) (*OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return &OutboxEvent{
		ID:         id,
		EntityType: EntityTypeTransfer,
		EntityID:   entityID,
		EventType:  eventType,
		Payload:    body,
		Status:     OutboxPending,
		CreatedAt:  now,
	}, nil
}
