package custom_err

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func NewValidationError(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s (got %q)", e.Field, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func (e *ValidationError) Details() map[string]any {
	return map[string]any{"field": e.Field, "value": e.Value, "reason": e.Reason}
}

type UnsupportedCorridorError struct {
	Source string
	Dest   string
}

func (e *UnsupportedCorridorError) Error() string {
	return fmt.Sprintf("corridor %s → %s is not supported", e.Source, e.Dest)
}

func (e *UnsupportedCorridorError) Unwrap() error { return ErrBusinessRule }

func (e *UnsupportedCorridorError) Details() map[string]any {
	return map[string]any{
		"corridor":       e.Source + "_" + e.Dest,
		"source_country": e.Source,
		"dest_country":   e.Dest,
	}
}

type UnsupportedDeliveryMethodError struct {
	Method     string
	CorridorID string
	Available  []string
}

func (e *UnsupportedDeliveryMethodError) Error() string {
	return fmt.Sprintf("delivery method %s is not available for corridor %s, available: %s",
		e.Method, e.CorridorID, strings.Join(e.Available, ", "))
}

func (e *UnsupportedDeliveryMethodError) Unwrap() error { return ErrBusinessRule }

func (e *UnsupportedDeliveryMethodError) Details() map[string]any {
	return map[string]any{
		"delivery_method":   e.Method,
		"corridor":          e.CorridorID,
		"available_methods": e.Available,
	}
}

type MinimumAmountError struct {
	CorridorID string
	Minimum    decimal.Decimal
	Currency   string
	Requested  decimal.Decimal
}

func (e *MinimumAmountError) Error() string {
	return fmt.Sprintf("amount %s %s is below the minimum %s for corridor %s",
		e.Requested.StringFixed(2), e.Currency, e.Minimum.StringFixed(2), e.CorridorID)
}

func (e *MinimumAmountError) Unwrap() error { return ErrBusinessRule }

func (e *MinimumAmountError) Details() map[string]any {
	return map[string]any{
		"corridor":         e.CorridorID,
		"minimum_amount":   e.Minimum.StringFixed(2),
		"requested_amount": e.Requested.StringFixed(2),
		"currency":         e.Currency,
	}
}

// UnsupportedCurrencyPairError means no rate is configured for the pair.
type UnsupportedCurrencyPairError struct {
	SendCurrency    string
	ReceiveCurrency string
}

func (e *UnsupportedCurrencyPairError) Error() string {
	return fmt.Sprintf("no rate configured for %s to %s", e.SendCurrency, e.ReceiveCurrency)
}

func (e *UnsupportedCurrencyPairError) Unwrap() error { return ErrBusinessRule }

func (e *UnsupportedCurrencyPairError) Details() map[string]any {
	return map[string]any{"send_currency": e.SendCurrency, "receive_currency": e.ReceiveCurrency}
}

type QuoteExpiredError struct {
	QuoteID   uuid.UUID
	ExpiredAt time.Time
}

func (e *QuoteExpiredError) Error() string {
	return fmt.Sprintf("quote %s has expired", e.QuoteID)
}

func (e *QuoteExpiredError) Unwrap() error { return ErrBusinessRule }

func (e *QuoteExpiredError) Details() map[string]any {
	d := map[string]any{"quote_id": e.QuoteID.String()}
	if !e.ExpiredAt.IsZero() {
		d["expired_at"] = e.ExpiredAt.UTC().Format(time.RFC3339)
	}
	return d
}

// RecipientNotFoundError is also returned when the recipient belongs to
// another sender, so callers cannot discover foreign recipients.
type RecipientNotFoundError struct {
	RecipientID uuid.UUID
}

func (e *RecipientNotFoundError) Error() string {
	return fmt.Sprintf("recipient %s not found", e.RecipientID)
}

func (e *RecipientNotFoundError) Unwrap() error { return ErrNotFound }

func (e *RecipientNotFoundError) Details() map[string]any {
	return map[string]any{"recipient_id": e.RecipientID.String()}
}

type TransferNotFoundError struct {
	TransferID uuid.UUID
}

func (e *TransferNotFoundError) Error() string {
	return fmt.Sprintf("transfer %s not found", e.TransferID)
}

func (e *TransferNotFoundError) Unwrap() error { return ErrNotFound }

func (e *TransferNotFoundError) Details() map[string]any {
	return map[string]any{"transfer_id": e.TransferID.String()}
}

type InvalidTransitionError struct {
	TransferID uuid.UUID
	From       string
	To         string
	Allowed    []string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transfer %s cannot move from %s to %s", e.TransferID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrStateConflict }

func (e *InvalidTransitionError) Details() map[string]any {
	return map[string]any{
		"transfer_id":     e.TransferID.String(),
		"current_status":  e.From,
		"target_status":   e.To,
		"allowed_targets": e.Allowed,
	}
}

type LockBusyError struct {
	Key    string
	Waited time.Duration
}

func (e *LockBusyError) Error() string {
	return fmt.Sprintf("lock %s is busy, gave up after %s", e.Key, e.Waited)
}

func (e *LockBusyError) Unwrap() error { return ErrLockUnavailable }

func (e *LockBusyError) Details() map[string]any {
	return map[string]any{"lock_key": e.Key, "waited_ms": e.Waited.Milliseconds()}
}
