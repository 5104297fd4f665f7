package custom_err

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	kinds := []error{ErrInvalidInput, ErrNotFound, ErrBusinessRule, ErrStateConflict, ErrLockUnavailable}

	tests := []struct {
		err  error
		kind error
	}{
		{NewValidationError("send_amount", "-1", "must be positive"), ErrInvalidInput},
		{ErrInvalidCursor, ErrInvalidInput},
		{&UnsupportedCorridorError{Source: "US", Dest: "JP"}, ErrBusinessRule},
		{&UnsupportedDeliveryMethodError{Method: "CASH_PICKUP", CorridorID: "GB_IN"}, ErrBusinessRule},
		{&MinimumAmountError{CorridorID: "US_PH", Minimum: decimal.NewFromInt(10), Requested: decimal.NewFromInt(1)}, ErrBusinessRule},
		{&QuoteExpiredError{QuoteID: uuid.New()}, ErrBusinessRule},
		{&RecipientNotFoundError{RecipientID: uuid.New()}, ErrNotFound},
		{&TransferNotFoundError{TransferID: uuid.New()}, ErrNotFound},
		{&InvalidTransitionError{From: "CREATED", To: "COMPLETED"}, ErrStateConflict},
		{ErrVersionConflict, ErrStateConflict},
		{&LockBusyError{Key: "locks/transfer/x", Waited: time.Second}, ErrLockUnavailable},
	}

	for _, tt := range tests {
		wrapped := fmt.Errorf("service.Op: %w", tt.err)
		for _, kind := range kinds {
			assert.Equal(t, kind == tt.kind, errors.Is(wrapped, kind), "%v is %v", tt.err, kind)
		}
	}
}

func TestDetails(t *testing.T) {
	var d Detailed

	assert.True(t, errors.As(fmt.Errorf("op: %w", &MinimumAmountError{
		CorridorID: "US_PH",
		Minimum:    decimal.NewFromInt(10),
		Currency:   "USD",
		Requested:  decimal.RequireFromString("9.99"),
	}), &d))
	assert.Equal(t, map[string]any{
		"corridor":         "US_PH",
		"minimum_amount":   "10.00",
		"requested_amount": "9.99",
		"currency":         "USD",
	}, d.Details())

	assert.False(t, errors.As(ErrVersionConflict, &d))
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "quote_id is required", NewValidationError("quote_id", "", "is required").Error())
	assert.Equal(t, `send_currency must be upper case (got "usd")`,
		NewValidationError("send_currency", "usd", "must be upper case").Error())
}
