package models

import (
	"time"

	"github.com/google/uuid"
)

// IdempotentResponseStatus is the HTTP status remembered for a newly created transfer.
const IdempotentResponseStatus = 201

type IdempotencyRecord struct {
	Key            uuid.UUID
	TransferID     uuid.UUID
	ResponseStatus int
	ResponseBody   []byte
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

func NewIdempotencyRecord(key, transferID uuid.UUID, body []byte, now time.Time, ttl time.Duration) *IdempotencyRecord {
	return &IdempotencyRecord{
		Key:            key,
		TransferID:     transferID,
		ResponseStatus: IdempotentResponseStatus,
		ResponseBody:   body,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}
}
