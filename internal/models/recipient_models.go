package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Recipient struct {
	ID              uuid.UUID
	SenderID        uuid.UUID
	FirstName       string
	LastName        string
	Country         string
	DeliveryDetails json.RawMessage
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r *Recipient) DisplayName() string {
	return r.FirstName + " " + r.LastName
}
