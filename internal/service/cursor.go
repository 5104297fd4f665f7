package service

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/przhevallsky/transferboss/internal/custom_err"
	"github.com/przhevallsky/transferboss/internal/models"
)

type cursorPayload struct {
	CreatedAt string `json:"c"`
	ID        string `json:"i"`
}

// EncodeCursor produces an opaque page token. Clients must not build or parse it.
func EncodeCursor(c models.Cursor) string {
	raw, _ := json.Marshal(cursorPayload{
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
		ID:        c.ID.String(),
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func DecodeCursor(token string) (*models.Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64", custom_err.ErrInvalidCursor)
	}

	var p cursorPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", custom_err.ErrInvalidCursor)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp", custom_err.ErrInvalidCursor)
	}
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad id", custom_err.ErrInvalidCursor)
	}

	return &models.Cursor{CreatedAt: createdAt, ID: id}, nil
}
