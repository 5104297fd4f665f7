package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SenderClaims claims токена, выпущенного сервисом аутентификации
type SenderClaims struct {
	SenderID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}
