package service

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/przhevallsky/transferboss/internal/custom_err"
	"github.com/przhevallsky/transferboss/internal/models"
)

// TokenValidator resolves the sender behind a bearer token.
// Tokens are issued by the auth service, this service only verifies them.
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.SenderClaims, error)
}

type JWTValidator struct {
	secret []byte
}

func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

func (v *JWTValidator) ValidateToken(tokenString string) (*models.SenderClaims, error) {
	claims := &models.SenderClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, custom_err.ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, custom_err.ErrTokenNotActive
		}
		return nil, custom_err.ErrInvalidToken
	}

	if !token.Valid || claims.SenderID == uuid.Nil {
		return nil, custom_err.ErrInvalidToken
	}
	return claims, nil
}
