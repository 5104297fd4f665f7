package middlew

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/przhevallsky/transferboss/internal/custom_err"
	"github.com/przhevallsky/transferboss/internal/service"
	"github.com/przhevallsky/transferboss/pkg/response"
)

func RequireAuth(validator service.TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := GetLogger(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.WriteJSONError(w, log, http.StatusUnauthorized, "unauthorized", "Authorization header is required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("invalid authorization header format")
				response.WriteJSONError(w, log, http.StatusUnauthorized, "unauthorized", "Invalid authorization header format")
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				switch {
				case errors.Is(err, custom_err.ErrTokenExpired):
					response.WriteJSONError(w, log, http.StatusUnauthorized, "token_expired", "Token has expired")
				case errors.Is(err, custom_err.ErrTokenNotActive):
					response.WriteJSONError(w, log, http.StatusUnauthorized, "token_not_active", "Token not yet active")
				case errors.Is(err, custom_err.ErrInvalidToken):
					response.WriteJSONError(w, log, http.StatusUnauthorized, "invalid_token", "Invalid token")
				default:
					log.Error("failed to validate token", slog.String("error", err.Error()))
					response.WriteJSONError(w, log, http.StatusInternalServerError, "internal_error", "Internal error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), senderIDKey, claims.SenderID)
			loggerWithSender := log.With(slog.String("sender_id", claims.SenderID.String()))
			ctx = context.WithValue(ctx, loggerKey, loggerWithSender)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSenderID(ctx context.Context) uuid.UUID {
	senderID, ok := ctx.Value(senderIDKey).(uuid.UUID)
	if !ok {
		panic("senderID not found in context - RequireAuth middleware not applied?")
	}
	return senderID
}

// WithSenderID кладёт отправителя в контекст так же, как RequireAuth
func WithSenderID(ctx context.Context, senderID uuid.UUID) context.Context {
	return context.WithValue(ctx, senderIDKey, senderID)
}
