package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/przhevallsky/transferboss/internal/custom_err"
	"github.com/przhevallsky/transferboss/internal/models"
	"github.com/przhevallsky/transferboss/internal/storage"
)

func (r *PgTransferRepository) CreateTx(ctx context.Context, tx pgx.Tx, t *models.Transfer) error {
	const op = "storage.CreateTransferTx"

	_, err := tx.Exec(ctx, storage.CreateTransferQuery,
		t.ID,
		t.IdempotencyKey,
		t.SenderID,
		t.QuoteID,
		t.RecipientID,
		t.SendAmount,
		t.SendCurrency,
		t.ReceiveAmount,
		t.ReceiveCurrency,
		t.ExchangeRate,
		t.FeeAmount,
		t.FeeCurrency,
		t.SourceCountry,
		t.DestCountry,
		string(t.DeliveryMethod),
		string(t.Status),
		t.StatusReason,
		t.PaymentID,
		t.PayoutID,
		t.Purpose,
		t.ReferenceNote,
		t.Version,
		t.CreatedAt,
		t.UpdatedAt,
		t.CompletedAt,
	)
	if err != nil {
		if pgErr, ok := isUniqueViolation(err); ok && strings.Contains(pgErr.ConstraintName, "idempotency_key") {
			return custom_err.ErrDuplicateRequest
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateStatusTx persists the status fields if the stored version still equals
// t.Version, then bumps t.Version. Money and route columns are never written.
func (r *PgTransferRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, t *models.Transfer) error {
	const op = "storage.UpdateTransferStatusTx"

	res, err := tx.Exec(ctx, storage.UpdateTransferStatusQuery,
		string(t.Status),
		t.StatusReason,
		t.UpdatedAt,
		t.CompletedAt,
		t.ID,
		t.Version,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%s: transfer %s at version %d: %w", op, t.ID, t.Version, custom_err.ErrVersionConflict)
	}

	t.Version++
	return nil
}
