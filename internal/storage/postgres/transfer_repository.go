package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/przhevallsky/transferboss/internal/custom_err"
	"github.com/przhevallsky/transferboss/internal/models"
	"github.com/przhevallsky/transferboss/internal/storage"
)

type TransferRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error)
	GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*models.Transfer, error)
	ListBySender(ctx context.Context, senderID uuid.UUID, after *models.Cursor, limit int) ([]*models.Transfer, error)

	CreateTx(ctx context.Context, tx pgx.Tx, t *models.Transfer) error
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, t *models.Transfer) error
}

type PgTransferRepository struct {
	db DB
}

func NewTransferRepository(db DB) *PgTransferRepository {
	return &PgTransferRepository{db: db}
}

func (r *PgTransferRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	const op = "storage.GetTransferByID"

	t, err := scanTransfer(r.db.QueryRow(ctx, storage.GetTransferByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, custom_err.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func (r *PgTransferRepository) GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*models.Transfer, error) {
	const op = "storage.GetTransferByIdempotencyKey"

	t, err := scanTransfer(r.db.QueryRow(ctx, storage.GetTransferByIdempotencyKeyQuery, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, custom_err.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// ListBySender returns up to limit transfers ordered by (created_at, id) descending,
// strictly after the cursor when one is given.
func (r *PgTransferRepository) ListBySender(ctx context.Context, senderID uuid.UUID, after *models.Cursor, limit int) ([]*models.Transfer, error) {
	const op = "storage.ListTransfersBySender"

	var (
		rows pgx.Rows
		err  error
	)
	if after == nil {
		rows, err = r.db.Query(ctx, storage.ListTransfersFirstPageQuery, senderID, limit)
	} else {
		rows, err = r.db.Query(ctx, storage.ListTransfersAfterCursorQuery, senderID, after.CreatedAt, after.ID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	transfers := make([]*models.Transfer, 0, limit)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return transfers, nil
}

func scanTransfer(row pgx.Row) (*models.Transfer, error) {
	var (
		t              models.Transfer
		deliveryMethod string
		status         string
	)
	err := row.Scan(
		&t.ID,
		&t.IdempotencyKey,
		&t.SenderID,
		&t.QuoteID,
		&t.RecipientID,
		&t.SendAmount,
		&t.SendCurrency,
		&t.ReceiveAmount,
		&t.ReceiveCurrency,
		&t.ExchangeRate,
		&t.FeeAmount,
		&t.FeeCurrency,
		&t.SourceCountry,
		&t.DestCountry,
		&deliveryMethod,
		&status,
		&t.StatusReason,
		&t.PaymentID,
		&t.PayoutID,
		&t.Purpose,
		&t.ReferenceNote,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if t.DeliveryMethod, err = models.ParseDeliveryMethod(deliveryMethod); err != nil {
		return nil, fmt.Errorf("transfer %s: %w", t.ID, err)
	}
	if t.Status, err = models.ParseTransferStatus(status); err != nil {
		return nil, fmt.Errorf("transfer %s: %w", t.ID, err)
	}
	return &t, nil
}
