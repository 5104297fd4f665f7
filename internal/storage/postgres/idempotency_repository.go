package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/przhevallsky/transferboss/internal/custom_err"
	"github.com/przhevallsky/transferboss/internal/models"
	"github.com/przhevallsky/transferboss/internal/storage"
)

type IdempotencyRepository interface {
	GetByKey(ctx context.Context, key uuid.UUID) (*models.IdempotencyRecord, error)
	CreateTx(ctx context.Context, tx pgx.Tx, record *models.IdempotencyRecord) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type PgIdempotencyRepository struct {
	db DB
}

func NewIdempotencyRepository(db DB) *PgIdempotencyRepository {
	return &PgIdempotencyRepository{db: db}
}

func (r *PgIdempotencyRepository) GetByKey(ctx context.Context, key uuid.UUID) (*models.IdempotencyRecord, error) {
	const op = "storage.GetIdempotencyRecord"

	var rec models.IdempotencyRecord
	err := r.db.QueryRow(ctx, storage.GetIdempotencyRecordQuery, key).Scan(
		&rec.Key,
		&rec.TransferID,
		&rec.ResponseStatus,
		&rec.ResponseBody,
		&rec.CreatedAt,
		&rec.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, custom_err.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rec, nil
}

func (r *PgIdempotencyRepository) CreateTx(ctx context.Context, tx pgx.Tx, record *models.IdempotencyRecord) error {
	const op = "storage.CreateIdempotencyRecordTx"

	_, err := tx.Exec(ctx, storage.CreateIdempotencyRecordQuery,
		record.Key,
		record.TransferID,
		record.ResponseStatus,
		record.ResponseBody,
		record.CreatedAt,
		record.ExpiresAt,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return custom_err.ErrDuplicateRequest
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *PgIdempotencyRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	const op = "storage.DeleteExpiredIdempotencyRecords"

	res, err := r.db.Exec(ctx, storage.DeleteExpiredIdempotencyRecordsQuery, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.RowsAffected(), nil
}
