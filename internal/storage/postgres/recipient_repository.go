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

type RecipientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recipient, error)
	GetByIDAndSender(ctx context.Context, id, senderID uuid.UUID) (*models.Recipient, error)
	ListActiveBySender(ctx context.Context, senderID uuid.UUID) ([]*models.Recipient, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Recipient, error)
}

type PgRecipientRepository struct {
	db DB
}

func NewRecipientRepository(db DB) *PgRecipientRepository {
	return &PgRecipientRepository{db: db}
}

func (r *PgRecipientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipient, error) {
	const op = "storage.GetRecipientByID"

	rec, err := scanRecipient(r.db.QueryRow(ctx, storage.GetRecipientByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, custom_err.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

func (r *PgRecipientRepository) GetByIDAndSender(ctx context.Context, id, senderID uuid.UUID) (*models.Recipient, error) {
	const op = "storage.GetRecipientByIDAndSender"

	rec, err := scanRecipient(r.db.QueryRow(ctx, storage.GetRecipientByIDAndSenderQuery, id, senderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, custom_err.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

func (r *PgRecipientRepository) ListActiveBySender(ctx context.Context, senderID uuid.UUID) ([]*models.Recipient, error) {
	const op = "storage.ListActiveRecipientsBySender"

	rows, err := r.db.Query(ctx, storage.ListActiveRecipientsBySenderQuery, senderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	recipients, err := collectRecipients(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return recipients, nil
}

func (r *PgRecipientRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Recipient, error) {
	const op = "storage.ListRecipientsByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, storage.ListRecipientsByIDsQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	recipients, err := collectRecipients(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return recipients, nil
}

func collectRecipients(rows pgx.Rows) ([]*models.Recipient, error) {
	defer rows.Close()

	var recipients []*models.Recipient
	for rows.Next() {
		rec, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

func scanRecipient(row pgx.Row) (*models.Recipient, error) {
	var rec models.Recipient
	err := row.Scan(
		&rec.ID,
		&rec.SenderID,
		&rec.FirstName,
		&rec.LastName,
		&rec.Country,
		&rec.DeliveryDetails,
		&rec.IsActive,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
