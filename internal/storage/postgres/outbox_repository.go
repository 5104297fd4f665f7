package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/przhevallsky/transferboss/internal/models"
	"github.com/przhevallsky/transferboss/internal/storage"
)

// OutboxRepository is append-only here; status updates belong to the relay.
type OutboxRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, event *models.OutboxEvent) error
	ListByEntityID(ctx context.Context, entityID uuid.UUID) ([]*models.OutboxEvent, error)
	ListByEntityIDAndStatus(ctx context.Context, entityID uuid.UUID, status models.OutboxStatus) ([]*models.OutboxEvent, error)
}

type PgOutboxRepository struct {
	db DB
}

func NewOutboxRepository(db DB) *PgOutboxRepository {
	return &PgOutboxRepository{db: db}
}

func (r *PgOutboxRepository) CreateTx(ctx context.Context, tx pgx.Tx, event *models.OutboxEvent) error {
	const op = "storage.CreateOutboxEventTx"

	_, err := tx.Exec(ctx, storage.CreateOutboxEventQuery,
		event.ID,
		event.EntityType,
		event.EntityID,
		string(event.EventType),
		event.Payload,
		string(event.Status),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *PgOutboxRepository) ListByEntityID(ctx context.Context, entityID uuid.UUID) ([]*models.OutboxEvent, error) {
	const op = "storage.ListOutboxEventsByEntity"

	rows, err := r.db.Query(ctx, storage.ListOutboxEventsByEntityQuery, entityID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	events, err := collectOutboxEvents(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

func (r *PgOutboxRepository) ListByEntityIDAndStatus(ctx context.Context, entityID uuid.UUID, status models.OutboxStatus) ([]*models.OutboxEvent, error) {
	const op = "storage.ListOutboxEventsByEntityAndStatus"

	rows, err := r.db.Query(ctx, storage.ListOutboxEventsByEntityAndStatusQuery, entityID, string(status))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	events, err := collectOutboxEvents(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

func collectOutboxEvents(rows pgx.Rows) ([]*models.OutboxEvent, error) {
	defer rows.Close()

	var events []*models.OutboxEvent
	for rows.Next() {
		var (
			e         models.OutboxEvent
			eventType string
			status    string
		)
		if err := rows.Scan(
			&e.ID,
			&e.EntityType,
			&e.EntityID,
			&eventType,
			&e.Payload,
			&status,
			&e.CreatedAt,
			&e.ProcessedAt,
			&e.Topic,
			&e.Offset,
		); err != nil {
			return nil, err
		}
		e.EventType = models.OutboxEventType(eventType)
		e.Status = models.OutboxStatus(status)
		events = append(events, &e)
	}
	return events, rows.Err()
}
