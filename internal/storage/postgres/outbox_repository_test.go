package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/przhevallsky/transferboss/internal/models"
	"github.com/przhevallsky/transferboss/internal/storage"
)

var outboxColumnNames = []string{
	"id", "entity_type", "entity_id", "event_type", "payload",
	"status", "created_at", "processed_at", "topic", "kafka_offset",
}

func TestPgOutboxRepository_CreateTx(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOutboxRepository(mock)
	tx := beginTx(t, mock)

	event := &models.OutboxEvent{
		ID:         uuid.New(),
		EntityType: models.EntityTypeTransfer,
		EntityID:   uuid.New(),
		EventType:  models.EventTransferCreated,
		Payload:    []byte(`{"schema_version":1}`),
		Status:     models.OutboxPending,
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec(regexp.QuoteMeta(storage.CreateOutboxEventQuery)).
		WithArgs(event.ID, "TRANSFER", event.EntityID, "TRANSFER_CREATED", event.Payload, "PENDING", event.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.CreateTx(context.Background(), tx, event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgOutboxRepository_ListByEntityIDAndStatus(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOutboxRepository(mock)
	entityID := uuid.New()
	createdAt := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	sentAt := createdAt.Add(time.Second)
	topic := "transfers.events"
	offset := int64(42)

	rows := pgxmock.NewRows(outboxColumnNames).
		AddRow(uuid.New(), "TRANSFER", entityID, "TRANSFER_CREATED", []byte(`{}`), "SENT", createdAt, &sentAt, &topic, &offset)

	mock.ExpectQuery(regexp.QuoteMeta(storage.ListOutboxEventsByEntityAndStatusQuery)).
		WithArgs(entityID, "SENT").
		WillReturnRows(rows)

	events, err := repo.ListByEntityIDAndStatus(context.Background(), entityID, models.OutboxSent)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventTransferCreated, events[0].EventType)
	assert.Equal(t, models.OutboxSent, events[0].Status)
	require.NotNil(t, events[0].Offset)
	assert.Equal(t, int64(42), *events[0].Offset)
	assert.Equal(t, "transfers.events", *events[0].Topic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgOutboxRepository_ListByEntityID_Empty(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOutboxRepository(mock)
	entityID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(storage.ListOutboxEventsByEntityQuery)).
		WithArgs(entityID).
		WillReturnRows(pgxmock.NewRows(outboxColumnNames))

	events, err := repo.ListByEntityID(context.Background(), entityID)

	require.NoError(t, err)
	assert.Empty(t, events)
}
