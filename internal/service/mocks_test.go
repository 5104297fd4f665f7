package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/przhevallsky/transferboss/internal/models"
)

type MockTransferRepo struct {
	mock.Mock
}

func (m *MockTransferRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockTransferRepo) GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*models.Transfer, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockTransferRepo) ListBySender(ctx context.Context, senderID uuid.UUID, after *models.Cursor, limit int) ([]*models.Transfer, error) {
	args := m.Called(ctx, senderID, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transfer), args.Error(1)
}

func (m *MockTransferRepo) CreateTx(ctx context.Context, tx pgx.Tx, t *models.Transfer) error {
	args := m.Called(ctx, tx, t)
	return args.Error(0)
}

func (m *MockTransferRepo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, t *models.Transfer) error {
	args := m.Called(ctx, tx, t)
	if args.Error(0) == nil {
		t.Version++
	}
	return args.Error(0)
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) CreateTx(ctx context.Context, tx pgx.Tx, event *models.OutboxEvent) error {
	args := m.Called(ctx, tx, event)
	return args.Error(0)
}

func (m *MockOutboxRepo) ListByEntityID(ctx context.Context, entityID uuid.UUID) ([]*models.OutboxEvent, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepo) ListByEntityIDAndStatus(ctx context.Context, entityID uuid.UUID, status models.OutboxStatus) ([]*models.OutboxEvent, error) {
	args := m.Called(ctx, entityID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OutboxEvent), args.Error(1)
}

type MockIdempotencyRepo struct {
	mock.Mock
}

func (m *MockIdempotencyRepo) GetByKey(ctx context.Context, key uuid.UUID) (*models.IdempotencyRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IdempotencyRecord), args.Error(1)
}

func (m *MockIdempotencyRepo) CreateTx(ctx context.Context, tx pgx.Tx, record *models.IdempotencyRecord) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockIdempotencyRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type MockRecipientRepo struct {
	mock.Mock
}

func (m *MockRecipientRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipient), args.Error(1)
}

func (m *MockRecipientRepo) GetByIDAndSender(ctx context.Context, id, senderID uuid.UUID) (*models.Recipient, error) {
	args := m.Called(ctx, id, senderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipient), args.Error(1)
}

func (m *MockRecipientRepo) ListActiveBySender(ctx context.Context, senderID uuid.UUID) ([]*models.Recipient, error) {
	args := m.Called(ctx, senderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Recipient), args.Error(1)
}

func (m *MockRecipientRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Recipient, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Recipient), args.Error(1)
}

type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(nil)
}

type MockQuoteResolver struct {
	mock.Mock
}

func (m *MockQuoteResolver) Resolve(ctx context.Context, req models.QuoteRequest) (*models.Quote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quote), args.Error(1)
}

type MockTransferCache struct {
	mock.Mock
}

func (m *MockTransferCache) Get(ctx context.Context, id uuid.UUID) (*models.TransferView, bool) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*models.TransferView), args.Bool(1)
}

func (m *MockTransferCache) Put(ctx context.Context, id uuid.UUID, view *models.TransferView) {
	m.Called(ctx, id, view)
}

func (m *MockTransferCache) Evict(ctx context.Context, id uuid.UUID) {
	m.Called(ctx, id)
}
