package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/przhevallsky/transferboss/internal/models"
)

type MockTransfers struct {
	mock.Mock
}

func (m *MockTransfers) CreateTransfer(ctx context.Context, cmd models.CreateTransferCommand) (*models.Transfer, bool, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.Transfer), args.Bool(1), args.Error(2)
}

func (m *MockTransfers) GetTransfer(ctx context.Context, id uuid.UUID) (*models.TransferView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransferView), args.Error(1)
}

func (m *MockTransfers) ListTransfers(ctx context.Context, senderID uuid.UUID, cursor string, limit int) (*models.TransferPage, error) {
	args := m.Called(ctx, senderID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransferPage), args.Error(1)
}

func (m *MockTransfers) DescribeTransfers(ctx context.Context, transfers []*models.Transfer) ([]*models.TransferView, error) {
	args := m.Called(ctx, transfers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TransferView), args.Error(1)
}

func (m *MockTransfers) TransitionStatus(ctx context.Context, id uuid.UUID, target models.TransferStatus, reason string) (*models.Transfer, error) {
	args := m.Called(ctx, id, target, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockTransfers) CancelTransfer(ctx context.Context, senderID, id uuid.UUID, reason string) (*models.Transfer, error) {
	args := m.Called(ctx, senderID, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}
