package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/przhevallsky/transferboss/internal/models"
)

func TestIdempotencySweeper_Sweep(t *testing.T) {
	store := newMemStore()
	repo := store.repositories().Idempotency
	ctx := context.Background()

	for _, expiresAt := range []time.Time{
		fixedNow.Add(-time.Hour),
		fixedNow.Add(-time.Second),
		fixedNow.Add(time.Hour),
	} {
		require.NoError(t, repo.CreateTx(ctx, nil, &models.IdempotencyRecord{
			Key:        uuid.New(),
			TransferID: uuid.New(),
			ExpiresAt:  expiresAt,
		}))
	}

	sweeper := NewIdempotencySweeper(repo, "@every 1h", discardLogger())
	sweeper.now = func() time.Time { return fixedNow }

	deleted, err := sweeper.Sweep(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Len(t, store.idempotency, 1)
}

func TestIdempotencySweeper_SweepError(t *testing.T) {
	repo := new(MockIdempotencyRepo)
	repo.On("DeleteExpired", context.Background(), fixedNow).Return(int64(0), errors.New("connection reset"))

	sweeper := NewIdempotencySweeper(repo, "@every 1h", discardLogger())
	sweeper.now = func() time.Time { return fixedNow }

	_, err := sweeper.Sweep(context.Background())

	assert.ErrorContains(t, err, "connection reset")
	repo.AssertExpectations(t)
}

func TestIdempotencySweeper_StartStop(t *testing.T) {
	sweeper := NewIdempotencySweeper(new(MockIdempotencyRepo), "@every 1h", discardLogger())

	require.NoError(t, sweeper.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, sweeper.Stop(ctx))
}

func TestIdempotencySweeper_InvalidSchedule(t *testing.T) {
	sweeper := NewIdempotencySweeper(new(MockIdempotencyRepo), "every tuesday", discardLogger())

	assert.Error(t, sweeper.Start())
}
