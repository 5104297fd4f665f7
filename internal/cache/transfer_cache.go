package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/przhevallsky/transferboss/internal/models"
)

const keyPrefix = "transfer:status:"

// TransferCache is best-effort: misses and failures look the same to callers.
type TransferCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.TransferView, bool)
	Put(ctx context.Context, id uuid.UUID, view *models.TransferView)
	Evict(ctx context.Context, id uuid.UUID)
}

type RedisTransferCache struct {
	client    redis.UniversalClient
	ttl       time.Duration
	opTimeout time.Duration
	log       *slog.Logger
}

func NewRedisTransferCache(client redis.UniversalClient, ttl, opTimeout time.Duration, log *slog.Logger) *RedisTransferCache {
	return &RedisTransferCache{
		client:    client,
		ttl:       ttl,
		opTimeout: opTimeout,
		log:       log,
	}
}

func Key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func (c *RedisTransferCache) Get(ctx context.Context, id uuid.UUID) (*models.TransferView, bool) {
	const op = "cache.Get"

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, Key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warn(op, id, err)
		}
		return nil, false
	}

	var view models.TransferView
	if err := json.Unmarshal(raw, &view); err != nil {
		c.warn(op, id, err)
		return nil, false
	}
	return &view, true
}

func (c *RedisTransferCache) Put(ctx context.Context, id uuid.UUID, view *models.TransferView) {
	const op = "cache.Put"

	raw, err := json.Marshal(view)
	if err != nil {
		c.warn(op, id, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, Key(id), raw, c.ttl).Err(); err != nil {
		c.warn(op, id, err)
	}
}

func (c *RedisTransferCache) Evict(ctx context.Context, id uuid.UUID) {
	const op = "cache.Evict"

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, Key(id)).Err(); err != nil {
		c.warn(op, id, err)
	}
}

func (c *RedisTransferCache) warn(op string, id uuid.UUID, err error) {
	c.log.Warn("transfer cache unavailable, falling back to storage",
		slog.String("op", op),
		slog.String("transfer_id", id.String()),
		slog.String("error", err.Error()))
}

type NoOpTransferCache struct{}

func NewNoOpTransferCache() *NoOpTransferCache {
	return &NoOpTransferCache{}
}

func (NoOpTransferCache) Get(context.Context, uuid.UUID) (*models.TransferView, bool) {
	return nil, false
}

func (NoOpTransferCache) Put(context.Context, uuid.UUID, *models.TransferView) {}

func (NoOpTransferCache) Evict(context.Context, uuid.UUID) {}
