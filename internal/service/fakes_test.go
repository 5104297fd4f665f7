package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/przhevallsky/transferboss/internal/custom_err"
	"github.com/przhevallsky/transferboss/internal/models"
)

// memStore keeps rows in memory and serializes transactions, which is enough
// to exercise the unique-key and keyset-pagination behaviour of Postgres.
type memStore struct {
	mu          sync.Mutex
	txMu        sync.Mutex
	transfers   map[uuid.UUID]*models.Transfer
	byKey       map[uuid.UUID]uuid.UUID
	outbox      []*models.OutboxEvent
	idempotency map[uuid.UUID]*models.IdempotencyRecord
	recipients  map[uuid.UUID]*models.Recipient
}

func newMemStore() *memStore {
	return &memStore{
		transfers:   make(map[uuid.UUID]*models.Transfer),
		byKey:       make(map[uuid.UUID]uuid.UUID),
		idempotency: make(map[uuid.UUID]*models.IdempotencyRecord),
		recipients:  make(map[uuid.UUID]*models.Recipient),
	}
}

func (s *memStore) repositories() Repositories {
	return Repositories{
		Transfers:   memTransferRepo{s},
		Outbox:      memOutboxRepo{s},
		Idempotency: memIdempotencyRepo{s},
		Recipients:  memRecipientRepo{s},
	}
}

func (s *memStore) WithTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(nil)
}

func (s *memStore) outboxCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outbox)
}

type memTransferRepo struct{ s *memStore }

func (r memTransferRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transfers[id]
	if !ok {
		return nil, custom_err.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTransferRepo) GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*models.Transfer, error) {
	r.s.mu.Lock()
	id, ok := r.s.byKey[key]
	r.s.mu.Unlock()
	if !ok {
		return nil, custom_err.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r memTransferRepo) ListBySender(_ context.Context, senderID uuid.UUID, after *models.Cursor, limit int) ([]*models.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rows []*models.Transfer
	for _, t := range r.s.transfers {
		if t.SenderID != senderID {
			continue
		}
		if after != nil && !rowBefore(t, after) {
			continue
		}
		cp := *t
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rowBefore(rows[j], &models.Cursor{CreatedAt: rows[i].CreatedAt, ID: rows[i].ID})
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// rowBefore mirrors (created_at, id) < (c.CreatedAt, c.ID).
func rowBefore(t *models.Transfer, c *models.Cursor) bool {
	if !t.CreatedAt.Equal(c.CreatedAt) {
		return t.CreatedAt.Before(c.CreatedAt)
	}
	return compareUUID(t.ID, c.ID) < 0
}

func compareUUID(a, b uuid.UUID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (r memTransferRepo) CreateTx(_ context.Context, _ pgx.Tx, t *models.Transfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, dup := r.s.byKey[t.IdempotencyKey]; dup {
		return custom_err.ErrDuplicateRequest
	}
	cp := *t
	r.s.transfers[t.ID] = &cp
	r.s.byKey[t.IdempotencyKey] = t.ID
	return nil
}

func (r memTransferRepo) UpdateStatusTx(_ context.Context, _ pgx.Tx, t *models.Transfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.transfers[t.ID]
	if !ok || stored.Version != t.Version {
		return custom_err.ErrVersionConflict
	}
	t.Version++
	cp := *t
	r.s.transfers[t.ID] = &cp
	return nil
}

type memOutboxRepo struct{ s *memStore }

func (r memOutboxRepo) CreateTx(_ context.Context, _ pgx.Tx, event *models.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.outbox = append(r.s.outbox, event)
	return nil
}

func (r memOutboxRepo) ListByEntityID(_ context.Context, entityID uuid.UUID) ([]*models.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.OutboxEvent
	for _, e := range r.s.outbox {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memOutboxRepo) ListByEntityIDAndStatus(ctx context.Context, entityID uuid.UUID, status models.OutboxStatus) ([]*models.OutboxEvent, error) {
	all, _ := r.ListByEntityID(ctx, entityID)
	var out []*models.OutboxEvent
	for _, e := range all {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

type memIdempotencyRepo struct{ s *memStore }

func (r memIdempotencyRepo) GetByKey(_ context.Context, key uuid.UUID) (*models.IdempotencyRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.idempotency[key]
	if !ok {
		return nil, custom_err.ErrNotFound
	}
	return rec, nil
}

func (r memIdempotencyRepo) CreateTx(_ context.Context, _ pgx.Tx, record *models.IdempotencyRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, dup := r.s.idempotency[record.Key]; dup {
		return custom_err.ErrDuplicateRequest
	}
	r.s.idempotency[record.Key] = record
	return nil
}

func (r memIdempotencyRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, rec := range r.s.idempotency {
		if rec.ExpiresAt.Before(before) {
			delete(r.s.idempotency, k)
			n++
		}
	}
	return n, nil
}

type memRecipientRepo struct{ s *memStore }

func (r memRecipientRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Recipient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.recipients[id]
	if !ok {
		return nil, custom_err.ErrNotFound
	}
	return rec, nil
}

func (r memRecipientRepo) GetByIDAndSender(ctx context.Context, id, senderID uuid.UUID) (*models.Recipient, error) {
	rec, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.SenderID != senderID {
		return nil, custom_err.ErrNotFound
	}
	return rec, nil
}

func (r memRecipientRepo) ListActiveBySender(_ context.Context, senderID uuid.UUID) ([]*models.Recipient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Recipient
	for _, rec := range r.s.recipients {
		if rec.SenderID == senderID && rec.IsActive {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r memRecipientRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Recipient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Recipient
	for _, id := range ids {
		if rec, ok := r.s.recipients[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
