package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/przhevallsky/transferboss/internal/cache"
	"github.com/przhevallsky/transferboss/internal/custom_err"
	"github.com/przhevallsky/transferboss/internal/lock"
	"github.com/przhevallsky/transferboss/internal/models"
	"github.com/przhevallsky/transferboss/internal/storage/postgres"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Transfers interface {
	CreateTransfer(ctx context.Context, cmd models.CreateTransferCommand) (*models.Transfer, bool, error)
	GetTransfer(ctx context.Context, id uuid.UUID) (*models.TransferView, error)
	ListTransfers(ctx context.Context, senderID uuid.UUID, cursor string, limit int) (*models.TransferPage, error)
	DescribeTransfers(ctx context.Context, transfers []*models.Transfer) ([]*models.TransferView, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, target models.TransferStatus, reason string) (*models.Transfer, error)
	CancelTransfer(ctx context.Context, senderID, id uuid.UUID, reason string) (*models.Transfer, error)
}

type Repositories struct {
	Transfers   postgres.TransferRepository
	Outbox      postgres.OutboxRepository
	Idempotency postgres.IdempotencyRepository
	Recipients  postgres.RecipientRepository
}

type TransferService struct {
	transfers      postgres.TransferRepository
	outbox         postgres.OutboxRepository
	idempotency    postgres.IdempotencyRepository
	recipients     postgres.RecipientRepository
	txManager      TxManager
	locker         lock.Locker
	cache          cache.TransferCache
	corridors      CorridorPolicy
	quotes         QuoteResolver
	idempotencyTTL time.Duration
	now            func() time.Time
	log            *slog.Logger
}

func NewTransferService(
	repos Repositories,
	txManager TxManager,
	locker lock.Locker,
	transferCache cache.TransferCache,
	corridors CorridorPolicy,
	quotes QuoteResolver,
	idempotencyTTL time.Duration,
	log *slog.Logger,
) *TransferService {
	return &TransferService{
		transfers:      repos.Transfers,
		outbox:         repos.Outbox,
		idempotency:    repos.Idempotency,
		recipients:     repos.Recipients,
		txManager:      txManager,
		locker:         locker,
		cache:          transferCache,
		corridors:      corridors,
		quotes:         quotes,
		idempotencyTTL: idempotencyTTL,
		now:            time.Now,
		log:            log,
	}
}

// CreateTransfer returns the transfer for cmd.IdempotencyKey, creating it on
// first use. The bool is true only for the call that created it.
func (s *TransferService) CreateTransfer(ctx context.Context, cmd models.CreateTransferCommand) (*models.Transfer, bool, error) {
	const op = "service.CreateTransfer"

	if err := cmd.Validate(); err != nil {
		return nil, false, err
	}

	var (
		result *models.Transfer
		isNew  bool
	)
	err := s.locker.ExecuteWithLock(ctx, "transfer:"+cmd.IdempotencyKey.String(), func(ctx context.Context) error {
		var err error
		result, isNew, err = s.createLocked(ctx, cmd)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return result, isNew, nil
}

func (s *TransferService) createLocked(ctx context.Context, cmd models.CreateTransferCommand) (*models.Transfer, bool, error) {
	const op = "service.createLocked"

	existing, err := s.transfers.GetByIdempotencyKey(ctx, cmd.IdempotencyKey)
	switch {
	case err == nil:
		s.log.Info("idempotent replay, returning existing transfer",
			slog.String("op", op),
			slog.String("idempotency_key", cmd.IdempotencyKey.String()),
			slog.String("transfer_id", existing.ID.String()))
		return existing, false, nil
	case !errors.Is(err, custom_err.ErrNotFound):
		return nil, false, fmt.Errorf("failed to look up idempotency key: %w", err)
	}

	corridor, method, err := s.checkCorridor(cmd)
	if err != nil {
		return nil, false, err
	}

	recipient, err := s.ownedRecipient(ctx, cmd.SenderID, cmd.RecipientID)
	if err != nil {
		return nil, false, err
	}

	send, err := models.NewMoney(cmd.SendAmount, cmd.SendCurrency)
	if err != nil {
		return nil, false, err
	}
	quote, err := s.quotes.Resolve(ctx, models.QuoteRequest{
		QuoteID:         cmd.QuoteID,
		Send:            send,
		ReceiveCurrency: cmd.ReceiveCurrency,
		Corridor:        corridor,
		DeliveryMethod:  method,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve quote: %w", err)
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	if quote.IsExpired(now) {
		return nil, false, &custom_err.QuoteExpiredError{QuoteID: cmd.QuoteID, ExpiredAt: quote.ExpiresAt}
	}

	transfer := models.NewTransfer(models.NewTransferParams{
		ID:             uuid.New(),
		IdempotencyKey: cmd.IdempotencyKey,
		SenderID:       cmd.SenderID,
		QuoteID:        cmd.QuoteID,
		RecipientID:    recipient.ID,
		Send:           send,
		Receive:        quote.Receive,
		ExchangeRate:   quote.ExchangeRate,
		Fee:            quote.Fee,
		Corridor:       corridor,
		DeliveryMethod: method,
		Purpose:        cmd.Purpose,
		ReferenceNote:  cmd.ReferenceNote,
	}, now)

	event, err := models.NewTransferCreatedEvent(transfer, recipient, now)
	if err != nil {
		return nil, false, err
	}

	body, err := json.Marshal(models.NewTransferView(transfer, recipient))
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal response body: %w", err)
	}
	record := models.NewIdempotencyRecord(cmd.IdempotencyKey, transfer.ID, body, now, s.idempotencyTTL)

	err = s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.transfers.CreateTx(ctx, tx, transfer); err != nil {
			return err
		}
		if err := s.outbox.CreateTx(ctx, tx, event); err != nil {
			return err
		}
		return s.idempotency.CreateTx(ctx, tx, record)
	})
	if err != nil {
		if errors.Is(err, custom_err.ErrDuplicateRequest) {
			// Only reachable when two writers raced without a shared lock.
			winner, getErr := s.transfers.GetByIdempotencyKey(ctx, cmd.IdempotencyKey)
			if getErr != nil {
				return nil, false, fmt.Errorf("failed to load concurrent transfer: %w", errors.Join(err, getErr))
			}
			s.log.Warn("lost idempotency race, returning winner",
				slog.String("op", op),
				slog.String("idempotency_key", cmd.IdempotencyKey.String()),
				slog.String("transfer_id", winner.ID.String()))
			return winner, false, nil
		}
		s.log.Error("failed to persist transfer",
			slog.String("op", op),
			slog.String("idempotency_key", cmd.IdempotencyKey.String()),
			slog.String("error", err.Error()))
		return nil, false, fmt.Errorf("failed to persist transfer: %w", err)
	}

	s.log.Info("transfer created",
		slog.String("op", op),
		slog.String("transfer_id", transfer.ID.String()),
		slog.String("corridor", corridor.ID()),
		slog.String("send_amount", send.String()))
	return transfer, true, nil
}

func (s *TransferService) checkCorridor(cmd models.CreateTransferCommand) (models.Corridor, models.DeliveryMethod, error) {
	corridor := models.Corridor{SourceCountry: cmd.SourceCountry, DestCountry: cmd.DestCountry}

	rule, ok := s.corridors.Rule(corridor)
	if !ok {
		return corridor, "", &custom_err.UnsupportedCorridorError{Source: cmd.SourceCountry, Dest: cmd.DestCountry}
	}

	method, err := models.ParseDeliveryMethod(cmd.DeliveryMethod)
	if err != nil {
		return corridor, "", err
	}
	if !rule.Supports(method) {
		return corridor, "", &custom_err.UnsupportedDeliveryMethodError{
			Method:     string(method),
			CorridorID: corridor.ID(),
			Available:  rule.MethodNames(),
		}
	}

	if minimum := rule.Minimum(); cmd.SendAmount.LessThan(minimum) {
		return corridor, "", &custom_err.MinimumAmountError{
			CorridorID: corridor.ID(),
			Minimum:    minimum,
			Currency:   cmd.SendCurrency,
			Requested:  cmd.SendAmount,
		}
	}

	return corridor, method, nil
}

// ownedRecipient hides whether a foreign recipient exists.
func (s *TransferService) ownedRecipient(ctx context.Context, senderID, recipientID uuid.UUID) (*models.Recipient, error) {
	const op = "service.ownedRecipient"

	recipient, err := s.recipients.GetByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, custom_err.ErrNotFound) {
			return nil, &custom_err.RecipientNotFoundError{RecipientID: recipientID}
		}
		return nil, fmt.Errorf("failed to load recipient: %w", err)
	}

	if recipient.SenderID != senderID {
		s.log.Warn("recipient belongs to another sender",
			slog.String("op", op),
			slog.String("recipient_id", recipientID.String()),
			slog.String("sender_id", senderID.String()))
		return nil, &custom_err.RecipientNotFoundError{RecipientID: recipientID}
	}
	return recipient, nil
}

func (s *TransferService) GetTransfer(ctx context.Context, id uuid.UUID) (*models.TransferView, error) {
	const op = "service.GetTransfer"

	if view, ok := s.cache.Get(ctx, id); ok {
		return view, nil
	}

	t, err := s.loadTransfer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	recipient, err := s.recipients.GetByID(ctx, t.RecipientID)
	if err != nil && !errors.Is(err, custom_err.ErrNotFound) {
		return nil, fmt.Errorf("%s: failed to load recipient: %w", op, err)
	}

	view := models.NewTransferView(t, recipient)
	s.cache.Put(ctx, id, view)
	return view, nil
}

func (s *TransferService) ListTransfers(ctx context.Context, senderID uuid.UUID, cursor string, limit int) (*models.TransferPage, error) {
	const op = "service.ListTransfers"

	limit = clampPageSize(limit)

	var after *models.Cursor
	if cursor != "" {
		var err error
		if after, err = DecodeCursor(cursor); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	rows, err := s.transfers.ListBySender(ctx, senderID, after, limit+1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	page := &models.TransferPage{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		page.NextCursor = EncodeCursor(models.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.HasMore = true
	}
	return page, nil
}

// DescribeTransfers builds views for a page, loading recipients in one query.
func (s *TransferService) DescribeTransfers(ctx context.Context, transfers []*models.Transfer) ([]*models.TransferView, error) {
	const op = "service.DescribeTransfers"

	ids := make([]uuid.UUID, 0, len(transfers))
	seen := make(map[uuid.UUID]struct{}, len(transfers))
	for _, t := range transfers {
		if _, ok := seen[t.RecipientID]; !ok {
			seen[t.RecipientID] = struct{}{}
			ids = append(ids, t.RecipientID)
		}
	}

	recipients, err := s.recipients.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	byID := make(map[uuid.UUID]*models.Recipient, len(recipients))
	for _, r := range recipients {
		byID[r.ID] = r
	}

	views := make([]*models.TransferView, 0, len(transfers))
	for _, t := range transfers {
		views = append(views, models.NewTransferView(t, byID[t.RecipientID]))
	}
	return views, nil
}

// TransitionStatus moves a transfer to target and records the change in the
// outbox. A concurrent writer surfaces as custom_err.ErrVersionConflict.
func (s *TransferService) TransitionStatus(ctx context.Context, id uuid.UUID, target models.TransferStatus, reason string) (*models.Transfer, error) {
	const op = "service.TransitionStatus"

	t, err := s.loadTransfer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.transition(ctx, t, target, reason); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func (s *TransferService) CancelTransfer(ctx context.Context, senderID, id uuid.UUID, reason string) (*models.Transfer, error) {
	const op = "service.CancelTransfer"

	t, err := s.loadTransfer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if t.SenderID != senderID {
		return nil, fmt.Errorf("%s: %w", op, &custom_err.TransferNotFoundError{TransferID: id})
	}
	if reason == "" {
		reason = "cancelled by sender"
	}
	if err := s.transition(ctx, t, models.StatusCancelled, reason); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func (s *TransferService) transition(ctx context.Context, t *models.Transfer, target models.TransferStatus, reason string) error {
	const op = "service.transition"

	from := t.Status
	now := s.now().UTC().Truncate(time.Microsecond)
	if err := t.TransitionTo(target, reason, now); err != nil {
		return err
	}

	event, err := models.NewStatusChangedEvent(t, from, now)
	if err != nil {
		return err
	}

	err = s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.transfers.UpdateStatusTx(ctx, tx, t); err != nil {
			return err
		}
		return s.outbox.CreateTx(ctx, tx, event)
	})
	if err != nil {
		return err
	}

	s.cache.Evict(ctx, t.ID)

	s.log.Info("transfer status changed",
		slog.String("op", op),
		slog.String("transfer_id", t.ID.String()),
		slog.String("from", string(from)),
		slog.String("to", string(target)),
		slog.Int("version", t.Version))
	return nil
}

func (s *TransferService) loadTransfer(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	t, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, custom_err.ErrNotFound) {
			return nil, &custom_err.TransferNotFoundError{TransferID: id}
		}
		return nil, err
	}
	return t, nil
}

func clampPageSize(limit int) int {
	switch {
	case limit < 1:
		return 1
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}
