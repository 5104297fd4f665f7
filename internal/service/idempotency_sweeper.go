package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/przhevallsky/transferboss/internal/storage/postgres"
)

const sweepTimeout = time.Minute

// IdempotencySweeper purges idempotency records past their retention window.
type IdempotencySweeper struct {
	repo     postgres.IdempotencyRepository
	cron     *cron.Cron
	schedule string
	now      func() time.Time
	log      *slog.Logger
}

func NewIdempotencySweeper(repo postgres.IdempotencyRepository, schedule string, log *slog.Logger) *IdempotencySweeper {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelInfo))
	return &IdempotencySweeper{
		repo:     repo,
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		schedule: schedule,
		now:      time.Now,
		log:      log,
	}
}

func (s *IdempotencySweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		_, _ = s.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule idempotency sweep %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.Info("idempotency sweeper started", slog.String("schedule", s.schedule))
	return nil
}

func (s *IdempotencySweeper) Sweep(ctx context.Context) (int64, error) {
	const op = "service.IdempotencySweep"

	deleted, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		s.log.Error("idempotency sweep failed", slog.String("op", op), slog.String("error", err.Error()))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if deleted > 0 {
		s.log.Info("expired idempotency records purged", slog.String("op", op), slog.Int64("deleted", deleted))
	}
	return deleted, nil
}

// Stop waits for a running sweep to finish or for ctx to expire.
func (s *IdempotencySweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
