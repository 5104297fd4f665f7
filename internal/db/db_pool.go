package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolConfig struct {
	MaxConns          int           `envconfig:"POSTGRES_MAX_CONNS" default:"50"`
	MinConns          int           `envconfig:"POSTGRES_MIN_CONNS" default:"5"`
	HealthCheckPeriod time.Duration `envconfig:"POSTGRES_HEALTH_CHECK_PERIOD" default:"30s"`
	ConnectTimeout    time.Duration `envconfig:"POSTGRES_CONNECT_TIMEOUT" default:"5s"`
	RetryAttempts     int           `envconfig:"POSTGRES_RETRY_ATTEMPTS" default:"5"`
	RetryDelay        time.Duration `envconfig:"POSTGRES_RETRY_DELAY" default:"1s"`
	ApplicationName   string        `envconfig:"POSTGRES_APPLICATION_NAME" default:"transferboss"`
}

// NewPool подключается к Postgres с экспоненциальной паузой между попытками
func NewPool(ctx context.Context, dsn string, cfg PoolConfig, log *slog.Logger) (*pgxpool.Pool, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось распарсить DSN: %w", err)
	}

	conf.MaxConns = int32(cfg.MaxConns)
	conf.MinConns = int32(cfg.MinConns)
	conf.HealthCheckPeriod = cfg.HealthCheckPeriod
	conf.MaxConnLifetime = 30 * time.Minute
	conf.MaxConnIdleTime = 5 * time.Minute
	if cfg.ApplicationName != "" {
		conf.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}
	conf.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	attempts := max(cfg.RetryAttempts, 1)
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("подключение к базе данных прервано: %w", ctx.Err())
			case <-time.After(cfg.RetryDelay * time.Duration(1<<(i-1))):
			}
		}

		var pool *pgxpool.Pool
		pool, err = pgxpool.NewWithConfig(ctx, conf)
		if err != nil {
			log.Warn("не удалось создать пул соединений",
				slog.Int("attempt", i+1),
				slog.Int("max_attempts", attempts),
				slog.String("error", err.Error()))
			continue
		}

		if err = pool.Ping(ctx); err != nil {
			log.Warn("ping БД не удался",
				slog.Int("attempt", i+1),
				slog.String("error", err.Error()))
			pool.Close()
			continue
		}

		log.Info("подключение к базе данных успешно",
			slog.Int("max_conns", cfg.MaxConns),
			slog.String("application_name", cfg.ApplicationName))
		return pool, nil
	}

	return nil, fmt.Errorf("не удалось создать пул соединений после %d попыток: %w", attempts, err)
}
