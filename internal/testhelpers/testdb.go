//go:build integration

package testhelpers

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/przhevallsky/transferboss/internal/db"
)

type TestDB struct {
	Pool      *pgxpool.Pool
	DSN       string
	container *tcpostgres.PostgresContainer
}

func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("transfers_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	return &TestDB{Pool: pool, DSN: dsn, container: container}
}

func (tdb *TestDB) RunMigrations(t *testing.T) {
	t.Helper()

	_, err := db.RunMigrations(tdb.DSN, migrationsDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
}

func (tdb *TestDB) CleanupDB(t *testing.T) {
	t.Helper()

	_, err := tdb.Pool.Exec(context.Background(),
		`TRUNCATE idempotency_keys, outbox_events, transfers, recipients CASCADE`)
	require.NoError(t, err)
}

func (tdb *TestDB) TeardownTestDB() {
	tdb.Pool.Close()
	_ = tdb.container.Terminate(context.Background())
}

// SeedRecipient inserts an active recipient owned by senderID.
func (tdb *TestDB) SeedRecipient(t *testing.T, senderID uuid.UUID, country string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := tdb.Pool.Exec(context.Background(),
		`INSERT INTO recipients (id, sender_id, first_name, last_name, country, delivery_details)
		 VALUES ($1, $2, 'Maria', 'Santos', $3, '{"bank_code":"BDO"}')`,
		id, senderID, country)
	require.NoError(t, err)
	return id
}

func (tdb *TestDB) Count(t *testing.T, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, tdb.Pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}
