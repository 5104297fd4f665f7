package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/przhevallsky/transferboss/internal/api/handlers"
	"github.com/przhevallsky/transferboss/internal/api/middlew"
	"github.com/przhevallsky/transferboss/internal/cache"
	"github.com/przhevallsky/transferboss/internal/config"
	"github.com/przhevallsky/transferboss/internal/db"
	"github.com/przhevallsky/transferboss/internal/lock"
	"github.com/przhevallsky/transferboss/internal/server"
	"github.com/przhevallsky/transferboss/internal/service"
	"github.com/przhevallsky/transferboss/internal/storage/mongodb"
	"github.com/przhevallsky/transferboss/internal/storage/postgres"
	"github.com/przhevallsky/transferboss/pkg/logger"
)

type App struct {
	log             *slog.Logger
	server          *server.Server
	pool            *pgxpool.Pool
	redis           *redis.Client
	catalog         *mongodb.CorridorCatalog
	logFile         *os.File
	cfg             *config.Config
	locker          lock.Locker
	transferCache   cache.TransferCache
	corridors       service.CorridorPolicy
	quotes          service.QuoteResolver
	sweeper         *service.IdempotencySweeper
	transferService service.Transfers
}

func NewApp() (*App, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации конфига: %w", err)
	}

	loggerWithFile := logger.NewLoggerWithFile(cfg.LogFile, logger.ParseLevel(cfg.LogLevel))
	log := loggerWithFile.Logger
	log.Info("конфигурация загружена",
		slog.String("port", cfg.HTTPPort),
		slog.String("corridor_source", cfg.Corridor.Source),
		slog.Bool("redis", cfg.Redis.Enabled))

	a := &App{
		log:     log,
		logFile: loggerWithFile.LogFile,
		cfg:     cfg,
	}

	ctx := context.Background()

	log.Info("выполнение миграций базы данных")
	version, err := db.RunMigrations(cfg.DB.MigrationURL(), cfg.Migrations, log)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения миграций: %w", err)
	}
	log.Info("миграции успешно применены", slog.Uint64("version", uint64(version)))

	a.pool, err = db.NewPool(ctx, cfg.DB.DSN(), cfg.Pool, log)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}
	log.Info("подключение к базе данных установлено")

	if err := a.initRedis(ctx); err != nil {
		a.pool.Close()
		return nil, err
	}

	if err := a.initCorridors(ctx); err != nil {
		a.closeClients()
		return nil, err
	}

	rates, _ := cfg.Quote.ParsedRates()
	fee, _ := cfg.Quote.ParsedFlatFee()
	a.quotes = service.NewStaticQuoteResolver(rates, fee, cfg.Quote.Validity)

	a.sweeper = service.NewIdempotencySweeper(postgres.NewIdempotencyRepository(a.pool), cfg.Idempotency.SweepSpec, log)
	if err := a.sweeper.Start(); err != nil {
		a.closeClients()
		return nil, fmt.Errorf("ошибка запуска очистки ключей идемпотентности: %w", err)
	}

	srv := server.NewServer(cfg.HTTPPort)
	log.Info("сервер инициализирован", slog.String("port", cfg.HTTPPort))
	srv.Router.Use(middleware.RequestID)
	srv.Router.Use(middlew.WithLogger(log))
	srv.Router.Use(middleware.RealIP)
	srv.Router.Use(middlew.AccessLog)
	srv.Router.Use(middleware.Recoverer)
	srv.RegisterSwagger()
	srv.RegisterHealth(a.healthChecks())
	a.server = srv

	return a, nil
}

func (a *App) initRedis(ctx context.Context) error {
	if !a.cfg.Redis.Enabled {
		a.log.Info("redis отключен в конфигурации, блокировки и кэш работают в режиме no-op")
		a.locker = lock.NewNoOpLocker()
		a.transferCache = cache.NewNoOpTransferCache()
		return nil
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.redis.Ping(pingCtx).Err(); err != nil {
		_ = a.redis.Close()
		return fmt.Errorf("не удалось подключиться к redis %s: %w", a.cfg.Redis.Addr, err)
	}
	a.log.Info("подключение к redis установлено", slog.String("addr", a.cfg.Redis.Addr))

	if a.cfg.Lock.Enabled {
		a.locker = lock.NewRedisLocker(a.redis, lock.Options{
			KeyPrefix:        a.cfg.Lock.KeyPrefix,
			SessionTTL:       a.cfg.Lock.SessionTTL,
			AcquireTimeout:   a.cfg.Lock.AcquireTimeout,
			RetryInterval:    a.cfg.Lock.RetryInterval,
			MaxRetryInterval: a.cfg.Lock.MaxRetryInterval,
		}, a.log)
	} else {
		a.log.Warn("распределённые блокировки отключены, дубликаты ловит только уникальный индекс")
		a.locker = lock.NewNoOpLocker()
	}
	a.transferCache = cache.NewRedisTransferCache(a.redis, a.cfg.Cache.TTL, a.cfg.Cache.OpTimeout, a.log)
	return nil
}

func (a *App) initCorridors(ctx context.Context) error {
	if a.cfg.Corridor.Source == config.CorridorSourceStatic {
		a.corridors = service.NewStaticCorridorPolicy(service.DefaultCorridorRules())
		a.log.Info("используется встроенный каталог коридоров")
		return nil
	}

	catalog, err := mongodb.NewCorridorCatalog(ctx, a.cfg.Corridor.MongoURI, a.cfg.Corridor.MongoDatabase, a.cfg.Corridor.MongoTimeout)
	if err != nil {
		return fmt.Errorf("ошибка подключения к каталогу коридоров: %w", err)
	}
	a.catalog = catalog

	if a.cfg.Corridor.SeedDefaults {
		seeded, err := catalog.SeedIfEmpty(ctx, service.DefaultCorridorRules())
		if err != nil {
			return fmt.Errorf("ошибка заполнения каталога коридоров: %w", err)
		}
		if seeded > 0 {
			a.log.Info("каталог коридоров заполнен значениями по умолчанию", slog.Int("count", seeded))
		}
	}

	rules, err := catalog.LoadRules(ctx)
	if err != nil {
		return fmt.Errorf("ошибка загрузки каталога коридоров: %w", err)
	}
	if len(rules) == 0 {
		return errors.New("каталог коридоров пуст, переводы невозможны")
	}
	a.corridors = service.NewStaticCorridorPolicy(rules)
	a.log.Info("каталог коридоров загружен из mongo", slog.Int("count", len(rules)))
	return nil
}

func (a *App) healthChecks() map[string]server.HealthCheck {
	checks := map[string]server.HealthCheck{
		"postgres": a.pool.Ping,
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}
	}
	return checks
}

func (a *App) BuildTransferLayer() {
	repos := service.Repositories{
		Transfers:   postgres.NewTransferRepository(a.pool),
		Outbox:      postgres.NewOutboxRepository(a.pool),
		Idempotency: postgres.NewIdempotencyRepository(a.pool),
		Recipients:  postgres.NewRecipientRepository(a.pool),
	}

	a.transferService = service.NewTransferService(
		repos,
		service.NewPgxTxManager(a.pool),
		a.locker,
		a.transferCache,
		a.corridors,
		a.quotes,
		a.cfg.Idempotency.TTL,
		a.log,
	)

	transferHandler := handlers.NewTransferHandler(a.transferService)
	validator := service.NewJWTValidator(a.cfg.JWT.Secret)

	a.server.Router.Route("/api/v1/transfers", func(r chi.Router) {
		r.Use(middlew.RequireAuth(validator))

		r.Post("/", transferHandler.CreateTransfer)
		r.Get("/", transferHandler.ListTransfers)
		r.Get("/{transferID}", transferHandler.GetTransfer)
		r.Post("/{transferID}/cancel", transferHandler.CancelTransfer)
	})

	a.log.Info("слой 'transfer' собран и маршруты зарегистрированы")
}

func (a *App) Run() error {
	a.log.Info("сервер запускается")

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("ошибка запуска сервера: %w", err)
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case runErr = <-serverErr:
	case sig := <-shutdownChan:
		a.log.Info("получен сигнал завершения", slog.String("signal", sig.String()))
	}

	a.log.Info("приложение останавливается")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a.log.Info("остановка очистки ключей идемпотентности")
	if err := a.sweeper.Stop(ctx); err != nil {
		a.log.Error("ошибка при остановке очистки", slog.String("error", err.Error()))
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error("ошибка при остановке http сервера", slog.String("error", err.Error()))
	}

	a.closeClients()

	a.log.Info("закрытие файла логов")
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			a.log.Error("ошибка при закрытии файла логов", slog.String("error", err.Error()))
		}
	}

	a.log.Info("приложение остановлено")
	return runErr
}

func (a *App) closeClients() {
	if a.redis != nil {
		a.log.Info("закрытие соединения с redis")
		if err := a.redis.Close(); err != nil {
			a.log.Error("ошибка при закрытии redis", slog.String("error", err.Error()))
		}
	}

	if a.catalog != nil {
		a.log.Info("закрытие соединения с mongo")
		if err := a.catalog.Close(); err != nil {
			a.log.Error("ошибка при закрытии mongo", slog.String("error", err.Error()))
		}
	}

	a.log.Info("закрытие соединения с базой данных")
	a.pool.Close()
}
