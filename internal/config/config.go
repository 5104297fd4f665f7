package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/przhevallsky/transferboss/internal/db"
)

const (
	CorridorSourceStatic = "static"
	CorridorSourceMongo  = "mongo"
)

type Config struct {
	HTTPPort    string `envconfig:"APP_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile     string `envconfig:"LOG_FILE" default:"transferboss.log"`
	Migrations  string `envconfig:"MIGRATIONS_PATH" default:"migrations"`
	DB          DBConfig
	Pool        db.PoolConfig
	Redis       RedisConfig
	Lock        LockConfig
	Cache       CacheConfig
	Idempotency IdempotencyConfig
	Corridor    CorridorConfig
	JWT         JWTConfig
	Quote       QuoteConfig
}

type DBConfig struct {
	Host     string `envconfig:"POSTGRES_HOST"     required:"true"`
	Port     string `envconfig:"POSTGRES_PORT"     required:"true"`
	User     string `envconfig:"POSTGRES_USER"     required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	DBName   string `envconfig:"POSTGRES_DB"       required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE"  default:"disable"`
}

type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type LockConfig struct {
	Enabled          bool          `envconfig:"LOCK_ENABLED" default:"true"`
	KeyPrefix        string        `envconfig:"LOCK_KEY_PREFIX" default:"locks/transfer"`
	SessionTTL       time.Duration `envconfig:"LOCK_SESSION_TTL" default:"15s"`
	AcquireTimeout   time.Duration `envconfig:"LOCK_ACQUIRE_TIMEOUT" default:"5s"`
	RetryInterval    time.Duration `envconfig:"LOCK_RETRY_INTERVAL" default:"50ms"`
	MaxRetryInterval time.Duration `envconfig:"LOCK_MAX_RETRY_INTERVAL" default:"500ms"`
}

type CacheConfig struct {
	TTL       time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	OpTimeout time.Duration `envconfig:"CACHE_OP_TIMEOUT" default:"200ms"`
}

type IdempotencyConfig struct {
	TTL       time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	SweepSpec string        `envconfig:"IDEMPOTENCY_SWEEP_SPEC" default:"@every 1h"`
}

type CorridorConfig struct {
	Source        string        `envconfig:"CORRIDOR_SOURCE" default:"static"`
	MongoURI      string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string        `envconfig:"MONGO_DATABASE" default:"pricing_db"`
	MongoTimeout  time.Duration `envconfig:"MONGO_TIMEOUT" default:"5s"`
	SeedDefaults  bool          `envconfig:"MONGO_SEED_DEFAULTS" default:"true"`
}

type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

// QuoteConfig настраивает статический резолвер котировок, QUOTE_RATES=USD_PHP:56.10,USD_MXN:17.05
type QuoteConfig struct {
	Validity time.Duration     `envconfig:"QUOTE_VALIDITY" default:"15m"`
	Rates    map[string]string `envconfig:"QUOTE_RATES" default:"USD_PHP:56.10,USD_MXN:17.05,USD_INR:83.20,GBP_INR:105.40"`
	FlatFee  string            `envconfig:"QUOTE_FLAT_FEE" default:"2.99"`
}

func NewConfig() (*Config, error) {
	envFile := "config.env"

	if err := godotenv.Load(envFile); err != nil {
		log.Printf("warning: не удалось загрузить файл %s, используются только системные переменные окружения: %v", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Corridor.Source {
	case CorridorSourceStatic, CorridorSourceMongo:
	default:
		return fmt.Errorf("CORRIDOR_SOURCE должен быть %q или %q, получено %q",
			CorridorSourceStatic, CorridorSourceMongo, c.Corridor.Source)
	}
	if c.Lock.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("LOCK_ENABLED требует REDIS_ENABLED=true")
	}
	if c.Lock.RetryInterval <= 0 || c.Lock.MaxRetryInterval < c.Lock.RetryInterval {
		return fmt.Errorf("некорректные интервалы повтора блокировки: %s..%s",
			c.Lock.RetryInterval, c.Lock.MaxRetryInterval)
	}
	if _, err := c.Quote.ParsedRates(); err != nil {
		return err
	}
	if _, err := c.Quote.ParsedFlatFee(); err != nil {
		return err
	}
	return nil
}

func (q QuoteConfig) ParsedRates() (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal, len(q.Rates))
	for pair, raw := range q.Rates {
		rate, err := decimal.NewFromString(raw)
		if err != nil || !rate.IsPositive() {
			return nil, fmt.Errorf("QUOTE_RATES: некорректный курс %s=%q", pair, raw)
		}
		rates[pair] = rate
	}
	return rates, nil
}

func (q QuoteConfig) ParsedFlatFee() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(q.FlatFee)
	if err != nil || fee.IsNegative() {
		return decimal.Zero, fmt.Errorf("QUOTE_FLAT_FEE: некорректная комиссия %q", q.FlatFee)
	}
	return fee, nil
}

func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func (d *DBConfig) MigrationURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}
