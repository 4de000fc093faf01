package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"

	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	GinMode     string `env:"GIN_MODE" envDefault:"release"`
	ServiceName string `env:"PROJECT_NAME" envDefault:"High-Performance Data Table API"`
	Version     string `env:"VERSION" envDefault:"1.0.0"`
	APIPrefix   string `env:"API_V1_PREFIX" envDefault:"/api/v1"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	StoreDriver  string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL  string        `env:"DATABASE_URL"`
	DBMaxConns   int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns   int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	MongoURI     string        `env:"MONGO_URI"`
	MongoDB      string        `env:"MONGO_DB" envDefault:"productCatalog"`
	QueryTimeout time.Duration `env:"STORE_QUERY_TIMEOUT" envDefault:"10s"`

	CacheDriver string `env:"CACHE_DRIVER" envDefault:"redis"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	CachePrefix string `env:"CACHE_KEY_PREFIX" envDefault:"products"`
	CacheTTL    CacheTTL

	CORSOrigins []string `env:"BACKEND_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	SeedTotal     int `env:"SEED_TOTAL" envDefault:"100000"`
	SeedBatchSize int `env:"SEED_BATCH_SIZE" envDefault:"1000"`
}

// CacheTTL agrupa los TTL por clase de consulta
type CacheTTL struct {
	List       time.Duration `env:"CACHE_TTL_LIST" envDefault:"2m"`
	Detail     time.Duration `env:"CACHE_TTL_DETAIL" envDefault:"15m"`
	Stats      time.Duration `env:"CACHE_TTL_STATS" envDefault:"5m"`
	Categories time.Duration `env:"CACHE_TTL_CATEGORIES" envDefault:"1h"`
}

// Load lee el .env si existe (solo en desarrollo local) y luego el entorno del sistema
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.StoreDriver, validation.Required, validation.In(StorePostgres, StoreMongo)),
		validation.Field(&c.DatabaseURL, validation.When(c.StoreDriver == StorePostgres, validation.Required)),
		validation.Field(&c.MongoURI, validation.When(c.StoreDriver == StoreMongo, validation.Required)),
		validation.Field(&c.DBMaxConns, validation.Min(int32(1))),
		validation.Field(&c.CacheDriver, validation.Required, validation.In(CacheRedis, CacheMemory, CacheNone)),
		validation.Field(&c.RedisURL, validation.When(c.CacheDriver == CacheRedis, validation.Required)),
		validation.Field(&c.CORSOrigins, validation.Required),
		validation.Field(&c.QueryTimeout, validation.Required),
		validation.Field(&c.SeedBatchSize, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ttl := c.CacheTTL
	if ttl.List <= 0 || ttl.Detail <= 0 || ttl.Stats <= 0 || ttl.Categories <= 0 {
		return fmt.Errorf("invalid config: cache TTLs must be positive")
	}
	return nil
}

// HasMongo es true cuando el store configurado es MongoDB
func (c *Config) HasMongo() bool {
	return c.StoreDriver == StoreMongo
}
