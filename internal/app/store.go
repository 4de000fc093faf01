// Package app arma las dependencias compartidas a partir de la configuración.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"catalog-api/internal/cache"
	"catalog-api/internal/config"
	"catalog-api/internal/database"
	"catalog-api/internal/repository"
)

// Store agrupa lectura y escritura del driver elegido y cómo cerrarlo
type Store struct {
	Driver string
	Reader repository.ProductRepository
	Writer repository.ProductWriter
	close  func()
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStore conecta con Postgres o Mongo según STORE_DRIVER y asegura el esquema
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	if cfg.HasMongo() {
		return openMongo(ctx, cfg, log)
	}
	if cfg.StoreDriver != config.StorePostgres {
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	pool, err := database.ConnectPostgres(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Int32("max_conns", cfg.DBMaxConns).Msg("✅ connected to postgres")

	repo := repository.NewPostgresProductRepository(pool, cfg.QueryTimeout)
	return &Store{
		Driver: config.StorePostgres,
		Reader: repo,
		Writer: repo,
		close:  pool.Close,
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	client, err := database.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	collection := client.Database(cfg.MongoDB).Collection("products")
	if err := database.EnsureMongoIndexes(ctx, collection); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info().Str("db", cfg.MongoDB).Msg("✅ connected to mongo")

	repo := repository.NewMongoProductRepository(collection, cfg.QueryTimeout)
	return &Store{
		Driver: config.StoreMongo,
		Reader: repo,
		Writer: repo,
		close:  func() { _ = client.Disconnect(context.Background()) },
	}, nil
}

// OpenCache devuelve el backend de CACHE_DRIVER. Un Redis inalcanzable al arrancar
// solo se loguea: la fachada trata los fallos como miss.
func OpenCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.Backend, error) {
	switch cfg.CacheDriver {
	case config.CacheRedis:
		backend, err := cache.NewRedisBackend(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		if err := backend.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("⚠️ redis not reachable, serving without cache until it recovers")
		} else {
			log.Info().Msg("✅ connected to redis")
		}
		return backend, nil
	case config.CacheMemory:
		return cache.NewMemoryBackend(0), nil
	case config.CacheNone:
		return cache.NoopBackend{}, nil
	}
	return nil, fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
}

// TTLs traduce la configuración a los TTL de la fachada
func TTLs(cfg *config.Config) cache.TTLs {
	return cache.TTLs{
		List:       cfg.CacheTTL.List,
		Detail:     cfg.CacheTTL.Detail,
		Stats:      cfg.CacheTTL.Stats,
		Categories: cfg.CacheTTL.Categories,
	}
}
