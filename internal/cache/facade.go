package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"catalog-api/internal/models"
)

// FillFunc calcula el payload serializado cuando hay un miss
type FillFunc func(ctx context.Context) ([]byte, error)

// Facade es el caché read-through de respuestas. Los fallos del backend nunca
// llegan al caller: Get se comporta como miss y Put solo loguea.
type Facade struct {
	backend Backend
	prefix  string
	ttl     TTLs
	log     zerolog.Logger
}

func NewFacade(backend Backend, prefix string, ttl TTLs, log zerolog.Logger) *Facade {
	if backend == nil {
		backend = NoopBackend{}
	}
	if prefix == "" {
		prefix = "products"
	}
	return &Facade{
		backend: backend,
		prefix:  prefix,
		ttl:     ttl,
		log:     log.With().Str("component", "cache").Logger(),
	}
}

func (f *Facade) ListKey(spec models.QuerySpec) Key {
	return NewKey(f.prefix, ClassList, Normalize(spec))
}

func (f *Facade) DetailKey(id int64) Key {
	return NewKey(f.prefix, ClassDetail, detailCanonical(id))
}

func (f *Facade) StatsKey() Key {
	return NewKey(f.prefix, ClassStats, "")
}

func (f *Facade) CategoriesKey() Key {
	return NewKey(f.prefix, ClassCategories, "")
}

func (f *Facade) BrandsKey() Key {
	return NewKey(f.prefix, ClassBrands, "")
}

// TTL devuelve el TTL aplicado a la clase de la clave
func (f *Facade) TTL(key Key) time.Duration {
	return f.ttl.For(key.Class)
}

// Get devuelve el payload y true en un hit
func (f *Facade) Get(ctx context.Context, key Key) ([]byte, bool) {
	val, err := f.backend.Get(ctx, key.String())
	if err == nil {
		return val, true
	}
	if !errors.Is(err, ErrCacheMiss) {
		f.log.Warn().Err(err).Str("key", key.String()).Msg("cache get failed, treating as miss")
	}
	return nil, false
}

// Put sobrescribe la entrada con el TTL de su clase
func (f *Facade) Put(ctx context.Context, key Key, payload []byte) {
	if err := f.backend.Set(ctx, key.String(), payload, f.TTL(key)); err != nil {
		f.log.Warn().Err(err).Str("key", key.String()).Msg("cache put failed")
	}
}

// Fetch devuelve el payload cacheado o lo calcula con fill y lo guarda.
// No hay single-flight: misses concurrentes de la misma clave llaman a fill cada uno.
func (f *Facade) Fetch(ctx context.Context, key Key, fill FillFunc) (payload []byte, hit bool, err error) {
	if payload, ok := f.Get(ctx, key); ok {
		return payload, true, nil
	}

	payload, err = fill(ctx)
	if err != nil {
		return nil, false, err
	}

	f.Put(ctx, key, payload)
	return payload, false, nil
}

// Ping comprueba el backend; lo usa el readiness probe
func (f *Facade) Ping(ctx context.Context) error {
	return f.backend.Ping(ctx)
}

func (f *Facade) Close() error {
	return f.backend.Close()
}
