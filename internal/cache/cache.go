package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss indica que la clave no existe o ya expiró
var ErrCacheMiss = errors.New("cache miss")

// Backend es el almacén clave/valor debajo de la fachada.
// La expiración por TTL la aplica el propio backend.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// Class identifica el tipo de consulta y determina el TTL
type Class string

const (
	ClassList       Class = "list"
	ClassDetail     Class = "detail"
	ClassStats      Class = "stats"
	ClassCategories Class = "categories"
	ClassBrands     Class = "brands"
)

// TTLs por clase. Brands comparte el TTL de Categories.
type TTLs struct {
	List       time.Duration
	Detail     time.Duration
	Stats      time.Duration
	Categories time.Duration
}

func DefaultTTLs() TTLs {
	return TTLs{
		List:       2 * time.Minute,
		Detail:     15 * time.Minute,
		Stats:      5 * time.Minute,
		Categories: time.Hour,
	}
}

// For devuelve el TTL de una clase
func (t TTLs) For(class Class) time.Duration {
	switch class {
	case ClassList:
		return t.List
	case ClassDetail:
		return t.Detail
	case ClassStats:
		return t.Stats
	case ClassCategories, ClassBrands:
		return t.Categories
	}
	return t.List
}

// NoopBackend siempre falla como miss; se usa con CACHE_DRIVER=none
type NoopBackend struct{}

func (NoopBackend) Get(context.Context, string) ([]byte, error) { return nil, ErrCacheMiss }

func (NoopBackend) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopBackend) Ping(context.Context) error { return nil }

func (NoopBackend) Close() error { return nil }
