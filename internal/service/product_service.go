package service

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"catalog-api/internal/cache"
	"catalog-api/internal/models"
	"catalog-api/internal/repository"
)

// Result es un payload JSON ya serializado y si salió del caché
type Result struct {
	Payload []byte
	Hit     bool
}

// ProductService une el repositorio con la fachada de caché.
// Los payloads se guardan serializados, así un hit devuelve los mismos bytes que el miss.
type ProductService struct {
	repo  repository.ProductRepository
	cache *cache.Facade
	log   zerolog.Logger
}

func NewProductService(repo repository.ProductRepository, facade *cache.Facade, log zerolog.Logger) *ProductService {
	return &ProductService{
		repo:  repo,
		cache: facade,
		log:   log.With().Str("component", "product_service").Logger(),
	}
}

// List devuelve una página de productos. El spec se valida antes de tocar caché o store.
func (s *ProductService) List(ctx context.Context, spec models.QuerySpec) (Result, error) {
	if err := spec.Validate(); err != nil {
		return Result{}, err
	}

	key := s.cache.ListKey(spec)
	return s.fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		products, total, err := s.repo.FindAll(ctx, spec)
		if err != nil {
			s.logStoreError(err, "list", cache.Normalize(spec))
			return nil, err
		}
		return json.Marshal(models.NewProductList(products, total, spec))
	})
}

// Get devuelve un producto por id; los 404 no se cachean
func (s *ProductService) Get(ctx context.Context, id int64) (Result, error) {
	if id < 1 {
		return Result{}, &models.QueryError{Field: "id", Message: "must be a positive integer"}
	}

	key := s.cache.DetailKey(id)
	return s.fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		product, err := s.repo.FindByID(ctx, id)
		if err != nil {
			s.logStoreError(err, "detail", key.String())
			return nil, err
		}
		return json.Marshal(product)
	})
}

func (s *ProductService) Stats(ctx context.Context) (Result, error) {
	return s.fetch(ctx, s.cache.StatsKey(), func(ctx context.Context) ([]byte, error) {
		stats, err := s.repo.Stats(ctx)
		if err != nil {
			s.logStoreError(err, "stats", "")
			return nil, err
		}
		return json.Marshal(stats)
	})
}

func (s *ProductService) Categories(ctx context.Context) (Result, error) {
	return s.fetch(ctx, s.cache.CategoriesKey(), func(ctx context.Context) ([]byte, error) {
		values, err := s.repo.Categories(ctx)
		if err != nil {
			s.logStoreError(err, "categories", "")
			return nil, err
		}
		return json.Marshal(models.CategoryList{Categories: values, Total: len(values)})
	})
}

func (s *ProductService) Brands(ctx context.Context) (Result, error) {
	return s.fetch(ctx, s.cache.BrandsKey(), func(ctx context.Context) ([]byte, error) {
		values, err := s.repo.Brands(ctx)
		if err != nil {
			s.logStoreError(err, "brands", "")
			return nil, err
		}
		return json.Marshal(models.BrandList{Brands: values, Total: len(values)})
	})
}

// Readiness es el estado de las dependencias
type Readiness struct {
	Store error
	Cache error
}

// Ready hace ping al store y al caché
func (s *ProductService) Ready(ctx context.Context) Readiness {
	return Readiness{
		Store: s.repo.Ping(ctx),
		Cache: s.cache.Ping(ctx),
	}
}

func (s *ProductService) fetch(ctx context.Context, key cache.Key, fill cache.FillFunc) (Result, error) {
	payload, hit, err := s.cache.Fetch(ctx, key, fill)
	if err != nil {
		return Result{}, err
	}
	return Result{Payload: payload, Hit: hit}, nil
}

func (s *ProductService) logStoreError(err error, op, query string) {
	if !errors.Is(err, models.ErrStoreUnavailable) {
		return
	}
	s.log.Error().Err(err).Str("op", op).Str("query", query).Msg("❌ store query failed")
}
