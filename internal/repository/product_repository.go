package repository

import (
	"context"
	"fmt"

	"catalog-api/internal/models"
)

//go:generate mockgen -source=product_repository.go -destination=mocks/mock_product_repository.go -package=mocks

// ProductRepository es la capa de lectura del catálogo. Todas las operaciones son de solo lectura.
type ProductRepository interface {
	// FindAll devuelve una página y el total que cumple los mismos filtros
	FindAll(ctx context.Context, spec models.QuerySpec) ([]models.Product, int64, error)
	// FindByID devuelve models.ErrNotFound si el id no existe
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	Stats(ctx context.Context) (*models.ProductStats, error)
	Categories(ctx context.Context) ([]string, error)
	Brands(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// ProductWriter solo lo usa el seeder
type ProductWriter interface {
	Count(ctx context.Context) (int64, error)
	InsertBatch(ctx context.Context, products []models.Product) (int64, error)
}

// unavailable envuelve un fallo del driver como models.ErrStoreUnavailable
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, models.ErrStoreUnavailable, err)
}
