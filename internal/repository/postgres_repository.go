package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"catalog-api/internal/models"
)

const statsQuery = `
SELECT COUNT(id),
       COUNT(DISTINCT category),
       COUNT(DISTINCT brand),
       COALESCE(MIN(price), 0),
       COALESCE(MAX(price), 0),
       COALESCE(ROUND(AVG(rating), 2), 0),
       COALESCE(SUM(stock_quantity), 0)
FROM products`

// productRow es la fila tal como la devuelve pgx
type productRow struct {
	ID            int64          `db:"id"`
	SKU           string         `db:"sku"`
	Name          string         `db:"name"`
	Description   pgtype.Text    `db:"description"`
	Category      string         `db:"category"`
	Brand         string         `db:"brand"`
	Price         pgtype.Numeric `db:"price"`
	StockQuantity int64          `db:"stock_quantity"`
	Rating        pgtype.Numeric `db:"rating"`
	ReviewsCount  int64          `db:"reviews_count"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r productRow) toModel() models.Product {
	p := models.Product{
		ID:            r.ID,
		SKU:           r.SKU,
		Name:          r.Name,
		Category:      r.Category,
		Brand:         r.Brand,
		Price:         fromNumeric(r.Price),
		StockQuantity: r.StockQuantity,
		Rating:        fromNumeric(r.Rating),
		ReviewsCount:  r.ReviewsCount,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.Description.Valid {
		desc := r.Description.String
		p.Description = &desc
	}
	return p
}

type PostgresProductRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresProductRepository(pool *pgxpool.Pool, timeout time.Duration) *PostgresProductRepository {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PostgresProductRepository{pool: pool, timeout: timeout}
}

// FindAll lista productos con paginación, filtros y orden.
// Conteo y página van en un mismo batch dentro de una transacción de solo lectura
// REPEATABLE READ, así el total y los datos salen del mismo snapshot.
func (r *PostgresProductRepository) FindAll(ctx context.Context, spec models.QuerySpec) ([]models.Product, int64, error) {
	data, count, err := BuildListQuery(spec)
	if err != nil {
		return nil, 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, 0, unavailable("begin tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	batch.Queue(count.SQL, count.Args...)
	batch.Queue(data.SQL, data.Args...)

	br := tx.SendBatch(ctx, batch)

	var total int64
	if err := br.QueryRow().Scan(&total); err != nil {
		_ = br.Close()
		return nil, 0, unavailable("count products", err)
	}

	rows, err := br.Query()
	if err != nil {
		_ = br.Close()
		return nil, 0, unavailable("list products", err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		_ = br.Close()
		return nil, 0, unavailable("scan products", err)
	}
	if err := br.Close(); err != nil {
		return nil, 0, unavailable("close batch", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, 0, unavailable("commit", err)
	}

	products := make([]models.Product, len(list))
	for i, row := range list {
		products[i] = row.toModel()
	}
	return products, total, nil
}

// FindByID obtiene un producto por ID
func (r *PostgresProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if err != nil {
		return nil, unavailable("find product", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, unavailable("find product", err)
	}

	p := row.toModel()
	return &p, nil
}

func (r *PostgresProductRepository) Stats(ctx context.Context) (*models.ProductStats, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		stats                         models.ProductStats
		priceMin, priceMax, avgRating pgtype.Numeric
	)
	err := r.pool.QueryRow(ctx, statsQuery).Scan(
		&stats.TotalProducts,
		&stats.TotalCategories,
		&stats.TotalBrands,
		&priceMin,
		&priceMax,
		&avgRating,
		&stats.TotalStock,
	)
	if err != nil {
		return nil, unavailable("product stats", err)
	}

	stats.PriceMin = fromNumeric(priceMin)
	stats.PriceMax = fromNumeric(priceMax)
	stats.AvgRating = fromNumeric(avgRating)
	return &stats, nil
}

func (r *PostgresProductRepository) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "SELECT DISTINCT category FROM products ORDER BY category")
}

func (r *PostgresProductRepository) Brands(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "SELECT DISTINCT brand FROM products ORDER BY brand")
}

func (r *PostgresProductRepository) distinct(ctx context.Context, query string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, unavailable("distinct", err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, unavailable("distinct", err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func (r *PostgresProductRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.pool.Ping(ctx)
}

// Count devuelve el número de filas; lo usa el seeder
func (r *PostgresProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, unavailable("count", err)
	}
	return n, nil
}

// InsertBatch inserta con COPY; el id lo asigna la secuencia
func (r *PostgresProductRepository) InsertBatch(ctx context.Context, products []models.Product) (int64, error) {
	columns := []string{
		"sku", "name", "description", "category", "brand", "price",
		"stock_quantity", "rating", "reviews_count", "created_at", "updated_at",
	}

	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{"products"}, columns,
		pgx.CopyFromSlice(len(products), func(i int) ([]any, error) {
			p := products[i]
			return []any{
				p.SKU, p.Name, p.Description, p.Category, p.Brand, toNumeric(p.Price),
				p.StockQuantity, toNumeric(p.Rating), p.ReviewsCount, p.CreatedAt, p.UpdatedAt,
			}, nil
		}),
	)
	if err != nil {
		return n, unavailable("copy products", err)
	}
	return n, nil
}
