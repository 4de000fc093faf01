package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto en el catálogo
type Product struct {
	ID            int64           `json:"id" db:"id"`
	SKU           string          `json:"sku" db:"sku"`
	Name          string          `json:"name" db:"name"`
	Description   *string         `json:"description" db:"description"`
	Category      string          `json:"category" db:"category"`
	Brand         string          `json:"brand" db:"brand"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int64           `json:"stock_quantity" db:"stock_quantity"`
	Rating        decimal.Decimal `json:"rating" db:"rating"`
	ReviewsCount  int64           `json:"reviews_count" db:"reviews_count"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductList es la respuesta paginada del listado
type ProductList struct {
	Data  []Product `json:"data"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Pages int64     `json:"pages"`
}

// NewProductList arma el sobre de paginación. Pages es 0 cuando no hay resultados.
func NewProductList(data []Product, total int64, spec QuerySpec) ProductList {
	if data == nil {
		data = []Product{}
	}
	limit := int64(spec.Limit)
	return ProductList{
		Data:  data,
		Total: total,
		Page:  spec.Page,
		Limit: spec.Limit,
		Pages: (total + limit - 1) / limit,
	}
}

// ProductStats agrega métricas sobre todo el catálogo
type ProductStats struct {
	TotalProducts   int64           `json:"total_products"`
	TotalCategories int64           `json:"total_categories"`
	TotalBrands     int64           `json:"total_brands"`
	PriceMin        decimal.Decimal `json:"price_min"`
	PriceMax        decimal.Decimal `json:"price_max"`
	AvgRating       decimal.Decimal `json:"avg_rating"`
	TotalStock      int64           `json:"total_stock"`
}

type CategoryList struct {
	Categories []string `json:"categories"`
	Total      int      `json:"total"`
}

type BrandList struct {
	Brands []string `json:"brands"`
	Total  int      `json:"total"`
}
