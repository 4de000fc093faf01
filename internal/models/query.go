package models

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

const (
	DefaultPage      = 1
	DefaultLimit     = 50
	MaxLimit         = 100
	DefaultSortField = "id"

	// MaxPage acota page para que (page-1)*limit no desborde
	MaxPage = math.MaxInt64 / MaxLimit

	SortAsc  = "asc"
	SortDesc = "desc"
)

// SortableFields es la allow-list de columnas ordenables
var SortableFields = []string{
	"id",
	"sku",
	"name",
	"category",
	"brand",
	"price",
	"stock_quantity",
	"rating",
	"reviews_count",
	"created_at",
	"updated_at",
}

// ListParams son los query params crudos de GET /products
type ListParams struct {
	Page      string `form:"page"`
	Limit     string `form:"limit"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Category  string `form:"category"`
	Brand     string `form:"brand"`
	MinPrice  string `form:"min_price"`
	MaxPrice  string `form:"max_price"`
	Search    string `form:"search"`
}

// QuerySpec es la especificación inmutable y validada de un listado
type QuerySpec struct {
	Page      int              `json:"page"`
	Limit     int              `json:"limit"`
	SortBy    string           `json:"sort_by"`
	SortOrder string           `json:"sort_order"`
	Category  string           `json:"category,omitempty"`
	Brand     string           `json:"brand,omitempty"`
	MinPrice  *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice  *decimal.Decimal `json:"max_price,omitempty"`
	Search    string           `json:"search,omitempty"`
}

// DefaultQuerySpec devuelve la primera página con el orden por defecto
func DefaultQuerySpec() QuerySpec {
	return QuerySpec{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		SortBy:    DefaultSortField,
		SortOrder: SortAsc,
	}
}

// NewQuerySpec parsea y valida los parámetros. Los strings vacíos cuentan como ausentes.
func NewQuerySpec(p ListParams) (QuerySpec, error) {
	spec := DefaultQuerySpec()

	var err error
	if v := strings.TrimSpace(p.Page); v != "" {
		if spec.Page, err = strconv.Atoi(v); err != nil {
			return QuerySpec{}, invalid("page", "must be an integer")
		}
	}
	if v := strings.TrimSpace(p.Limit); v != "" {
		if spec.Limit, err = strconv.Atoi(v); err != nil {
			return QuerySpec{}, invalid("limit", "must be an integer")
		}
	}
	if v := strings.TrimSpace(p.SortBy); v != "" {
		spec.SortBy = v
	}
	if v := strings.TrimSpace(p.SortOrder); v != "" {
		spec.SortOrder = strings.ToLower(v)
	}

	if spec.Category, err = parseText("category", p.Category); err != nil {
		return QuerySpec{}, err
	}
	if spec.Brand, err = parseText("brand", p.Brand); err != nil {
		return QuerySpec{}, err
	}
	if spec.Search, err = parseText("search", p.Search); err != nil {
		return QuerySpec{}, err
	}

	if spec.MinPrice, err = parsePrice("min_price", p.MinPrice); err != nil {
		return QuerySpec{}, err
	}
	if spec.MaxPrice, err = parsePrice("max_price", p.MaxPrice); err != nil {
		return QuerySpec{}, err
	}

	if err := spec.Validate(); err != nil {
		return QuerySpec{}, err
	}
	return spec, nil
}

// Validate aplica las reglas de paginación, orden y rango de precios
func (q QuerySpec) Validate() error {
	err := validation.ValidateStruct(&q,
		validation.Field(&q.Page,
			validation.Required.Error("must be greater than or equal to 1"),
			validation.Min(1).Error("must be greater than or equal to 1"),
			validation.Max(MaxPage).Error("is too large"),
		),
		validation.Field(&q.Limit,
			validation.Required.Error("must be between 1 and 100"),
			validation.Min(1).Error("must be between 1 and 100"),
			validation.Max(MaxLimit).Error("must be between 1 and 100"),
		),
		validation.Field(&q.SortBy,
			validation.Required,
			validation.In(sortableValues()...).Error("unknown sort field"),
		),
		validation.Field(&q.SortOrder,
			validation.Required,
			validation.In(SortAsc, SortDesc).Error("must be asc or desc"),
		),
		validation.Field(&q.MinPrice, validation.By(nonNegativePrice)),
		validation.Field(&q.MaxPrice, validation.By(nonNegativePrice)),
	)
	if err != nil {
		return toQueryError(err)
	}

	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return invalid("min_price", "must be less than or equal to max_price")
	}
	return nil
}

// Offset es el desplazamiento simple (page-1)*limit
func (q QuerySpec) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Descending indica si el orden pedido es descendente
func (q QuerySpec) Descending() bool {
	return q.SortOrder == SortDesc
}

// parseText rechaza texto que el store no puede comparar: UTF-8 inválido o NUL
func parseText(field, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if !utf8.ValidString(v) {
		return "", invalid(field, "must be valid UTF-8")
	}
	if strings.ContainsRune(v, 0) {
		return "", invalid(field, "must not contain NUL characters")
	}
	return v, nil
}

func parsePrice(field, raw string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, invalid(field, "must be a decimal number")
	}
	return &d, nil
}

func nonNegativePrice(value interface{}) error {
	d, _ := value.(*decimal.Decimal)
	if d != nil && d.IsNegative() {
		return errors.New("must be greater than or equal to 0")
	}
	return nil
}

func sortableValues() []interface{} {
	out := make([]interface{}, len(SortableFields))
	for i, f := range SortableFields {
		out[i] = f
	}
	return out
}

// toQueryError reduce validation.Errors al primer campo en orden alfabético
func toQueryError(err error) error {
	var errs validation.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &QueryError{Field: "query", Message: err.Error()}
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return &QueryError{Field: fields[0], Message: errs[fields[0]].Error()}
}
