package repository

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"catalog-api/internal/models"
)

// productColumns en el orden de las etiquetas db de productRow
const productColumns = "id, sku, name, description, category, brand, price, stock_quantity, rating, reviews_count, created_at, updated_at"

// sortColumns mapea la allow-list a columnas; el texto del usuario nunca llega al SQL
var sortColumns = map[string]string{
	"id":             "id",
	"sku":            "sku",
	"name":           "name",
	"category":       "category",
	"brand":          "brand",
	"price":          "price",
	"stock_quantity": "stock_quantity",
	"rating":         "rating",
	"reviews_count":  "reviews_count",
	"created_at":     "created_at",
	"updated_at":     "updated_at",
}

// SQLQuery es una sentencia parametrizada lista para pgx
type SQLQuery struct {
	SQL  string
	Args []any
}

// BuildListQuery compila el spec en la consulta de la página y la de conteo.
// Ambas comparten el WHERE; el conteo ignora orden y paginación.
// La paginación es por OFFSET: el coste crece linealmente con el offset.
func BuildListQuery(spec models.QuerySpec) (data SQLQuery, count SQLQuery, err error) {
	column, ok := sortColumns[spec.SortBy]
	if !ok {
		return SQLQuery{}, SQLQuery{}, &models.QueryError{Field: "sort_by", Message: "unknown sort field"}
	}
	if spec.Limit < 1 || spec.Limit > models.MaxLimit {
		return SQLQuery{}, SQLQuery{}, &models.QueryError{Field: "limit", Message: "must be between 1 and 100"}
	}
	if spec.Page < 1 {
		return SQLQuery{}, SQLQuery{}, &models.QueryError{Field: "page", Message: "must be greater than or equal to 1"}
	}
	if spec.Page > models.MaxPage {
		return SQLQuery{}, SQLQuery{}, &models.QueryError{Field: "page", Message: "is too large"}
	}

	where, args := buildWhere(spec)

	count = SQLQuery{
		SQL:  "SELECT COUNT(*) FROM products" + where,
		Args: args,
	}

	direction := "ASC"
	if spec.Descending() {
		direction = "DESC"
	}
	order := " ORDER BY " + column + " " + direction
	// desempate estable por id
	if column != "id" {
		order += ", id ASC"
	}

	dataArgs := make([]any, 0, len(args)+2)
	dataArgs = append(dataArgs, args...)
	dataArgs = append(dataArgs, spec.Limit, spec.Offset())

	data = SQLQuery{
		SQL: fmt.Sprintf("SELECT %s FROM products%s%s LIMIT $%d OFFSET $%d",
			productColumns, where, order, len(args)+1, len(args)+2),
		Args: dataArgs,
	}
	return data, count, nil
}

// buildWhere combina los filtros con AND; el rango de precio es inclusivo
func buildWhere(spec models.QuerySpec) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if spec.Category != "" {
		add("category = $%d", spec.Category)
	}
	if spec.Brand != "" {
		add("brand = $%d", spec.Brand)
	}
	if spec.MinPrice != nil {
		add("price >= $%d", toNumeric(*spec.MinPrice))
	}
	if spec.MaxPrice != nil {
		add("price <= $%d", toNumeric(*spec.MaxPrice))
	}
	if spec.Search != "" {
		args = append(args, likePattern(spec.Search))
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR sku ILIKE $%d)", n, n, n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern busca el término como substring literal
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func toNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func fromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
