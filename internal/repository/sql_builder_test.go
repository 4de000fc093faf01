package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-api/internal/models"
)

func spec(t *testing.T, p models.ListParams) models.QuerySpec {
	t.Helper()
	s, err := models.NewQuerySpec(p)
	require.NoError(t, err)
	return s
}

func TestBuildListQuery_Defaults(t *testing.T) {
	data, count, err := BuildListQuery(models.DefaultQuerySpec())
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM products", count.SQL)
	assert.Empty(t, count.Args)
	assert.Equal(t,
		"SELECT "+productColumns+" FROM products ORDER BY id ASC LIMIT $1 OFFSET $2",
		data.SQL)
	assert.Equal(t, []any{50, 0}, data.Args)
}

func TestBuildListQuery_AllFilters(t *testing.T) {
	s := spec(t, models.ListParams{
		Page:      "3",
		Limit:     "10",
		SortBy:    "price",
		SortOrder: "desc",
		Category:  "Electronics",
		Brand:     "Sony",
		MinPrice:  "50",
		MaxPrice:  "100",
		Search:    "pro",
	})

	data, count, err := BuildListQuery(s)
	require.NoError(t, err)

	where := " WHERE category = $1 AND brand = $2 AND price >= $3 AND price <= $4" +
		" AND (name ILIKE $5 OR description ILIKE $5 OR sku ILIKE $5)"

	assert.Equal(t, "SELECT COUNT(*) FROM products"+where, count.SQL)
	assert.Equal(t,
		"SELECT "+productColumns+" FROM products"+where+" ORDER BY price DESC, id ASC LIMIT $6 OFFSET $7",
		data.SQL)

	require.Len(t, count.Args, 5)
	assert.Equal(t, "Electronics", count.Args[0])
	assert.Equal(t, "Sony", count.Args[1])
	assert.Equal(t, "%pro%", count.Args[4])

	minPrice, ok := count.Args[2].(pgtype.Numeric)
	require.True(t, ok)
	assert.True(t, fromNumeric(minPrice).Equal(decimal.NewFromInt(50)))

	// mismos filtros más limit y offset
	assert.Equal(t, count.Args, data.Args[:5])
	assert.Equal(t, 10, data.Args[5])
	assert.Equal(t, 20, data.Args[6])
}

func TestBuildListQuery_TieBreakOnlyWhenNeeded(t *testing.T) {
	byID, _, err := BuildListQuery(spec(t, models.ListParams{SortOrder: "desc"}))
	require.NoError(t, err)
	assert.Contains(t, byID.SQL, "ORDER BY id DESC LIMIT")

	byRating, _, err := BuildListQuery(spec(t, models.ListParams{SortBy: "rating"}))
	require.NoError(t, err)
	assert.Contains(t, byRating.SQL, "ORDER BY rating ASC, id ASC LIMIT")
}

func TestBuildListQuery_RejectsUnknownSort(t *testing.T) {
	s := models.DefaultQuerySpec()
	s.SortBy = "name; DROP TABLE products"

	_, _, err := BuildListQuery(s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidQuery))
}

func TestBuildListQuery_RejectsUnboundedPage(t *testing.T) {
	s := models.DefaultQuerySpec()
	s.Limit = 1000

	_, _, err := BuildListQuery(s)
	assert.True(t, errors.Is(err, models.ErrInvalidQuery))
}

func TestBuildListQuery_RejectsOverflowingPage(t *testing.T) {
	s := models.DefaultQuerySpec()
	s.Limit = models.MaxLimit
	s.Page = models.MaxPage + 1

	_, _, err := BuildListQuery(s)
	var qe *models.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "page", qe.Field)

	s.Page = models.MaxPage
	data, _, err := BuildListQuery(s)
	require.NoError(t, err)
	offset, ok := data.Args[len(data.Args)-1].(int)
	require.True(t, ok)
	assert.Positive(t, offset)
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\% off%`, likePattern("50% off"))
	assert.Equal(t, `%snake\_case%`, likePattern("snake_case"))
	assert.Equal(t, `%back\\slash%`, likePattern(`back\slash`))
}

func TestNumericRoundTrip(t *testing.T) {
	for _, v := range []string{"0", "9.99", "999.99", "100.50", "4.5"} {
		d := decimal.RequireFromString(v)
		assert.True(t, fromNumeric(toNumeric(d)).Equal(d), v)
	}
	assert.True(t, fromNumeric(pgtype.Numeric{}).IsZero())
}
