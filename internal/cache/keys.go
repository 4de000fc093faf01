package cache

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"catalog-api/internal/models"
)

// Key es una clave de caché con su clase; String() es lo que llega al backend
type Key struct {
	Class Class
	value string
}

func (k Key) String() string {
	return k.value
}

// NewKey arma "<prefix>:<class>:<md5 hex>" sobre la forma canónica
func NewKey(prefix string, class Class, canonical string) Key {
	sum := md5.Sum([]byte(canonical))
	return Key{
		Class: class,
		value: prefix + ":" + string(class) + ":" + hex.EncodeToString(sum[:]),
	}
}

// Normalize devuelve la forma canónica de un QuerySpec: pares ordenados por nombre,
// sin los valores por defecto y con precios en formato decimal fijo.
// Dos specs equivalentes producen el mismo string.
func Normalize(spec models.QuerySpec) string {
	v := url.Values{}

	if spec.Page != models.DefaultPage {
		v.Set("page", strconv.Itoa(spec.Page))
	}
	if spec.Limit != models.DefaultLimit {
		v.Set("limit", strconv.Itoa(spec.Limit))
	}
	if spec.SortBy != models.DefaultSortField {
		v.Set("sort_by", spec.SortBy)
	}
	if spec.SortOrder != models.SortAsc {
		v.Set("sort_order", spec.SortOrder)
	}
	if spec.Category != "" {
		v.Set("category", spec.Category)
	}
	if spec.Brand != "" {
		v.Set("brand", spec.Brand)
	}
	if spec.MinPrice != nil {
		v.Set("min_price", canonicalPrice(*spec.MinPrice))
	}
	if spec.MaxPrice != nil {
		v.Set("max_price", canonicalPrice(*spec.MaxPrice))
	}
	// la búsqueda es case-insensitive
	if spec.Search != "" {
		v.Set("search", strings.ToLower(spec.Search))
	}

	// Encode ordena por clave
	return v.Encode()
}

// canonicalPrice usa dos decimales fijos salvo que el valor tenga más precisión
func canonicalPrice(d decimal.Decimal) string {
	if d.Equal(d.Round(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}

func detailCanonical(id int64) string {
	return "id=" + strconv.FormatInt(id, 10)
}
