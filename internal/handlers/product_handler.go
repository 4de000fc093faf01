package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	"catalog-api/internal/middleware"
	"catalog-api/internal/models"
	"catalog-api/internal/service"
)

// ProductReader es lo que el handler necesita del servicio
type ProductReader interface {
	List(ctx context.Context, spec models.QuerySpec) (service.Result, error)
	Get(ctx context.Context, id int64) (service.Result, error)
	Stats(ctx context.Context) (service.Result, error)
	Categories(ctx context.Context) (service.Result, error)
	Brands(ctx context.Context) (service.Result, error)
	Ready(ctx context.Context) service.Readiness
}

// Estructuras para respuestas
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type ProductHandler struct {
	products ProductReader
}

func NewProductHandler(products ProductReader) *ProductHandler {
	return &ProductHandler{products: products}
}

// ListProducts lista productos con paginación, filtros y orden (con caché)
// GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var params models.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	spec, err := models.NewQuerySpec(params)
	if err != nil {
		h.writeError(c, err)
		return
	}

	res, err := h.products.List(c.Request.Context(), spec)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writePayload(c, res)
}

// GetProduct obtiene un producto por ID (con caché)
// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.writeError(c, &models.QueryError{Field: "id", Message: "must be a positive integer"})
		return
	}

	res, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writePayload(c, res)
}

// GET /products/stats
func (h *ProductHandler) Stats(c *gin.Context) {
	res, err := h.products.Stats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writePayload(c, res)
}

// GET /products/categories
func (h *ProductHandler) Categories(c *gin.Context) {
	res, err := h.products.Categories(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writePayload(c, res)
}

// GET /products/brands
func (h *ProductHandler) Brands(c *gin.Context) {
	res, err := h.products.Brands(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writePayload(c, res)
}

// --- Métodos auxiliares ---

// writePayload escribe los bytes tal cual, con ETag y X-Cache
func (h *ProductHandler) writePayload(c *gin.Context, res service.Result) {
	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(res.Payload))

	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if res.Hit {
		c.Header(middleware.HeaderCache, "HIT")
	} else {
		c.Header(middleware.HeaderCache, "MISS")
	}

	if etagMatches(c.GetHeader("If-None-Match"), etag) {
		c.AbortWithStatus(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", res.Payload)
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}

// writeError traduce los errores del dominio a códigos HTTP
func (h *ProductHandler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var qe *models.QueryError
	switch {
	case errors.As(err, &qe):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: qe.Error(), Field: qe.Field})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
	case errors.Is(err, models.ErrStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "store unavailable, retry later"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
