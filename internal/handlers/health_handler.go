package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler sirve /health, /health/ready y el banner de /
type HealthHandler struct {
	products  ProductReader
	name      string
	version   string
	apiPrefix string
}

func NewHealthHandler(products ProductReader, name, version, apiPrefix string) *HealthHandler {
	return &HealthHandler{
		products:  products,
		name:      name,
		version:   version,
		apiPrefix: apiPrefix,
	}
}

// Health es el liveness: no toca dependencias
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.name,
		"version": h.version,
	})
}

// Ready hace ping al store y al caché. Sin caché el servicio sigue funcionando.
func (h *HealthHandler) Ready(c *gin.Context) {
	r := h.products.Ready(c.Request.Context())

	body := gin.H{"status": "ready", "store": "ok", "cache": "ok"}
	status := http.StatusOK

	if r.Cache != nil {
		body["cache"] = "degraded"
	}
	if r.Store != nil {
		body["status"] = "unavailable"
		body["store"] = "down"
		status = http.StatusServiceUnavailable
		c.Header("Retry-After", "1")
	}
	c.JSON(status, body)
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": h.name,
		"version": h.version,
		"api":     h.apiPrefix,
		"health":  "/health",
	})
}
