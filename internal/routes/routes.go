package routes

import (
	"catalog-api/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes monta los endpoints de lectura bajo prefix y la salud en la raíz
func RegisterRoutes(router *gin.Engine, h *handlers.ProductHandler, health *handlers.HealthHandler, prefix string) {
	router.GET("/", health.Root)
	router.GET("/health", health.Health)
	router.GET("/health/ready", health.Ready)

	v1 := router.Group(prefix)
	{
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/stats", h.Stats)
		v1.GET("/products/categories", h.Categories)
		v1.GET("/products/brands", h.Brands)
		v1.GET("/products/:id", h.GetProduct)
	}
}
