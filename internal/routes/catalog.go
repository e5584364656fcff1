package routes

import (
	"github.com/gin-gonic/gin"

	"winelist/internal/handlers"
)

type CatalogRoutes struct {
	handler *handlers.CatalogHandler
}

func NewCatalogRoutes(handler *handlers.CatalogHandler) *CatalogRoutes {
	return &CatalogRoutes{handler: handler}
}

func (r *CatalogRoutes) RegisterRoutes(router *gin.RouterGroup) {
	catalog := router.Group("/catalog")
	{
		catalog.GET("/zones", r.handler.Zones)
		catalog.GET("/wineries", r.handler.Wineries)
		catalog.GET("/search", r.handler.Search)
	}
}
