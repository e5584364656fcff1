package routes

import (
	"github.com/gin-gonic/gin"

	"winelist/internal/handlers"
)

type DocumentRoutes struct {
	handler *handlers.DocumentHandler
}

func NewDocumentRoutes(handler *handlers.DocumentHandler) *DocumentRoutes {
	return &DocumentRoutes{handler: handler}
}

func (r *DocumentRoutes) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/db", r.handler.Get)
	// Writes carry their token in the body.
	router.POST("/db", r.handler.Save)

	backup := router.Group("/admin/backup")
	{
		backup.GET("/export", r.handler.Export)
		backup.POST("/import", r.handler.Import)
	}
}
