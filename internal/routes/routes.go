package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"winelist/internal/handlers"
	"winelist/internal/middlewares"
)

type Handlers struct {
	Documents *handlers.DocumentHandler
	Auth      *handlers.AuthHandler
	Catalog   *handlers.CatalogHandler
	Realtime  *handlers.RealtimeHandler
}

func RegisterRoutes(router *gin.Engine, h Handlers, authorizer middlewares.Authorizer, maxBody int64) {
	api := router.Group("/api")
	api.Use(middlewares.LimitBody(maxBody))

	NewDocumentRoutes(h.Documents).RegisterRoutes(api)
	NewAuthRoutes(h.Auth, h.Catalog, authorizer).RegisterRoutes(api)
	NewCatalogRoutes(h.Catalog).RegisterRoutes(api)

	NewRealtimeRoutes(h.Realtime).RegisterRoutes(&router.RouterGroup)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
