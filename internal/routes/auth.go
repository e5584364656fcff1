package routes

import (
	"github.com/gin-gonic/gin"

	"winelist/internal/handlers"
	"winelist/internal/middlewares"
)

type AuthRoutes struct {
	handler    *handlers.AuthHandler
	catalog    *handlers.CatalogHandler
	authorizer middlewares.Authorizer
}

func NewAuthRoutes(handler *handlers.AuthHandler, catalog *handlers.CatalogHandler, authorizer middlewares.Authorizer) *AuthRoutes {
	return &AuthRoutes{handler: handler, catalog: catalog, authorizer: authorizer}
}

func (r *AuthRoutes) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	{
		// Public routes
		admin.POST("/login", r.handler.Login)

		// Protected routes
		protected := admin.Group("/")
		protected.Use(middlewares.Authenticate(r.authorizer))
		protected.GET("/integrity", r.catalog.Integrity)
	}
}
