package routes

import (
	"github.com/gin-gonic/gin"

	"winelist/internal/handlers"
)

type RealtimeRoutes struct {
	handler *handlers.RealtimeHandler
}

func NewRealtimeRoutes(handler *handlers.RealtimeHandler) *RealtimeRoutes {
	return &RealtimeRoutes{handler: handler}
}

func (r *RealtimeRoutes) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/socket.io/*any", r.handler.Serve)
	router.POST("/socket.io/*any", r.handler.Serve)
}
