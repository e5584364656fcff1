package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"winelist/internal/realtime"
	"winelist/internal/services"
)

type RealtimeHandler struct {
	socketIO http.Handler
}

// NewRealtimeHandler serves Socket.IO from hub. New clients start from the stored document.
func NewRealtimeHandler(hub *realtime.Hub, documents *services.DocumentService) *RealtimeHandler {
	return &RealtimeHandler{socketIO: hub.Handler(documents.Get)}
}

// Serve handles both Socket.IO transports: long-polling requests and the websocket upgrade.
func (h *RealtimeHandler) Serve(c *gin.Context) {
	h.socketIO.ServeHTTP(c.Writer, c.Request)
}
