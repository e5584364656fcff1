package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"winelist/internal/responses"
	"winelist/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid Format")
		return
	}

	session, err := h.authService.Login(req.Password)
	switch {
	case errors.Is(err, services.ErrLoginDisabled):
		responses.Fail(c, http.StatusForbidden, nil, "Login is disabled")
		return
	case err != nil:
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	responses.Success(c, http.StatusOK, session, "Logged in")
}
