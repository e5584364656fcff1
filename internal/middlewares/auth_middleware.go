package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"winelist/internal/responses"
)

// Authorizer validates an admin token.
type Authorizer interface {
	Authorize(token string) error
}

// Authenticate requires "Authorization: Bearer <token>" holding the admin token or an admin session token.
func Authenticate(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			responses.AbortFail(c, http.StatusUnauthorized, "Missing Authorization header")
			return
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			responses.AbortFail(c, http.StatusUnauthorized, "Invalid Authorization format")
			return
		}

		if err := auth.Authorize(parts[1]); err != nil {
			responses.AbortFail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Next()
	}
}
