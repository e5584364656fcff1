package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LimitBody caps request bodies at limit bytes. Reads past the cap fail with *http.MaxBytesError.
func LimitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
