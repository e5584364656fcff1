package middlewares

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type tokenAuthorizer string

func (a tokenAuthorizer) Authorize(token string) error {
	if token != string(a) {
		return errors.New("unauthorized")
	}
	return nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthenticate(t *testing.T) {
	r := gin.New()
	r.GET("/admin", Authenticate(tokenAuthorizer("ianua")), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic ianua", http.StatusUnauthorized},
		{"no token", "Bearer", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer ianua", http.StatusOK},
		{"scheme is case-insensitive", "bearer ianua", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"status":"error"`)
			}
		})
	}
}

func TestLimitBody(t *testing.T) {
	r := gin.New()
	r.POST("/", LimitBody(8), func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, string(body))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "short", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("much too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
