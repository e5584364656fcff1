package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, APIResponse{
		Status:  "success",
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Fail writes an error envelope. message is shown to clients; err, when set, goes to detail.
func Fail(c *gin.Context, statusCode int, err error, message string) {
	resp := APIResponse{
		Status: "error",
		Error:  message,
	}
	if err != nil && err.Error() != message {
		resp.Detail = err.Error()
	}
	c.JSON(statusCode, resp)
}

// AbortFail is Fail for middlewares.
func AbortFail(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, APIResponse{Status: "error", Error: message})
}

// Document writes an already-encoded JSON document as is.
func Document(c *gin.Context, body []byte) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
