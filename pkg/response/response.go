package response

import (
	"net/http"

	appErrors "github.com/charlesng35/otpdash/pkg/errors"
	"github.com/gin-gonic/gin"
)

// Response defines the base API payload. Failures carry Error and Code; successes carry
// Message and/or Data.
type Response struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// Message writes a JSON success response that only carries a human readable message.
func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{Message: message})
}

// Success writes a JSON success response.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{Data: data})
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, Response{
		Error: appErr.Message,
		Code:  appErr.Code,
	})
}
