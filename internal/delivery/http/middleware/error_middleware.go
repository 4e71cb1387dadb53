package middleware

import (
	"errors"
	"net/http"

	"go-hr-backend/internal/delivery/http/response"
	"go-hr-backend/pkg/apperror"
	"go-hr-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("Request failed",
					"path", c.FullPath(), "request_id", c.GetString(response.RequestIDKey), "error", appErr.Err)
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Fields)
			return
		}

		// Never expose internal error details to clients
		logger.Log.Error("Internal Server Error",
			"path", c.FullPath(), "request_id", c.GetString(response.RequestIDKey), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}

// RequestID tags every request with an id, reusing a sane inbound X-Request-ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(response.RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
