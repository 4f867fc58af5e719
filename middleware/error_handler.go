package middleware

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "github.com/MixtapeHQ/mixtape-backend/errors"
	"github.com/MixtapeHQ/mixtape-backend/logger"
	"github.com/MixtapeHQ/mixtape-backend/types"
	"github.com/gin-gonic/gin"
)

// ErrorHandler translates errors attached to the gin context into JSON
// responses. AppErrors carry their own status and taxonomy; anything else is
// logged and returned as an opaque 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		log := logger.GetLogger()

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			status := appErr.GetHTTPStatus()

			if status >= http.StatusInternalServerError {
				log.Errorw("Request failed",
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"request_id", c.GetString(RequestIDKey),
					"error_type", string(appErr.Type),
					"error", appErr.Error())
			} else {
				log.Warnw("Request rejected",
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"request_id", c.GetString(RequestIDKey),
					"error_type", string(appErr.Type),
					"error", appErr.Error())
			}

			c.JSON(status, types.ErrorResponse{
				Type:    string(appErr.Type),
				Message: appErr.Message,
				Details: appErr.Detail,
				Code:    strconv.Itoa(status),
			})
			return
		}

		log.Errorw("Unhandled error",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", c.GetString(RequestIDKey),
			"error", err)

		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Type:    string(apperrors.ServerError),
			Message: "Internal server error",
			Code:    strconv.Itoa(http.StatusInternalServerError),
		})
	}
}
