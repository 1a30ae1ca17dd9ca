// Package middleware provides HTTP middleware for the land registry API.
//
// Import Path: landledger.io/registry/internal/api/middleware
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "landledger.io/registry/internal/pkg/errors"
	"landledger.io/registry/internal/pkg/logger"
)

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Params      map[string]interface{} `json:"params,omitempty"`
	FieldErrors []apperrors.FieldError `json:"field_errors,omitempty"`
}

// ErrorHandler is a Gin middleware that provides centralized error handling.
// It captures errors added via c.Error() and returns a consistent JSON response.
// Anything that is not a client-facing AppError becomes an opaque 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.FromContext(c.Request.Context()).With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
			log.Warn("Request error",
				zap.String("code", appErr.Code),
				zap.String("message", appErr.Message),
				zap.Int("status", appErr.HTTPStatus),
			)
			c.JSON(appErr.HTTPStatus, ErrorResponse{
				Code:        appErr.Code,
				Message:     appErr.Message,
				Params:      appErr.Params,
				FieldErrors: appErr.FieldErrors,
			})
			return
		}

		log.Error("Unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    apperrors.CodeInternal,
			Message: "An internal error occurred",
		})
	}
}
