package middleware

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lexscribe/internal/api/errors"
)

// ErrorHandler turns panics into a JSON 500. An *APIError raised with panic is
// returned as is; anything else is logged and hidden from the client.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if apiErr, ok := recovered.(*errors.APIError); ok {
			abortWith(c, apiErr)
			return
		}

		fields := []zap.Field{
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		}
		if err, ok := recovered.(error); ok {
			logger.Error("Unhandled error", append(fields, zap.Error(err))...)
		} else {
			logger.Error("Panic recovered", append(fields, zap.Any("recovered", recovered))...)
		}
		abortWith(c, errors.NewInternalError("Internal server error"))
	})
}

// HandleError answers with err when it is an *APIError. Other errors are
// escalated to ErrorHandler.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var apiErr *errors.APIError
	if !stderrors.As(err, &apiErr) {
		panic(err)
	}
	_ = c.Error(err)
	abortWith(c, apiErr)
}

func abortWith(c *gin.Context, apiErr *errors.APIError) {
	apiErr.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}
