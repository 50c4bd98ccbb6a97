package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-crud-service/internal/adapter/gin/response"
	"user-crud-service/pkg/logger"
)

const (
	msgInternalError = "Internal Server Error"
	msgRouteNotFound = "Route not found"
)

// Recovery turns panics and errors attached with c.Error that no handler answered
// into a 500 envelope. The error detail is included only when development is true.
func Recovery(log *zap.Logger, development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				logger.WithContext(c.Request.Context(), log).Error("panic recovered",
					zap.Error(err),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				writeInternalError(c, err, development)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		logger.WithContext(c.Request.Context(), log).Error("unhandled request error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		writeInternalError(c, err, development)
	}
}

func writeInternalError(c *gin.Context, err error, development bool) {
	var detail string
	if development {
		detail = err.Error()
	}
	if c.Writer.Written() {
		c.Abort()
		return
	}
	response.Abort(c, http.StatusInternalServerError, msgInternalError, detail)
}

// NotFound answers requests that matched no route.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, msgRouteNotFound, "")
	}
}
