package middleware

import (
	"fmt"
	"net/http"

	"github.com/haierkeys/link-editor-service/pkg/app"
	"github.com/haierkeys/link-editor-service/pkg/code"
	"github.com/haierkeys/link-editor-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger turns a handler panic into an internal error envelope.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func RecoveryWithLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}

			var msg string
			switch v := r.(type) {
			case error:
				msg = v.Error()
			case string:
				msg = v
			default:
				msg = fmt.Sprint(v)
			}
			log.Error("recovered from panic",
				zap.String("panic", msg),
				zap.String("router", c.Request.URL.Path),
				zap.String(logger.FieldMethod, c.Request.Method),
				zap.String("ip", c.ClientIP()),
				zap.String(logger.FieldTraceID, GetTraceIDFromGin(c)),
				zap.Stack("stack"),
			)

			internal := code.ErrorServerInternal.WithHTTPStatus(http.StatusInternalServerError).WithDetails(msg)
			app.NewResponse(c).ToResponse(internal)
			c.Abort()
		}()

		c.Next()
	}
}
