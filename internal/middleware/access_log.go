package middleware

import (
	"net/http"
	"time"

	"github.com/haierkeys/link-editor-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AccessLogWithLogger logs one line per request once the handlers have run.
// Server errors are logged at error level and client errors at warn.
// AccessLogWithLogger 访问日志
func AccessLogWithLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := zapcore.InfoLevel
		switch {
		case status >= http.StatusInternalServerError:
			level = zapcore.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zapcore.WarnLevel
		}
		ce := log.Check(level, c.Request.URL.Path)
		if ce == nil {
			return
		}

		fields := []zap.Field{
			zap.String(logger.FieldMethod, c.Request.Method),
			zap.Int("status", status),
			zap.Duration(logger.FieldDuration, time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String(logger.FieldTraceID, GetTraceIDFromGin(c)),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if ua := c.Request.UserAgent(); ua != "" {
			fields = append(fields, zap.String("user-agent", ua))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}
		ce.Write(fields...)
	}
}
