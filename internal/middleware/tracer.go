package middleware

import (
	"context"

	"github.com/haierkeys/link-editor-service/pkg/app"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	DefaultTraceIDHeader = "X-Trace-ID"
	TraceIDKey           = app.ContextTraceIDKey

	// maxTraceIDLen bounds caller supplied IDs before they reach the logs
	maxTraceIDLen = 128
)

type traceIDCtxKey struct{}

// TraceMiddlewareWithConfig assigns every request a trace ID, reusing a sane one sent by
// the caller in headerName. The ID is stored in gin.Context and the request context and
// echoed in the response header.
func TraceMiddlewareWithConfig(enabled bool, headerName string) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	if headerName == "" {
		headerName = DefaultTraceIDHeader
	}
	return func(c *gin.Context) {
		traceID := c.GetHeader(headerName)
		if !validTraceID(traceID) {
			traceID = uuid.NewString()
		}
		c.Set(TraceIDKey, traceID)
		c.Request = c.Request.WithContext(WithTraceID(c.Request.Context(), traceID))
		c.Header(headerName, traceID)
		c.Next()
	}
}

func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if b := id[i]; b <= ' ' || b > '~' {
			return false
		}
	}
	return true
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDCtxKey{}, traceID)
}

// GetTraceID reads the trace ID from a request context, "" when absent
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDCtxKey{}).(string)
	return id
}

// GetTraceIDFromGin reads the trace ID stored by the middleware
func GetTraceIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(TraceIDKey)
}
