// Package errors turns service errors into the JSON error envelope
package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/haierkeys/link-editor-service/internal/middleware"
	"github.com/haierkeys/link-editor-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// AppError is the body written for a failed request
type AppError struct {
	Code    int      `json:"code"`
	Status  bool     `json:"status"` // always false
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Data    any      `json:"data,omitempty"`
	TraceID string   `json:"traceId,omitempty"`

	Cause     error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`

	httpStatus int
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// From converts err into an AppError with messages in lang.
// A *code.Code anywhere in the chain keeps its number, details, data and HTTP status;
// anything else becomes an internal server error.
func From(err error, lang string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	e := &AppError{Cause: err, Timestamp: time.Now()}
	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		e.Code = codeErr.Code()
		e.Message = codeErr.MsgIn(lang)
		e.Details = codeErr.Details()
		e.Data = codeErr.Data()
		e.httpStatus = codeErr.StatusCode()
		return e
	}
	e.Code = code.ErrorServerInternal.Code()
	e.Message = code.ErrorServerInternal.MsgIn(lang)
	return e
}

// ErrorResponse writes err as JSON in the language and with the trace ID of the request
func ErrorResponse(c *gin.Context, err error) {
	e := From(err, middleware.GetLangFromGin(c))
	e.TraceID = middleware.GetTraceIDFromGin(c)

	status := e.httpStatus
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, e)
}
