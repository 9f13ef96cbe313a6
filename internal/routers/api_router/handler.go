// Package api_router holds the gin handlers of the link editor API
package api_router

import (
	"context"

	"github.com/haierkeys/link-editor-service/internal/app"
	"github.com/haierkeys/link-editor-service/internal/middleware"
	pkgapp "github.com/haierkeys/link-editor-service/pkg/app"
	"github.com/haierkeys/link-editor-service/pkg/code"
	"github.com/haierkeys/link-editor-service/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Handler is embedded by every API handler and carries the app container.
// WSS is set only for handlers that talk to websocket clients.
type Handler struct {
	App *app.App
	WSS *pkgapp.WebsocketServer
}

func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

func NewHandlerWithWSS(a *app.App, wss *pkgapp.WebsocketServer) *Handler {
	return &Handler{App: a, WSS: wss}
}

// logError logs err with the request trace ID. Coded errors are answers to the
// caller (unknown link type, closed session) and are logged at warn level.
func (h *Handler) logError(ctx context.Context, method string, err error) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String(logger.FieldTraceID, middleware.GetTraceID(ctx)),
	}
	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		h.App.Logger().Warn(method, fields...)
		return
	}
	h.App.Logger().Error(method, fields...)
}
