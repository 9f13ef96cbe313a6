package api_router

import (
	"context"
	"time"

	"github.com/haierkeys/link-editor-service/internal/app"
	"github.com/haierkeys/link-editor-service/internal/dto"
	pkgapp "github.com/haierkeys/link-editor-service/pkg/app"
	"github.com/haierkeys/link-editor-service/pkg/code"
	apperrors "github.com/haierkeys/link-editor-service/pkg/errors"
	"github.com/haierkeys/link-editor-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// WebSocket actions of the editor watch stream
const (
	ActionEditorState   = "EditorState"
	ActionEditorGet     = "EditorGet"
	ActionEditorDismiss = "EditorDismiss"
)

// EditorHandler 编辑会话 API 路由处理器
type EditorHandler struct {
	*Handler
}

// NewEditorHandler 创建 EditorHandler 实例，并在 WebSocket 服务上注册会话操作
func NewEditorHandler(a *app.App, wss *pkgapp.WebsocketServer) *EditorHandler {
	h := &EditorHandler{Handler: NewHandlerWithWSS(a, wss)}
	if wss != nil {
		wss.Use(ActionEditorGet, h.wsGet)
		wss.Use(ActionEditorDismiss, h.wsDismiss)
	}
	return h
}

// Open 打开编辑会话
// @Summary 打开编辑会话
// @Tags 编辑器
// @Accept json
// @Produce json
// @Param params body dto.EditorOpenRequest true "会话参数"
// @Success 200 {object} pkgapp.Res{data=dto.EditorSessionDTO} "成功"
// @Router /api/editor [post]
func (h *EditorHandler) Open(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.EditorOpenRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("EditorHandler.Open.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	session, err := h.App.EditorService.Open(ctx, params)
	if err != nil {
		h.logError(ctx, "EditorHandler.Open", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(session))
}

// Get 获取编辑会话
// @Summary 获取编辑会话
// @Tags 编辑器
// @Produce json
// @Param id path string true "会话 ID"
// @Success 200 {object} pkgapp.Res{data=dto.EditorSessionDTO} "成功"
// @Router /api/editor/{id} [get]
func (h *EditorHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.App.EditorService.Get(ctx, c.Param("id"))
	if err != nil {
		h.logError(ctx, "EditorHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(session))
}

// Apply 应用链接并结束会话
// @Summary 应用链接
// @Tags 编辑器
// @Accept json
// @Produce json
// @Param id path string true "会话 ID"
// @Param params body dto.EditorApplyRequest true "链接"
// @Success 200 {object} pkgapp.Res{data=dto.EditorSessionDTO} "成功"
// @Router /api/editor/{id}/apply [post]
func (h *EditorHandler) Apply(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.EditorApplyRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("EditorHandler.Apply.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	session, err := h.App.EditorService.Apply(ctx, c.Param("id"), params)
	if err != nil {
		h.logError(ctx, "EditorHandler.Apply", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(session))
}

// Unset 移除链接并结束会话
// @Summary 移除链接
// @Tags 编辑器
// @Produce json
// @Param id path string true "会话 ID"
// @Success 200 {object} pkgapp.Res{data=dto.EditorSessionDTO} "成功"
// @Router /api/editor/{id}/unset [post]
func (h *EditorHandler) Unset(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.App.EditorService.Unset(ctx, c.Param("id"))
	if err != nil {
		h.logError(ctx, "EditorHandler.Unset", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(session))
}

// Dismiss 放弃修改并结束会话
// @Summary 放弃修改
// @Tags 编辑器
// @Produce json
// @Param id path string true "会话 ID"
// @Success 200 {object} pkgapp.Res{data=dto.EditorSessionDTO} "成功"
// @Router /api/editor/{id}/dismiss [post]
func (h *EditorHandler) Dismiss(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.App.EditorService.Dismiss(ctx, c.Param("id"))
	if err != nil {
		h.logError(ctx, "EditorHandler.Dismiss", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(session))
}

// Watch 通过 WebSocket 推送编辑器状态
// 连接建立后立即推送当前状态，会话结束时推送最终状态并关闭连接
// @Summary 订阅编辑器状态
// @Tags 编辑器
// @Param id path string true "会话 ID"
// @Router /api/editor/{id}/watch [get]
func (h *EditorHandler) Watch(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	session, err := h.App.EditorService.Get(ctx, id)
	if err != nil {
		h.logError(ctx, "EditorHandler.Watch", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	if !session.IsOpen {
		apperrors.ErrorResponse(c, code.ErrorEditorClosed.WithDetails(id))
		return
	}

	h.WSS.Run(func(client *pkgapp.WebsocketClient) error {
		return h.subscribe(ctx, id, client)
	})(c)
}

func (h *EditorHandler) subscribe(ctx context.Context, id string, client *pkgapp.WebsocketClient) error {
	log := h.App.Logger().With(zap.String(logger.FieldSessionID, id))

	unsubscribe, err := h.App.EditorService.Subscribe(ctx, id, func(msg *dto.EditorStateMessage) {
		if err := client.Send(ActionEditorState, msg); err != nil {
			log.Debug("editor state push failed", zap.Error(err))
			return
		}
		if !msg.IsOpen {
			client.Close("EditorClosed")
		}
	})
	if err != nil {
		var codeErr *code.Code
		if !errors.As(err, &codeErr) {
			codeErr = code.ErrorEditorWatchFailed.WithDetails(err.Error())
		}
		_ = client.ToResponse(codeErr, ActionEditorState)
		return err
	}
	client.OnClose(unsubscribe)
	return nil
}

// wsGet 通过 WebSocket 获取会话
func (h *EditorHandler) wsGet(client *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	session, err := h.App.EditorService.Get(context.Background(), client.Ctx.Param("id"))
	h.wsReply(client, ActionEditorGet, session, err)
}

// wsDismiss 通过 WebSocket 放弃修改，最终状态随后经订阅推送
func (h *EditorHandler) wsDismiss(client *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout())
	defer cancel()
	session, err := h.App.EditorService.Dismiss(ctx, client.Ctx.Param("id"))
	h.wsReply(client, ActionEditorDismiss, session, err)
}

func (h *EditorHandler) wsReply(client *pkgapp.WebsocketClient, action string, session *dto.EditorSessionDTO, err error) {
	if err != nil {
		var codeErr *code.Code
		if !errors.As(err, &codeErr) {
			codeErr = code.ErrorServerInternal.WithDetails(err.Error())
		}
		_ = client.ToResponse(codeErr, action)
		return
	}
	_ = client.ToResponse(code.Success.WithData(session), action)
}

func (h *EditorHandler) timeout() time.Duration {
	if t := h.App.Config().App.DefaultContextTimeout; t > 0 {
		return time.Duration(t) * time.Second
	}
	return app.DefaultShutdownTimeout
}
