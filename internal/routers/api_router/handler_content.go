package api_router

import (
	"github.com/haierkeys/link-editor-service/internal/app"
	"github.com/haierkeys/link-editor-service/internal/dto"
	"github.com/haierkeys/link-editor-service/internal/middleware"
	pkgapp "github.com/haierkeys/link-editor-service/pkg/app"
	"github.com/haierkeys/link-editor-service/pkg/code"
	apperrors "github.com/haierkeys/link-editor-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContentHandler 富文本内容 API 路由处理器
type ContentHandler struct {
	*Handler
}

// NewContentHandler 创建 ContentHandler 实例
func NewContentHandler(a *app.App) *ContentHandler {
	return &ContentHandler{Handler: NewHandler(a)}
}

// Links 扫描 Markdown 内容中的链接并按链接类型归类
// @Summary 扫描内容链接
// @Tags 内容
// @Accept json
// @Produce json
// @Param params body dto.ContentLinksRequest true "Markdown 内容"
// @Success 200 {object} pkgapp.Res{data=dto.ContentLinksDTO} "成功"
// @Router /api/content/links [post]
func (h *ContentHandler) Links(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ContentLinksRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ContentHandler.Links.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	res, err := h.App.ContentService.Links(ctx, middleware.TranslateFromGin(c), params)
	if err != nil {
		h.logError(ctx, "ContentHandler.Links", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(res))
}
