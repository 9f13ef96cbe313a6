package api_router

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/haierkeys/link-editor-service/internal/app"
	"github.com/haierkeys/link-editor-service/internal/dto"
	"github.com/haierkeys/link-editor-service/internal/middleware"
	pkgapp "github.com/haierkeys/link-editor-service/pkg/app"
	"github.com/haierkeys/link-editor-service/pkg/code"
	apperrors "github.com/haierkeys/link-editor-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// previewTemplate renders the preview card a host embeds next to the link
var previewTemplate = template.Must(template.New("preview").Parse(
	`<a class="link-preview" data-link-type="{{.LinkTypeID}}" href="{{.Href}}" target="_blank" rel="noopener noreferrer">` +
		`<span class="link-preview__icon icon-{{.Preview.Icon}}"></span>` +
		`<span class="link-preview__title">{{.Preview.Title}}</span>` +
		`<span class="link-preview__type icon-{{.TabHeader.Icon}}">{{.TabHeader.Label}}</span>` +
		`</a>`))

type previewView struct {
	*dto.LinkResolveDTO
	Href string
}

// LinkHandler 链接类型 API 路由处理器
type LinkHandler struct {
	*Handler
}

// NewLinkHandler 创建 LinkHandler 实例
func NewLinkHandler(a *app.App) *LinkHandler {
	return &LinkHandler{Handler: NewHandler(a)}
}

// LinkTypes 获取可用链接类型列表
// @Summary 获取链接类型列表
// @Description 按配置排序并过滤禁用的链接类型，传入 href 时标记可处理该链接的类型
// @Tags 链接
// @Produce json
// @Param href query string false "链接地址"
// @Success 200 {object} pkgapp.Res{data=[]dto.LinkTypeDTO} "成功"
// @Router /api/link-types [get]
func (h *LinkHandler) LinkTypes(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.LinkTypeListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("LinkHandler.LinkTypes.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	types, err := h.App.LinkService.LinkTypes(ctx, middleware.TranslateFromGin(c), params)
	if err != nil {
		h.logError(ctx, "LinkHandler.LinkTypes", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(types))
}

// Resolve 解析链接为链接类型模型
// @Summary 解析链接
// @Tags 链接
// @Accept json
// @Produce json
// @Param params body dto.LinkResolveRequest true "解析参数"
// @Success 200 {object} pkgapp.Res{data=dto.LinkResolveDTO} "成功"
// @Router /api/link/resolve [post]
func (h *LinkHandler) Resolve(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.LinkResolveRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("LinkHandler.Resolve.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	res, err := h.App.LinkService.Resolve(ctx, middleware.TranslateFromGin(c), params)
	if err != nil {
		h.logError(ctx, "LinkHandler.Resolve", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(res))
}

// Preview 以 HTML 片段返回链接预览
// @Summary 链接预览
// @Tags 链接
// @Produce html
// @Param href query string true "链接地址"
// @Param linkTypeId query string false "链接类型"
// @Success 200 {string} string "HTML 片段"
// @Router /api/link/preview [get]
func (h *LinkHandler) Preview(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.LinkResolveRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("LinkHandler.Preview.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	res, err := h.App.LinkService.Resolve(ctx, middleware.TranslateFromGin(c), params)
	if err != nil {
		h.logError(ctx, "LinkHandler.Preview", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, previewView{LinkResolveDTO: res, Href: params.Href}); err != nil {
		h.logError(ctx, "LinkHandler.Preview.Execute", err)
		apperrors.ErrorResponse(c, code.ErrorServerInternal.WithDetails(err.Error()))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Editor 获取链接类型的编辑表单
// @Summary 获取编辑表单
// @Tags 链接
// @Produce json
// @Param id path string true "链接类型 ID"
// @Param href query string false "当前链接"
// @Success 200 {object} pkgapp.Res{data=dto.LinkEditorDTO} "成功"
// @Router /api/link-types/{id}/editor [get]
func (h *LinkHandler) Editor(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.LinkEditorRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("LinkHandler.Editor.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	res, err := h.App.LinkService.Editor(ctx, middleware.TranslateFromGin(c), c.Param("id"), params)
	if err != nil {
		h.logError(ctx, "LinkHandler.Editor", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(res))
}

// ChangeField 修改编辑表单的一个字段
// @Summary 修改表单字段
// @Description 解析输入并返回新的表单值，以及解析时覆盖的其他字段
// @Tags 链接
// @Accept json
// @Produce json
// @Param id path string true "链接类型 ID"
// @Param params body dto.LinkFieldChangeRequest true "字段修改参数"
// @Success 200 {object} pkgapp.Res{data=dto.LinkFieldChangeDTO} "成功"
// @Router /api/link-types/{id}/change [post]
func (h *LinkHandler) ChangeField(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.LinkFieldChangeRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("LinkHandler.ChangeField.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	res, err := h.App.LinkService.ChangeField(ctx, middleware.TranslateFromGin(c), c.Param("id"), params)
	if err != nil {
		h.logError(ctx, "LinkHandler.ChangeField", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(res))
}

// Convert 校验表单并转换为链接
// @Summary 表单转换为链接
// @Tags 链接
// @Accept json
// @Produce json
// @Param id path string true "链接类型 ID"
// @Param params body dto.LinkConvertRequest true "表单值"
// @Success 200 {object} pkgapp.Res{data=dto.LinkDTO} "成功"
// @Router /api/link-types/{id}/convert [post]
func (h *LinkHandler) Convert(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.LinkConvertRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("LinkHandler.Convert.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	res, err := h.App.LinkService.Convert(ctx, middleware.TranslateFromGin(c), c.Param("id"), params)
	if err != nil {
		h.logError(ctx, "LinkHandler.Convert", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(res))
}
