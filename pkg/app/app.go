// Package app holds the response envelope shared by the HTTP and websocket handlers
package app

import (
	"strings"

	"github.com/haierkeys/link-editor-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// Keys the middlewares store per request values under in gin.Context
const (
	ContextLangKey    = "lang"
	ContextTraceIDKey = "trace_id"
)

// VersionInfo 版本信息
type VersionInfo struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

// Res is the envelope of every JSON answer
type Res struct {
	Code    int    `json:"code"`
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Details string `json:"details,omitempty"` // comma joined
	TraceID string `json:"traceId,omitempty"`
}

type Response struct {
	Ctx *gin.Context
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{Ctx: ctx}
}

// GetAccessHost returns scheme and host the client used, honouring X-Forwarded-Proto
func GetAccessHost(c *gin.Context) string {
	scheme := c.GetHeader("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + c.Request.Host
}

// Lang returns the negotiated language of the request
func (r *Response) Lang() string {
	if s := r.Ctx.GetString(ContextLangKey); s != "" {
		return s
	}
	return code.FALLBACK_LNG
}

// Envelope renders codeObj in the request language
func (r *Response) Envelope(codeObj *code.Code) Res {
	res := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.MsgIn(r.Lang()),
		Data:    codeObj.Data(),
		TraceID: r.Ctx.GetString(ContextTraceIDKey),
	}
	if codeObj.HaveDetails() {
		res.Details = strings.Join(codeObj.Details(), ",")
	}
	return res
}

// ToResponse writes codeObj as JSON with its HTTP status
func (r *Response) ToResponse(codeObj *code.Code) {
	r.Ctx.JSON(codeObj.StatusCode(), r.Envelope(codeObj))
}
