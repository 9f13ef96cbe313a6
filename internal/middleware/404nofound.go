package middleware

import (
	"net/http"

	"github.com/haierkeys/link-editor-service/pkg/app"
	"github.com/haierkeys/link-editor-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound answers unmatched routes with a 404 envelope naming the request line
// NoFound 未匹配路由返回 404
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		notFound := code.ErrorNotFoundAPI.
			WithHTTPStatus(http.StatusNotFound).
			WithDetails(c.Request.Method + " " + c.Request.URL.Path)
		app.NewResponse(c).ToResponse(notFound)
		c.Abort()
	}
}
