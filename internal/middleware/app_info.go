package middleware

import (
	"github.com/haierkeys/link-editor-service/pkg/app"

	"github.com/gin-gonic/gin"
)

// HeaderServer is answered on every API response
const HeaderServer = "X-Link-Editor-Version"

// AppInfoWithConfig stores name, version and access host in the context and
// advertises the version in a response header
// AppInfoWithConfig 写入应用信息
func AppInfoWithConfig(name, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("app_name", name)
		c.Set("app_version", version)
		c.Set("access_host", app.GetAccessHost(c))
		c.Header(HeaderServer, version)
		c.Next()
	}
}
