package api_router

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haierkeys/link-editor-service/internal/app"
	pkgapp "github.com/haierkeys/link-editor-service/pkg/app"

	"github.com/gin-gonic/gin"
)

// ExpvarKey is the expvar name the service variables are published under
const ExpvarKey = "linkEditor"

type expvarSource struct {
	app *app.App
	wss *pkgapp.WebsocketServer
}

var (
	expvarOnce    sync.Once
	expvarCurrent atomic.Pointer[expvarSource]
)

// PublishVars exposes version, uptime and connection counts of a through expvar.
// The latest call wins; the variable is registered once per process.
func PublishVars(a *app.App, wss *pkgapp.WebsocketServer) {
	expvarCurrent.Store(&expvarSource{app: a, wss: wss})
	expvarOnce.Do(func() {
		expvar.Publish(ExpvarKey, expvar.Func(func() any {
			src := expvarCurrent.Load()
			if src == nil || src.app == nil {
				return nil
			}
			vars := map[string]any{
				"version":   src.app.Version().Version,
				"uptime":    time.Since(src.app.StartTime).Seconds(),
				"linkTypes": len(src.app.Registry.LinkTypes()),
			}
			if src.wss != nil {
				vars["watchers"] = src.wss.Count()
			}
			return vars
		}))
	})
}

// Expvar 导出系统运行时指标
// 将 expvar 导出的 JSON 数据写入响应
func Expvar(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	first := true
	fmt.Fprintf(c.Writer, "{\n")
	expvar.Do(func(kv expvar.KeyValue) {
		if !first {
			fmt.Fprintf(c.Writer, ",\n")
		}
		first = false
		fmt.Fprintf(c.Writer, "%q: %s", kv.Key, kv.Value)
	})
	fmt.Fprintf(c.Writer, "\n}\n")
}
