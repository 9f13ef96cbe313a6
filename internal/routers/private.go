package routers

import (
	"net/http/pprof"

	"github.com/haierkeys/link-editor-service/internal/middleware"
	"github.com/haierkeys/link-editor-service/internal/routers/api_router"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// runtime profiles served by pprof.Handler under /pprof/<name>
var pprofProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// NewPrivateRouterWithLogger serves expvar and prometheus metrics on the private listener.
// The pprof endpoints are only mounted in debug mode.
// NewPrivateRouterWithLogger 私有监听地址上的监控路由
func NewPrivateRouterWithLogger(runMode string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RecoveryWithLogger(logger))

	r.GET("/debug/vars", api_router.Expvar)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if runMode != gin.DebugMode {
		return r
	}

	p := r.Group("/pprof")
	p.GET("/", gin.WrapF(pprof.Index))
	p.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	p.GET("/profile", gin.WrapF(pprof.Profile))
	p.Match([]string{"GET", "POST"}, "/symbol", gin.WrapF(pprof.Symbol))
	p.GET("/trace", gin.WrapF(pprof.Trace))
	for _, name := range pprofProfiles {
		p.GET("/"+name, gin.WrapH(pprof.Handler(name)))
	}
	logger.Debug("pprof mounted", zap.Strings("profiles", pprofProfiles))
	return r
}
