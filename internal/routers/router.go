package routers

import (
	"time"

	"github.com/haierkeys/link-editor-service/internal/app"
	"github.com/haierkeys/link-editor-service/internal/middleware"
	"github.com/haierkeys/link-editor-service/internal/routers/api_router"
	pkgapp "github.com/haierkeys/link-editor-service/pkg/app"
	"github.com/haierkeys/link-editor-service/pkg/limiter"
	"github.com/haierkeys/link-editor-service/pkg/util"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

// defaultBucketRules apply when the configuration does not name the same prefix.
// Every open editor session holds a worker, so opening is throttled harder.
var defaultBucketRules = []limiter.BucketRule{
	{
		Key:          "/api/editor",
		FillInterval: time.Second,
		Capacity:     20,
		Quantum:      10,
	},
}

// newMethodLimiter builds the limiter from configured rules followed by the defaults
func newMethodLimiter(rules []app.LimiterRule, log *zap.Logger) limiter.Face {
	buckets := make([]limiter.BucketRule, 0, len(rules)+len(defaultBucketRules))
	for _, r := range rules {
		interval, err := util.ParseDuration(r.FillInterval)
		if err != nil {
			log.Warn("limiter rule skipped", zap.String("key", r.Key), zap.Error(err))
			continue
		}
		buckets = append(buckets, limiter.BucketRule{
			Key:          r.Key,
			FillInterval: interval,
			Capacity:     r.Capacity,
			Quantum:      r.Quantum,
		})
	}
	buckets = append(buckets, defaultBucketRules...)
	return limiter.NewMethodLimiter().AddBuckets(buckets...)
}

func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	var wss = pkgapp.NewWebsocketServer(pkgapp.WSConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled:    true,
			ParallelEnabled:     true,                                 // 开启并行消息处理
			Recovery:            gws.Recovery,                         // 开启异常恢复
			PermessageDeflate:   gws.PermessageDeflate{Enabled: true}, // 开启压缩
			ParallelGolimit:     8,
			ReadMaxPayloadSize:  1024 * 64, // 客户端只发送会话操作
			WriteMaxPayloadSize: 1024 * 1024,
		},
		Logger: appContainer.Logger(),
	})

	api_router.PublishVars(appContainer, wss)

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		if cfg.Server.RunMode == gin.DebugMode {
			api.Use(gin.Logger())
		}
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
		api.Use(middleware.RateLimiter(newMethodLimiter(cfg.Limiter.Rules, appContainer.Logger())))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.Cors())
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		linkHandler := api_router.NewLinkHandler(appContainer)
		editorHandler := api_router.NewEditorHandler(appContainer, wss)
		contentHandler := api_router.NewContentHandler(appContainer)
		systemHandler := api_router.NewSystemHandler(appContainer, wss)

		api.GET("/version", systemHandler.Version)
		api.GET("/health", systemHandler.Health)

		// 链接类型
		api.GET("/link-types", linkHandler.LinkTypes)
		api.GET("/link-types/:id/editor", linkHandler.Editor)
		api.POST("/link-types/:id/change", linkHandler.ChangeField)
		api.POST("/link-types/:id/convert", linkHandler.Convert)
		api.POST("/link/resolve", linkHandler.Resolve)
		api.GET("/link/preview", linkHandler.Preview)

		// 编辑会话
		api.POST("/editor", editorHandler.Open)
		api.GET("/editor/:id", editorHandler.Get)
		api.POST("/editor/:id/apply", editorHandler.Apply)
		api.POST("/editor/:id/unset", editorHandler.Unset)
		api.POST("/editor/:id/dismiss", editorHandler.Dismiss)
		api.GET("/editor/:id/watch", editorHandler.Watch)

		// 富文本内容
		api.POST("/content/links", contentHandler.Links)
	}

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NoFound())

	return r
}
