package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/haierkeys/link-editor-service/pkg/i18n"
	"github.com/haierkeys/link-editor-service/pkg/limiter"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestLangWithTranslator(t *testing.T) {
	uni, err := i18n.NewUniversalTranslator(i18n.Catalog{
		"en": {"greeting": "Hello"},
		"zh": {"greeting": "你好"},
	})
	require.NoError(t, err)

	r := gin.New()
	r.Use(LangWithTranslator(uni))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetLangFromGin(c)+":"+TranslateFromGin(c)("greeting"))
	})

	tests := []struct {
		name   string
		target string
		header map[string]string
		want   string
	}{
		{"default", "/", nil, "en:Hello"},
		{"query", "/?lang=zh-CN", nil, "zh:你好"},
		{"header", "/", map[string]string{"lang": "zh_Hans"}, "zh:你好"},
		{"accept language", "/", map[string]string{"Accept-Language": "zh-TW,zh;q=0.9,en;q=0.8"}, "zh:你好"},
		{"unsupported", "/?lang=fr", nil, "en:Hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestTranslateFromGinWithoutTranslator(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "some.key", TranslateFromGin(c)("some.key"))
	assert.Equal(t, "en", GetLangFromGin(c))
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddlewareWithConfig(true, ""))
	r.GET("/", func(c *gin.Context) {
		assert.Equal(t, GetTraceIDFromGin(c), GetTraceID(c.Request.Context()))
		c.String(http.StatusOK, GetTraceIDFromGin(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(DefaultTraceIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DefaultTraceIDHeader, "given-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "given-id", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DefaultTraceIDHeader, "has space")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "has space", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}

func TestTraceMiddlewareDisabled(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddlewareWithConfig(false, "X-Request-ID"))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceIDFromGin(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, w.Body.String())
	assert.Empty(t, w.Header().Get("X-Request-ID"))
}

func TestRecoveryWithLogger(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryWithLogger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body struct {
		Code    int    `json:"code"`
		Status  bool   `json:"status"`
		Details string `json:"details"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 500, body.Code)
	assert.False(t, body.Status)
	assert.Equal(t, "boom", body.Details)
}

func TestRateLimiter(t *testing.T) {
	l := limiter.NewMethodLimiter().AddBuckets(limiter.BucketRule{
		Key: "/limited", FillInterval: time.Hour, Capacity: 1, Quantum: 1,
	})
	r := gin.New()
	r.Use(RateLimiter(l))
	r.GET("/limited", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, "ok", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Contains(t, w.Body.String(), `"code":429`)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
}

func TestContextTimeoutSkipsWebsocket(t *testing.T) {
	r := gin.New()
	r.Use(ContextTimeout(time.Minute))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.String(http.StatusOK, strconv.FormatBool(ok))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "true", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "false", w.Body.String())
}

func TestAccessLogLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(AccessLogWithLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "x=1", entries[0].ContextMap()["query"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.NotContains(t, entries[1].ContextMap(), "query")
}

func TestNoFoundAndCors(t *testing.T) {
	r := gin.New()
	r.Use(Cors())
	r.NoRoute(NoFound())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/missing", nil)
	req.Header.Set("Origin", "https://cms.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://cms.example", w.Header().Get("Access-Control-Allow-Origin"))
}
