package routers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/haierkeys/link-editor-service/internal/app"
	"github.com/haierkeys/link-editor-service/internal/dao"
	"github.com/haierkeys/link-editor-service/internal/linktype"
	"github.com/haierkeys/link-editor-service/internal/middleware"
	"github.com/haierkeys/link-editor-service/pkg/code"
	"github.com/haierkeys/link-editor-service/pkg/i18n"
	"github.com/haierkeys/link-editor-service/pkg/validator"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testResponse struct {
	Code    int    `json:"code"`
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Details any    `json:"details"`
	TraceID string `json:"traceId"`
}

func newTestRouter(t *testing.T, yaml string) (*gin.Engine, *app.App) {
	t.Helper()
	cfg, err := app.ParseConfig([]byte("database:\n  path: \":memory:\"\n" + yaml))
	require.NoError(t, err)

	db, err := dao.NewDBEngine(cfg.Database)
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	uni, err := i18n.NewUniversalTranslator(linktype.Catalogs()...)
	require.NoError(t, err)
	_, err = validator.Init(uni)
	require.NoError(t, err)

	return NewRouter(a, uni), a
}

func do(t *testing.T, r http.Handler, method, path, body string, headers ...string) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var res testResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	}
	return w, res
}

func dataMap(t *testing.T, res testResponse) map[string]any {
	t.Helper()
	m, ok := res.Data.(map[string]any)
	require.True(t, ok, "data is an object: %#v", res.Data)
	return m
}

func TestVersionAndHealth(t *testing.T) {
	r, _ := newTestRouter(t, "")

	w, res := do(t, r, http.MethodGet, "/api/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, code.Success.Code(), res.Code)
	assert.Equal(t, app.Version, dataMap(t, res)["version"])
	assert.EqualValues(t, 1, dataMap(t, res)["linkTypes"])
	assert.Equal(t, []any{"Fns.LinkEditor:Web"}, dataMap(t, res)["linkTypeIds"])
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	_, res = do(t, r, http.MethodGet, "/api/health", "")
	assert.Equal(t, code.Success.Code(), res.Code)
	assert.Equal(t, "healthy", dataMap(t, res)["status"])
}

func TestLinkTypesLocalized(t *testing.T) {
	r, _ := newTestRouter(t, "")

	_, res := do(t, r, http.MethodGet, "/api/link-types?href=https://example.com", "", "Accept-Language", "zh-CN")
	require.Equal(t, code.Success.Code(), res.Code)
	types, ok := res.Data.([]any)
	require.True(t, ok)
	require.Len(t, types, 1)

	web := types[0].(map[string]any)
	assert.Equal(t, "Fns.LinkEditor:Web", web["id"])
	assert.Equal(t, true, web["suitable"])
	assert.Equal(t, "网页", web["tabHeader"].(map[string]any)["label"])
	assert.Equal(t, "globe", web["tabHeader"].(map[string]any)["icon"])
}

func TestLinkTypesDisabledByConfig(t *testing.T) {
	r, _ := newTestRouter(t, "link-types:\n  Fns.LinkEditor:Web:\n    enabled: false\n")

	_, res := do(t, r, http.MethodGet, "/api/link-types", "")
	require.Equal(t, code.Success.Code(), res.Code)
	assert.Empty(t, res.Data)
}

func TestResolve(t *testing.T) {
	r, _ := newTestRouter(t, "")

	_, res := do(t, r, http.MethodPost, "/api/link/resolve", `{"href":"http://foo.com/x"}`)
	require.Equal(t, code.Success.Code(), res.Code)
	data := dataMap(t, res)
	assert.Equal(t, "Fns.LinkEditor:Web", data["linkTypeId"])
	assert.Equal(t, map[string]any{"protocol": "http", "urlWithoutProtocol": "foo.com/x"}, data["model"])
	assert.Equal(t, map[string]any{"icon": "external-link", "title": "http://foo.com/x"}, data["preview"])
}

func TestResolveUnsupported(t *testing.T) {
	r, _ := newTestRouter(t, "")

	_, res := do(t, r, http.MethodPost, "/api/link/resolve", `{"href":"mailto:a@b.c"}`)
	assert.Equal(t, code.ErrorUnsupportedHref.Code(), res.Code)
	assert.False(t, res.Status)

	_, res = do(t, r, http.MethodPost, "/api/link/resolve", `{"href":"ftp://x","linkTypeId":"Fns.LinkEditor:Web"}`)
	assert.Equal(t, code.ErrorUnsupportedHref.Code(), res.Code)
	assert.Equal(t, []any{`Cannot handle href "ftp://x".`}, res.Details)
}

func TestResolveRequiresHref(t *testing.T) {
	r, _ := newTestRouter(t, "")

	_, res := do(t, r, http.MethodPost, "/api/link/resolve", `{}`)
	assert.Equal(t, code.ErrorInvalidParams.Code(), res.Code)
	assert.Contains(t, dataMap(t, res), "href")
}

func TestPreviewFragment(t *testing.T) {
	r, _ := newTestRouter(t, "")

	w, _ := do(t, r, http.MethodGet, "/api/link/preview?href=https://example.com/%3Cb%3E", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, `class="link-preview"`)
	assert.Contains(t, body, "icon-external-link")
	assert.Contains(t, body, "https://example.com/&lt;b&gt;")
	assert.NotContains(t, body, "<b>")
}

func TestEditorChangeAndConvert(t *testing.T) {
	r, _ := newTestRouter(t, "")
	base := "/api/link-types/Fns.LinkEditor:Web"

	_, res := do(t, r, http.MethodGet, base+"/editor?href=http://foo.com", "")
	require.Equal(t, code.Success.Code(), res.Code)
	data := dataMap(t, res)
	assert.Equal(t, "linkTypeProps.Fns_LinkEditor:Web", data["prefix"])
	assert.Len(t, data["fields"], 2)

	_, res = do(t, r, http.MethodPost, base+"/change",
		`{"values":{"protocol":"https","urlWithoutProtocol":""},"field":"urlWithoutProtocol","value":"http://bar.org/p"}`)
	require.Equal(t, code.Success.Code(), res.Code)
	data = dataMap(t, res)
	assert.Equal(t, map[string]any{"protocol": "http", "urlWithoutProtocol": "bar.org/p"}, data["values"])
	assert.Equal(t, []any{map[string]any{"name": "protocol", "value": "http"}}, data["overrides"])

	_, res = do(t, r, http.MethodPost, base+"/convert",
		`{"values":{"protocol":"http","urlWithoutProtocol":"bar.org/p"},"options":{"title":"Bar"}}`)
	require.Equal(t, code.Success.Code(), res.Code)
	data = dataMap(t, res)
	assert.Equal(t, "http://bar.org/p", data["href"])
}

func TestConvertValidation(t *testing.T) {
	r, _ := newTestRouter(t, "")

	_, res := do(t, r, http.MethodPost, "/api/link-types/Fns.LinkEditor:Web/convert",
		`{"values":{"protocol":"https","urlWithoutProtocol":""}}`)
	assert.Equal(t, code.ErrorValidation.Code(), res.Code)
	assert.Equal(t, map[string]any{
		"linkTypeProps.Fns_LinkEditor:Web.urlWithoutProtocol": "Please enter a link",
	}, res.Data)
}

func TestUnknownLinkType(t *testing.T) {
	r, _ := newTestRouter(t, "")

	_, res := do(t, r, http.MethodGet, "/api/link-types/Nope/editor", "")
	assert.Equal(t, code.ErrorLinkTypeNotFound.Code(), res.Code)
}

func TestEditorSessionLifecycle(t *testing.T) {
	r, _ := newTestRouter(t, "")

	_, res := do(t, r, http.MethodPost, "/api/editor",
		`{"initialValue":{"href":"https://example.com","options":{"title":"Example"}},"enabledLinkOptions":["title","targetBlank"]}`)
	require.Equal(t, code.Success.Code(), res.Code)
	session := dataMap(t, res)
	id := session["id"].(string)
	assert.Equal(t, true, session["isOpen"])
	assert.Equal(t, []any{"title", "targetBlank"}, session["enabledLinkOptions"])

	_, res = do(t, r, http.MethodGet, "/api/editor/"+id, "")
	require.Equal(t, code.Success.Code(), res.Code)
	assert.Equal(t, "open", dataMap(t, res)["status"])

	_, res = do(t, r, http.MethodPost, "/api/editor/"+id+"/apply",
		`{"link":{"href":"http://foo.com","options":{"title":"Foo","anchor":"top","relNofollow":true}}}`)
	require.Equal(t, code.Success.Code(), res.Code)
	session = dataMap(t, res)
	assert.Equal(t, "applied", session["status"])
	assert.Equal(t, "Fns.LinkEditor:Web", session["linkTypeId"])
	value := session["value"].(map[string]any)
	assert.Equal(t, "http://foo.com", value["href"])
	assert.Equal(t, map[string]any{"title": "Foo"}, value["options"], "options are filtered to the enabled ones")

	_, res = do(t, r, http.MethodPost, "/api/editor/"+id+"/dismiss", "")
	assert.Equal(t, code.ErrorEditorClosed.Code(), res.Code)
}

func TestEditorOpenRejectsUnknownOption(t *testing.T) {
	r, _ := newTestRouter(t, "")

	_, res := do(t, r, http.MethodPost, "/api/editor", `{"enabledLinkOptions":["title","bogus"]}`)
	assert.Equal(t, code.ErrorInvalidParams.Code(), res.Code)
}

func TestEditorNotFound(t *testing.T) {
	r, _ := newTestRouter(t, "")

	_, res := do(t, r, http.MethodGet, "/api/editor/missing", "")
	assert.Equal(t, code.ErrorEditorNotFound.Code(), res.Code)

	_, res = do(t, r, http.MethodGet, "/api/editor/missing/watch", "")
	assert.Equal(t, code.ErrorEditorNotFound.Code(), res.Code)
}

func TestContentLinks(t *testing.T) {
	r, _ := newTestRouter(t, "")

	_, res := do(t, r, http.MethodPost, "/api/content/links",
		`{"content":"See [site](https://example.com) and [mail](mailto:a@b.c)."}`)
	require.Equal(t, code.Success.Code(), res.Code)
	data := dataMap(t, res)
	assert.EqualValues(t, 1, data["supported"])
	assert.EqualValues(t, 1, data["unsupported"])
}

func TestNoRoute(t *testing.T) {
	r, _ := newTestRouter(t, "")

	w, res := do(t, r, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, code.ErrorNotFoundAPI.Code(), res.Code)
	assert.Equal(t, "GET /nope", res.Details)
}

func TestRateLimitRuleFromConfig(t *testing.T) {
	r, _ := newTestRouter(t, "limiter:\n  rules:\n    - key: /api/version\n      fill-interval: 1h\n      capacity: 1\n      quantum: 1\n")

	w, res := do(t, r, http.MethodGet, "/api/version", "")
	assert.Equal(t, code.Success.Code(), res.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderServer))
	w, res = do(t, r, http.MethodGet, "/api/version", "")
	assert.Equal(t, code.ErrorTooManyRequests.Code(), res.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
}

type watchClient struct {
	gws.BuiltinEventHandler
	messages chan string
}

func (c *watchClient) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	c.messages <- message.Data.String()
}

func (c *watchClient) next(t *testing.T) (string, map[string]any) {
	t.Helper()
	select {
	case msg := <-c.messages:
		action, payload, ok := strings.Cut(msg, "|")
		require.True(t, ok, msg)
		var body map[string]any
		require.NoError(t, sonic.UnmarshalString(payload, &body))
		return action, body
	case <-time.After(5 * time.Second):
		t.Fatal("no websocket message")
		return "", nil
	}
}

func TestEditorWatch(t *testing.T) {
	r, _ := newTestRouter(t, "")
	srv := httptest.NewServer(r)
	defer srv.Close()

	_, res := do(t, r, http.MethodPost, "/api/editor", `{"initialValue":{"href":"https://example.com"}}`)
	require.Equal(t, code.Success.Code(), res.Code)
	id := dataMap(t, res)["id"].(string)

	client := &watchClient{messages: make(chan string, 8)}
	conn, _, err := gws.NewClient(client, &gws.ClientOption{
		Addr: "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/editor/" + id + "/watch",
	})
	require.NoError(t, err)
	defer conn.NetConn().Close()
	go conn.ReadLoop()

	action, state := client.next(t)
	assert.Equal(t, "EditorState", action)
	assert.Equal(t, id, state["sessionId"])
	assert.Equal(t, true, state["isOpen"])

	require.NoError(t, conn.WriteString("EditorGet|{}"))
	action, reply := client.next(t)
	assert.Equal(t, "EditorGet", action)
	assert.EqualValues(t, code.Success.Code(), reply["code"])

	_, res = do(t, r, http.MethodPost, "/api/editor/"+id+"/unset", "")
	require.Equal(t, code.Success.Code(), res.Code)
	assert.Equal(t, "unset", dataMap(t, res)["status"])

	action, state = client.next(t)
	assert.Equal(t, "EditorState", action)
	assert.Equal(t, false, state["isOpen"])
}

func TestPrivateRouter(t *testing.T) {
	newTestRouter(t, "")

	release := NewPrivateRouterWithLogger(gin.ReleaseMode, zap.NewNop())
	w := httptest.NewRecorder()
	release.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/vars", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var vars map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &vars), w.Body.String())
	assert.Contains(t, vars, "linkEditor")

	w = httptest.NewRecorder()
	release.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	release.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pprof/heap", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	debug := NewPrivateRouterWithLogger(gin.DebugMode, zap.NewNop())
	w = httptest.NewRecorder()
	debug.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pprof/heap", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
