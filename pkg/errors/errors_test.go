package errors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haierkeys/link-editor-service/pkg/code"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCode(t *testing.T) {
	cause := pkgerrors.Wrap(code.ErrorLinkTypeNotFound.WithDetails("Nope"), "resolve")

	e := From(cause, "en")
	assert.Equal(t, code.ErrorLinkTypeNotFound.Code(), e.Code)
	assert.Equal(t, []string{"Nope"}, e.Details)
	assert.False(t, e.Status)
	assert.ErrorIs(t, e, code.ErrorLinkTypeNotFound)
}

func TestFromUnknown(t *testing.T) {
	e := From(pkgerrors.New("boom"), "en")
	assert.Equal(t, code.ErrorServerInternal.Code(), e.Code)
	assert.Equal(t, code.ErrorServerInternal.MsgIn("en"), e.Message)
	assert.Empty(t, e.Details)
}

func TestErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	ErrorResponse(c, code.ErrorNotFoundAPI.WithHTTPStatus(http.StatusNotFound))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, code.ErrorNotFoundAPI.Code(), body["code"])
	assert.Equal(t, false, body["status"])
	assert.NotContains(t, body, "details")
}
