package linktype

import (
	"testing"

	"github.com/haierkeys/link-editor-service/internal/linktype/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	lt := r.ForHref("https://example.com")
	require.NotNil(t, lt)
	assert.Equal(t, web.ID, lt.ID())
	assert.Nil(t, r.ForHref("ftp://example.com"))
}
