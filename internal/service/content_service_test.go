package service

import (
	"context"
	"testing"

	"github.com/haierkeys/link-editor-service/internal/dto"
	"github.com/haierkeys/link-editor-service/internal/linktype/web"
	"github.com/haierkeys/link-editor-service/pkg/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleContent = `# Links

See [the docs](https://example.com/docs "Docs") and [plain *http*](http://foo.com).

Mail <someone@example.com> or visit <https://auto.example>.

An [ftp mirror](ftp://mirror.example) and a bare www.example.org mention.
`

func TestContentServiceLinks(t *testing.T) {
	svc := NewContentService(testRegistry(t), &ServiceConfig{}, nil)

	res, err := svc.Links(context.Background(), i18n.Identity, &dto.ContentLinksRequest{Content: sampleContent})
	require.NoError(t, err)
	require.Len(t, res.Links, 6)

	docs := res.Links[0]
	assert.Equal(t, "https://example.com/docs", docs.Href)
	assert.Equal(t, "the docs", docs.Text)
	assert.Equal(t, "Docs", docs.Title)
	assert.Equal(t, web.ID, docs.LinkTypeID)
	assert.Equal(t, web.Model{Protocol: "https", URLWithoutProtocol: "example.com/docs"}, docs.Model)
	require.NotNil(t, docs.Preview)
	assert.Equal(t, "https://example.com/docs", docs.Preview.Title)

	assert.Equal(t, "plain http", res.Links[1].Text)

	mail := res.Links[2]
	assert.True(t, mail.Auto)
	assert.Equal(t, "mailto:someone@example.com", mail.Href)
	assert.Empty(t, mail.LinkTypeID)
	assert.Equal(t, "mailto:someone@example.com", mail.Error)

	assert.Equal(t, "https://auto.example", res.Links[3].Href)
	assert.Equal(t, web.ID, res.Links[3].LinkTypeID)

	assert.Equal(t, "ftp://mirror.example", res.Links[4].Href)
	assert.NotEmpty(t, res.Links[4].Error)

	assert.Equal(t, "http://www.example.org", res.Links[5].Href)
	assert.True(t, res.Links[5].Auto)

	assert.Equal(t, 4, res.Supported)
	assert.Equal(t, 2, res.Unsupported)
}

func TestContentServiceMaxLinks(t *testing.T) {
	svc := NewContentService(testRegistry(t), &ServiceConfig{Content: ContentServiceConfig{MaxLinks: 2}}, nil)

	res, err := svc.Links(context.Background(), i18n.Identity, &dto.ContentLinksRequest{Content: sampleContent})
	require.NoError(t, err)
	assert.Len(t, res.Links, 2)
}
