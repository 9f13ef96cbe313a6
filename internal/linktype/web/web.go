// Package web is the link type for http and https URLs
// Package web 处理 http 与 https 地址的链接类型
package web

import (
	"regexp"
	"strings"

	"github.com/haierkeys/link-editor-service/internal/domain"
	"github.com/haierkeys/link-editor-service/pkg/form"
	"github.com/haierkeys/link-editor-service/pkg/i18n"
)

// ID 链接类型标识
const ID = "Fns.LinkEditor:Web"

const (
	ProtocolHTTP  = "http"
	ProtocolHTTPS = "https"
)

// Form field names
const (
	FieldProtocol           = "protocol"
	FieldURLWithoutProtocol = "urlWithoutProtocol"
)

const keyPrefix = "Fns.LinkEditor:LinkTypes.Web:"

// Message keys
const (
	KeyTitle                      = keyPrefix + "title"
	KeyLabelLink                  = keyPrefix + "label.link"
	KeyProtocolRequired           = keyPrefix + "protocol.validation.required"
	KeyProtocolOneOf              = keyPrefix + "protocol.validation.oneOf"
	KeyURLWithoutProtocolRequired = keyPrefix + "urlWithoutProtocol.validation.required"
	KeyURLWithoutProtocolHint     = keyPrefix + "urlWithoutProtocol.placeholder"
)

// Messages is the en/zh catalog of the link type
var Messages = i18n.Catalog{
	"en": {
		KeyTitle:                      "Web",
		KeyLabelLink:                  "Link",
		KeyProtocolRequired:           "Please select a protocol",
		KeyProtocolOneOf:              "Protocol must be HTTP or HTTPS",
		KeyURLWithoutProtocolRequired: "Please enter a link",
		KeyURLWithoutProtocolHint:     "www.example.com",
	},
	"zh": {
		KeyTitle:                      "网页",
		KeyLabelLink:                  "链接",
		KeyProtocolRequired:           "请选择协议",
		KeyProtocolOneOf:              "协议必须为 HTTP 或 HTTPS",
		KeyURLWithoutProtocolRequired: "请输入链接",
		KeyURLWithoutProtocolHint:     "www.example.com",
	},
}

var hrefPattern = regexp.MustCompile(`^(https?)://(.*)$`)

// Model is the editing model of a web link
// Model 网页链接的编辑模型
type Model struct {
	Protocol           string `json:"protocol"`
	URLWithoutProtocol string `json:"urlWithoutProtocol"`
}

// Href 拼接完整地址
func (m Model) Href() string {
	return m.Protocol + "://" + m.URLWithoutProtocol
}

// LinkType is the registrable web link type
var LinkType = domain.MakeLinkType[Model](ID, func(h domain.Helpers) domain.Definition[Model] {
	return domain.Definition[Model]{
		SupportedLinkOptions: []domain.LinkOption{
			domain.LinkOptionAnchor,
			domain.LinkOptionTitle,
			domain.LinkOptionTargetBlank,
			domain.LinkOptionRelNofollow,
		},

		IsSuitableFor: func(link domain.Link) bool {
			return strings.HasPrefix(link.Href, "http://") || strings.HasPrefix(link.Href, "https://")
		},

		ResolveModel: func(link domain.Link) (Model, error) {
			m := hrefPattern.FindStringSubmatch(link.Href)
			if m == nil {
				return Model{}, h.CreateError(`Cannot handle href "` + link.Href + `".`)
			}
			return Model{Protocol: m[1], URLWithoutProtocol: m[2]}, nil
		},

		ConvertModelToLink: func(model Model) domain.Link {
			return domain.Link{Href: model.Href()}
		},

		TabHeader: func(t i18n.Func) domain.TabHeader {
			return domain.TabHeader{Icon: "globe", Label: t(KeyTitle)}
		},

		Preview: func(model Model, t i18n.Func) domain.Preview {
			return domain.Preview{Icon: "external-link", Title: model.Href()}
		},

		Editor: editor,
	}
})

func editor(model *Model, t i18n.Func) *domain.EditorForm {
	protocol, rest := ProtocolHTTPS, ""
	if model != nil {
		protocol, rest = model.Protocol, model.URLWithoutProtocol
	}

	f := form.New(domain.FormPrefix(ID),
		form.Field{
			Name:         FieldProtocol,
			InitialValue: protocol,
			Rules:        "required,oneof=http https",
			Messages: map[string]string{
				"required": KeyProtocolRequired,
				"oneof":    KeyProtocolOneOf,
			},
			Control: form.Control{
				Widget: form.WidgetSelectBox,
				Options: []form.Option{
					{Value: ProtocolHTTPS, Label: "HTTPS", Icon: "lock"},
					{Value: ProtocolHTTP, Label: "HTTP", Icon: "unlock"},
				},
			},
		},
		form.Field{
			Name:         FieldURLWithoutProtocol,
			InitialValue: rest,
			Rules:        "required",
			Messages:     map[string]string{"required": KeyURLWithoutProtocolRequired},
			Control: form.Control{
				Widget:      form.WidgetTextInput,
				Placeholder: t(KeyURLWithoutProtocolHint),
				AllowEmpty:  true,
			},
			Format: formatURL,
			Parse:  parseURL,
		},
	)

	return &domain.EditorForm{
		Label:    t(KeyLabelLink),
		LabelFor: f.FieldName(FieldURLWithoutProtocol),
		Form:     f,
	}
}

// formatURL hides a pasted scheme from the displayed value
func formatURL(value string) string {
	if m := hrefPattern.FindStringSubmatch(value); m != nil {
		return m[2]
	}
	return value
}

// parseURL strips a pasted scheme and moves it into the protocol field
func parseURL(value string) form.ParseResult {
	m := hrefPattern.FindStringSubmatch(value)
	if m == nil {
		return form.ParseResult{Value: value}
	}
	return form.ParseResult{
		Value:     m[2],
		Overrides: []form.Override{{Name: FieldProtocol, Value: m[1]}},
	}
}
