package domain

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/haierkeys/link-editor-service/pkg/form"
	"github.com/haierkeys/link-editor-service/pkg/i18n"
	"github.com/pkg/errors"
)

// Model is the link-type specific editing representation of a link
type Model any

// TabHeader 链接类型标签页头
type TabHeader struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// Preview 链接预览卡片
type Preview struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
}

// EditorForm is the editing UI of a link type: a label bound to a control and the form itself
// EditorForm 链接类型的编辑界面
type EditorForm struct {
	Label    string
	LabelFor string
	Form     *form.Form
}

// LinkTypeError is the error a link type reports for an href it cannot handle
// LinkTypeError 链接类型无法处理 href 时返回的错误
type LinkTypeError struct {
	LinkTypeID string
	Message    string
}

func (e *LinkTypeError) Error() string {
	return e.Message
}

// ErrModelType is returned when a model of the wrong shape reaches a link type
var ErrModelType = errors.New("link type: unexpected model type")

// LinkType is the contract every link type plugin satisfies
// LinkType 所有链接类型插件需要满足的契约
type LinkType interface {
	ID() string
	SupportedLinkOptions() []LinkOption
	// IsSuitableFor reports whether this link type claims the link. No side effects.
	IsSuitableFor(link Link) bool
	// ResolveModel parses the href into the link type's model. Failures are *LinkTypeError.
	ResolveModel(link Link) (Model, error)
	ConvertModelToLink(model Model) (Link, error)
	TabHeader(t i18n.Func) TabHeader
	Preview(model Model, t i18n.Func) (Preview, error)
	// Editor builds the editing form; model may be nil for a new link.
	Editor(model Model, t i18n.Func) (*EditorForm, error)
	// ModelFromValues decodes submitted form values into the model.
	ModelFromValues(values form.Values) (Model, error)
}

// FormPrefix returns the namespace of a link type's form fields
// FormPrefix 返回链接类型表单字段的命名空间
func FormPrefix(linkTypeID string) string {
	return "linkTypeProps." + strings.ReplaceAll(linkTypeID, ".", "_")
}

// Helpers are handed to a link type definition factory
type Helpers struct {
	// CreateError builds an error attributed to the link type
	CreateError func(message string) *LinkTypeError
}

// Definition is the typed configuration of a link type
// Definition 链接类型的强类型配置
type Definition[M any] struct {
	SupportedLinkOptions []LinkOption
	IsSuitableFor        func(link Link) bool
	ResolveModel         func(link Link) (M, error)
	ConvertModelToLink   func(model M) Link
	TabHeader            func(t i18n.Func) TabHeader
	Preview              func(model M, t i18n.Func) Preview
	Editor               func(model *M, t i18n.Func) *EditorForm
}

// MakeLinkType wraps a typed definition into a registrable LinkType
// MakeLinkType 将强类型定义包装为可注册的 LinkType
func MakeLinkType[M any](id string, factory func(h Helpers) Definition[M]) LinkType {
	h := Helpers{
		CreateError: func(message string) *LinkTypeError {
			return &LinkTypeError{LinkTypeID: id, Message: message}
		},
	}
	return &linkType[M]{id: id, def: factory(h)}
}

type linkType[M any] struct {
	id  string
	def Definition[M]
}

func (l *linkType[M]) ID() string {
	return l.id
}

func (l *linkType[M]) SupportedLinkOptions() []LinkOption {
	return append([]LinkOption(nil), l.def.SupportedLinkOptions...)
}

func (l *linkType[M]) IsSuitableFor(link Link) bool {
	return l.def.IsSuitableFor(link)
}

func (l *linkType[M]) ResolveModel(link Link) (Model, error) {
	m, err := l.def.ResolveModel(link)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (l *linkType[M]) ConvertModelToLink(model Model) (Link, error) {
	m, err := l.coerce(model)
	if err != nil {
		return Link{}, err
	}
	return l.def.ConvertModelToLink(m), nil
}

func (l *linkType[M]) TabHeader(t i18n.Func) TabHeader {
	return l.def.TabHeader(t)
}

func (l *linkType[M]) Preview(model Model, t i18n.Func) (Preview, error) {
	m, err := l.coerce(model)
	if err != nil {
		return Preview{}, err
	}
	return l.def.Preview(m, t), nil
}

func (l *linkType[M]) Editor(model Model, t i18n.Func) (*EditorForm, error) {
	if model == nil {
		return l.def.Editor(nil, t), nil
	}
	m, err := l.coerce(model)
	if err != nil {
		return nil, err
	}
	return l.def.Editor(&m, t), nil
}

func (l *linkType[M]) ModelFromValues(values form.Values) (Model, error) {
	var m M
	if err := values.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// coerce accepts M, *M, or a generic JSON object decoded from a request
func (l *linkType[M]) coerce(model Model) (M, error) {
	var zero M
	switch v := model.(type) {
	case M:
		return v, nil
	case *M:
		if v == nil {
			return zero, errors.Wrapf(ErrModelType, "%s: nil model", l.id)
		}
		return *v, nil
	case map[string]any:
		data, err := sonic.Marshal(v)
		if err != nil {
			return zero, errors.Wrapf(ErrModelType, "%s: %v", l.id, err)
		}
		var m M
		if err := sonic.Unmarshal(data, &m); err != nil {
			return zero, errors.Wrapf(ErrModelType, "%s: %v", l.id, err)
		}
		return m, nil
	default:
		return zero, errors.Wrapf(ErrModelType, "%s: got %s", l.id, fmt.Sprintf("%T", model))
	}
}
