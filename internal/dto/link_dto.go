package dto

import "github.com/haierkeys/link-editor-service/pkg/form"

// LinkOptionsDTO 链接选项
type LinkOptionsDTO struct {
	Anchor      string `json:"anchor,omitempty" form:"anchor"`
	Title       string `json:"title,omitempty" form:"title"`
	TargetBlank bool   `json:"targetBlank,omitempty" form:"targetBlank"`
	RelNofollow bool   `json:"relNofollow,omitempty" form:"relNofollow"`
}

// LinkDTO 链接
type LinkDTO struct {
	Href    string         `json:"href" form:"href" binding:"required"`
	Options LinkOptionsDTO `json:"options" form:"options"`
}

// TabHeaderDTO 链接类型标签页头
type TabHeaderDTO struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// PreviewDTO 链接预览
type PreviewDTO struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
}

// LinkTypeDTO 链接类型
type LinkTypeDTO struct {
	ID                   string       `json:"id"`
	TabHeader            TabHeaderDTO `json:"tabHeader"`
	SupportedLinkOptions []string     `json:"supportedLinkOptions"`
	// Suitable 是否可处理请求中的 href，未传 href 时为 false
	Suitable bool `json:"suitable"`
}

// LinkTypeListRequest 获取链接类型列表的请求参数
type LinkTypeListRequest struct {
	Href string `json:"href" form:"href"`
}

// LinkResolveRequest 解析链接的请求参数
type LinkResolveRequest struct {
	Href string `json:"href" form:"href" binding:"required"`
	// LinkTypeID 指定链接类型，为空时自动选择
	LinkTypeID string `json:"linkTypeId" form:"linkTypeId"`
}

// LinkResolveDTO 链接解析结果
type LinkResolveDTO struct {
	LinkTypeID string       `json:"linkTypeId"`
	Model      any          `json:"model"`
	TabHeader  TabHeaderDTO `json:"tabHeader"`
	Preview    PreviewDTO   `json:"preview"`
}

// LinkEditorRequest 获取编辑表单的请求参数
type LinkEditorRequest struct {
	Href string `json:"href" form:"href"`
}

// LinkEditorDTO 链接类型编辑表单
type LinkEditorDTO struct {
	LinkTypeID string           `json:"linkTypeId"`
	Label      string           `json:"label"`
	LabelFor   string           `json:"labelFor"`
	Prefix     string           `json:"prefix"`
	Fields     []form.FieldView `json:"fields"`
}

// LinkFieldChangeRequest 修改表单字段的请求参数
type LinkFieldChangeRequest struct {
	// Values 当前表单值，键为字段短名
	Values map[string]string `json:"values" form:"values"`
	Field  string            `json:"field" form:"field" binding:"required"`
	Value  string            `json:"value" form:"value"`
}

// LinkFieldChangeDTO 修改表单字段的结果
type LinkFieldChangeDTO struct {
	Values    map[string]string `json:"values"`
	Overrides []form.Override   `json:"overrides"`
	Fields    []form.FieldView  `json:"fields"`
}

// LinkConvertRequest 表单转换为链接的请求参数
// Values 按用户输入处理, 带解析器的字段会先经过解析 (例如粘贴的协议头会移入 protocol)
type LinkConvertRequest struct {
	Values  map[string]string `json:"values" form:"values" binding:"required"`
	Options LinkOptionsDTO    `json:"options" form:"options"`
}
