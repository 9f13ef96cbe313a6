// Package domain 定义领域模型和接口
package domain

// LinkOption names a rendering attribute a link type may honor
// LinkOption 链接类型可支持的链接选项
type LinkOption string

const (
	LinkOptionAnchor      LinkOption = "anchor"
	LinkOptionTitle       LinkOption = "title"
	LinkOptionTargetBlank LinkOption = "targetBlank"
	LinkOptionRelNofollow LinkOption = "relNofollow"
)

// AllLinkOptions lists every option in display order
// AllLinkOptions 按展示顺序列出所有链接选项
var AllLinkOptions = []LinkOption{
	LinkOptionAnchor,
	LinkOptionTitle,
	LinkOptionTargetBlank,
	LinkOptionRelNofollow,
}

// IsValid 判断链接选项是否合法
func (o LinkOption) IsValid() bool {
	for _, known := range AllLinkOptions {
		if o == known {
			return true
		}
	}
	return false
}

// LinkOptions 链接选项
type LinkOptions struct {
	Anchor      string `json:"anchor,omitempty"`
	Title       string `json:"title,omitempty"`
	TargetBlank bool   `json:"targetBlank,omitempty"`
	RelNofollow bool   `json:"relNofollow,omitempty"`
}

// Filter drops every option not listed in allowed
// Filter 清除 allowed 之外的选项
func (o LinkOptions) Filter(allowed []LinkOption) LinkOptions {
	var out LinkOptions
	for _, opt := range allowed {
		switch opt {
		case LinkOptionAnchor:
			out.Anchor = o.Anchor
		case LinkOptionTitle:
			out.Title = o.Title
		case LinkOptionTargetBlank:
			out.TargetBlank = o.TargetBlank
		case LinkOptionRelNofollow:
			out.RelNofollow = o.RelNofollow
		}
	}
	return out
}

// IntersectLinkOptions keeps the options of a that also appear in b, in the order of a
// IntersectLinkOptions 返回 a 与 b 的交集，保持 a 的顺序
func IntersectLinkOptions(a, b []LinkOption) []LinkOption {
	out := make([]LinkOption, 0, len(a))
	for _, x := range a {
		for _, y := range b {
			if x == y {
				out = append(out, x)
				break
			}
		}
	}
	return out
}

// Link is the host-level hyperlink: an href plus rendering options
// Link 宿主编辑器中的链接：href 与渲染选项
type Link struct {
	Href    string      `json:"href"`
	Options LinkOptions `json:"options"`
}
