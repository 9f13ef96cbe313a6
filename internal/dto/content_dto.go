package dto

// ContentLinksRequest 扫描内容链接的请求参数
type ContentLinksRequest struct {
	Content string `json:"content" form:"content" binding:"required"`
}

// ContentLinkDTO 内容中的一个链接
type ContentLinkDTO struct {
	Href  string `json:"href"`
	Text  string `json:"text,omitempty"`
	Title string `json:"title,omitempty"`
	// Auto 是否为自动链接 <https://...>
	Auto       bool        `json:"auto"`
	LinkTypeID string      `json:"linkTypeId,omitempty"`
	Model      any         `json:"model,omitempty"`
	Preview    *PreviewDTO `json:"preview,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// ContentLinksDTO 内容链接扫描结果
type ContentLinksDTO struct {
	Links       []*ContentLinkDTO `json:"links"`
	Supported   int               `json:"supported"`
	Unsupported int               `json:"unsupported"`
}
