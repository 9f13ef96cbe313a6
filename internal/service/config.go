// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "github.com/haierkeys/link-editor-service/internal/domain"

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Editor    EditorServiceConfig                // Editor session config // 编辑会话配置
	LinkTypes map[string]domain.LinkTypeSettings // Per link type settings keyed by id // 按链接类型 ID 的设置
	Content   ContentServiceConfig               // Content scan config // 内容扫描配置
}

// EditorServiceConfig editor session configuration
// EditorServiceConfig 编辑会话配置
type EditorServiceConfig struct {
	EnabledLinkOptions []string // Link options editable in sessions, empty for all // 会话中可编辑的链接选项，为空表示全部
	SessionTTL         string   // Open session lifetime (e.g., 30m, 2h, 1d) // 打开会话的最长存活时间（支持格式：30m、2h、1d）
	ClosedRetention    string   // Closed session retention (e.g., 7d, 0/empty to keep forever) // 已结束会话保留时间（支持格式：7d，0 或空表示永久保留）
}

// ContentServiceConfig content scan configuration
// ContentServiceConfig 内容扫描配置
type ContentServiceConfig struct {
	MaxLinks    int // Maximum links reported per scan // 单次扫描返回的最大链接数
	Concurrency int // Links classified in parallel // 并行分类的链接数
}
