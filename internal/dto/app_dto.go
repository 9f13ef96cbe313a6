// Package dto defines the request and response objects of the HTTP API
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import "github.com/haierkeys/link-editor-service/pkg/workerpool"

// VersionDTO 版本信息
type VersionDTO struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	GitTag      string   `json:"gitTag"`
	BuildTime   string   `json:"buildTime"`
	LinkTypes   int      `json:"linkTypes"`   // 已注册链接类型数
	LinkTypeIDs []string `json:"linkTypeIds"` // 已注册链接类型
}

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"

	DatabaseConnected = "connected"
	DatabaseError     = "error"
)

// HealthDTO 健康检查结果
type HealthDTO struct {
	Status   string           `json:"status"`
	Version  string           `json:"version"`
	Uptime   float64          `json:"uptime"` // 秒
	Database string           `json:"database"`
	Watchers int              `json:"watchers"` // 当前 WebSocket 订阅数
	Workers  workerpool.Stats `json:"workers"`
}
