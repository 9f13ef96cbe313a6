package dto

import "github.com/haierkeys/link-editor-service/pkg/timex"

// EditorOpenRequest 打开编辑会话的请求参数
type EditorOpenRequest struct {
	InitialValue       *LinkDTO `json:"initialValue" form:"initialValue"`
	EnabledLinkOptions []string `json:"enabledLinkOptions" form:"enabledLinkOptions" binding:"omitempty,dive,link_option"`
}

// EditorApplyRequest 应用链接的请求参数
type EditorApplyRequest struct {
	Link LinkDTO `json:"link" form:"link" binding:"required"`
	// LinkTypeID 生成该链接的链接类型，为空时根据 href 选择
	LinkTypeID string `json:"linkTypeId" form:"linkTypeId"`
}

// EditorSessionDTO 编辑会话
type EditorSessionDTO struct {
	ID                 string      `json:"id"`
	Status             string      `json:"status"`
	IsOpen             bool        `json:"isOpen"`
	InitialValue       *LinkDTO    `json:"initialValue"`
	Value              *LinkDTO    `json:"value"`
	EnabledLinkOptions []string    `json:"enabledLinkOptions"`
	LinkTypeID         string      `json:"linkTypeId,omitempty"`
	CreatedAt          timex.Time  `json:"createdAt"`
	UpdatedAt          timex.Time  `json:"updatedAt"`
	ClosedAt           *timex.Time `json:"closedAt,omitempty"`
}

// EditResultDTO 编辑结果
type EditResultDTO struct {
	Change bool     `json:"change"`
	Value  *LinkDTO `json:"value"`
}

// EditorStateMessage 通过 websocket 推送的编辑器状态
type EditorStateMessage struct {
	SessionID          string   `json:"sessionId"`
	IsOpen             bool     `json:"isOpen"`
	InitialValue       *LinkDTO `json:"initialValue"`
	Value              *LinkDTO `json:"value"`
	EnabledLinkOptions []string `json:"enabledLinkOptions"`
}
