package domain

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrEditorSessionNotFound 编辑会话不存在
var ErrEditorSessionNotFound = errors.New("editor session not found")

// EditorSessionRepository 编辑会话仓储接口
type EditorSessionRepository interface {
	// Create 创建会话记录
	Create(ctx context.Context, session *EditorSession) error

	// Get 根据 ID 获取会话，不存在时返回 ErrEditorSessionNotFound
	Get(ctx context.Context, id string) (*EditorSession, error)

	// Close 将打开的会话标记为结束
	Close(ctx context.Context, id string, status EditorSessionStatus, linkTypeID string, result *Link) error

	// ListOpenBefore 获取在指定时间之前创建且仍未结束的会话
	ListOpenBefore(ctx context.Context, before time.Time) ([]*EditorSession, error)

	// DeleteClosedBefore 物理删除在指定时间之前结束的会话
	DeleteClosedBefore(ctx context.Context, before time.Time) (int64, error)
}
