package domain

import "time"

// EditorSessionStatus 编辑会话状态
type EditorSessionStatus string

const (
	EditorSessionOpen      EditorSessionStatus = "open"
	EditorSessionApplied   EditorSessionStatus = "applied"
	EditorSessionUnset     EditorSessionStatus = "unset"
	EditorSessionDismissed EditorSessionStatus = "dismissed"
	EditorSessionExpired   EditorSessionStatus = "expired"
)

// IsClosed 会话是否已结束
func (s EditorSessionStatus) IsClosed() bool {
	return s != EditorSessionOpen
}

// EditorSession is the persisted record of one edit
// EditorSession 一次链接编辑的持久化记录
type EditorSession struct {
	ID                 string
	Status             EditorSessionStatus
	InitialValue       *Link
	EnabledLinkOptions []LinkOption
	LinkTypeID         string
	Result             *Link
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ClosedAt           *time.Time
}

// StatusFromResult maps an edit result onto the closing status
// StatusFromResult 根据编辑结果得到会话结束状态
func StatusFromResult(res EditResult) EditorSessionStatus {
	switch {
	case !res.Change:
		return EditorSessionDismissed
	case res.Value == nil:
		return EditorSessionUnset
	default:
		return EditorSessionApplied
	}
}
