package model

import "time"

const TableNameEditorSession = "editor_session"

// EditorSession mapped from table <editor_session>
// Links and option lists are stored as JSON text.
type EditorSession struct {
	ID                 string     `gorm:"column:id;primaryKey;type:varchar(36)" json:"id" form:"id"`
	Status             string     `gorm:"column:status;type:varchar(16);not null;index:idx_editor_session_status_created,priority:1" json:"status" form:"status"`
	InitialValue       string     `gorm:"column:initial_value;type:text" json:"initialValue" form:"initialValue"`
	EnabledLinkOptions string     `gorm:"column:enabled_link_options;type:varchar(255)" json:"enabledLinkOptions" form:"enabledLinkOptions"`
	LinkTypeID         string     `gorm:"column:link_type_id;type:varchar(255)" json:"linkTypeId" form:"linkTypeId"`
	Result             string     `gorm:"column:result;type:text" json:"result" form:"result"`
	CreatedAt          time.Time  `gorm:"column:created_at;not null;index:idx_editor_session_status_created,priority:2;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
	ClosedAt           *time.Time `gorm:"column:closed_at;index:idx_editor_session_closed" json:"closedAt" form:"closedAt"`
}

// TableName EditorSession's table name
func (*EditorSession) TableName() string {
	return TableNameEditorSession
}
