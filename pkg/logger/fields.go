package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldLinkType 链接类型字段
	FieldLinkType = "linkType"

	// FieldHref 链接地址字段
	FieldHref = "href"

	// FieldSessionID 编辑会话 ID 字段
	FieldSessionID = "sessionId"

	// FieldStatus 会话状态字段
	FieldStatus = "status"

	// FieldField 表单字段名
	FieldField = "field"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldCount 数量字段
	FieldCount = "count"
)
