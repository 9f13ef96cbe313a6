package code

var (
	Success = NewSuss(1, lang{en: "Success", zh: "成功"})

	ErrorServerInternal  = NewError(500, lang{en: "Internal server error", zh: "服务内部错误"})
	ErrorNotFoundAPI     = NewError(404, lang{en: "API not found", zh: "找不到接口"})
	ErrorInvalidParams   = NewError(405, lang{en: "Invalid params", zh: "参数验证失败"})
	ErrorTooManyRequests = NewError(429, lang{en: "Too many requests", zh: "请求过多"})
	ErrorDBQuery         = NewError(431, lang{en: "Database query failed", zh: "数据库查询失败"})
	ErrorServiceClosing  = NewError(503, lang{en: "Service is shutting down", zh: "服务正在关闭"})

	ErrorLinkTypeNotFound   = NewError(1001, lang{en: "Link type not found", zh: "链接类型不存在"})
	ErrorUnsupportedHref    = NewError(1002, lang{en: "No link type can handle this href", zh: "没有可处理该链接的链接类型"})
	ErrorValidation         = NewError(1003, lang{en: "Form validation failed", zh: "表单验证失败"})
	ErrorFieldNotFound      = NewError(1004, lang{en: "Form field not found", zh: "表单字段不存在"})
	ErrorModelInvalid       = NewError(1005, lang{en: "Link model is invalid", zh: "链接模型无效"})
	ErrorEditorNotFound     = NewError(1101, lang{en: "Editor session not found", zh: "编辑会话不存在"})
	ErrorEditorClosed       = NewError(1102, lang{en: "Editor session is already closed", zh: "编辑会话已关闭"})
	ErrorEditorWatchFailed  = NewError(1103, lang{en: "Editor session watch failed", zh: "编辑会话订阅失败"})
	ErrorContentParseFailed = NewError(1201, lang{en: "Content could not be scanned for links", zh: "内容链接扫描失败"})
)
