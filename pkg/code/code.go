package code

import (
	"fmt"
	"net/http"
)

// Code is a numbered response code with a bilingual message.
// With* methods return a copy so package level codes stay immutable.
type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// 消息
	Lang lang
	// 数据
	data interface{}
	// 是否含有Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
	// HTTP 状态码
	httpStatus int
}

var codes = map[int]string{}

var sussCodes = map[int]string{}

func NewError(code int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.en
	return &Code{code: code, status: false, Lang: l, httpStatus: http.StatusOK}
}

func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.en
	return &Code{code: code, status: true, Lang: l, httpStatus: http.StatusOK}
}

// Clone 创建一个新的 Code 副本
func (e *Code) Clone() *Code {
	c := *e
	c.details = append([]string(nil), e.details...)
	return &c
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

// Msg returns the message in the default language.
func (e *Code) Msg() string {
	return e.Lang.GetMessage(FALLBACK_LNG)
}

// MsgIn returns the message in the given language, falling back to English.
func (e *Code) MsgIn(language string) string {
	return e.Lang.GetMessage(language)
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.haveData = true
	c.data = data
	return c
}

func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

// WithHTTPStatus overrides the transport status, which is 200 for every code by default.
func (e *Code) WithHTTPStatus(status int) *Code {
	c := e.Clone()
	c.httpStatus = status
	return c
}

func (e *Code) StatusCode() int {
	return e.httpStatus
}

// Is reports whether target is the same numbered code, so errors.Is works on copies.
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	return ok && t.code == e.code && t.status == e.status
}
