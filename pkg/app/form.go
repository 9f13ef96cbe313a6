package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// ContextTransKey is where the lang middleware stores the request translator
// ContextTransKey 语言中间件存储翻译器的键
const ContextTransKey = "trans"

// ValidError 参数验证错误
type ValidError struct {
	Key     string
	Message string
}

// ValidErrors 参数验证错误集合
type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

// Errors 返回所有错误消息
func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 以逗号拼接所有错误消息
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ",")
}

// MapsToString 返回字段到错误消息的映射
func (v ValidErrors) MapsToString() map[string]string {
	out := make(map[string]string, len(v))
	for _, err := range v {
		out[err.Key] = err.Message
	}
	return out
}

// translator returns the request translator set by the lang middleware
func translator(c *gin.Context) ut.Translator {
	if v, ok := c.Get(ContextTransKey); ok {
		if trans, ok := v.(ut.Translator); ok {
			return trans
		}
	}
	return nil
}

// BindAndValid 绑定请求参数并进行验证，错误消息按请求语言翻译
func BindAndValid(c *gin.Context, v any) (bool, ValidErrors) {
	var errs ValidErrors
	err := c.ShouldBind(v)
	if err == nil {
		return true, nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs = append(errs, &ValidError{
			Key:     "body",
			Message: err.Error(),
		})
		return false, errs
	}

	trans := translator(c)
	for _, e := range verrs {
		msg := e.Error()
		if trans != nil {
			msg = e.Translate(trans)
		}
		errs = append(errs, &ValidError{
			Key:     e.Field(),
			Message: msg,
		})
	}
	return false, errs
}
