package middleware

import (
	"strings"

	"github.com/haierkeys/link-editor-service/pkg/app"
	"github.com/haierkeys/link-editor-service/pkg/code"
	"github.com/haierkeys/link-editor-service/pkg/i18n"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"
)

var langMatcher = language.NewMatcher([]language.Tag{language.English, language.Chinese})

// negotiate picks en or zh from the lang query, the lang header and Accept-Language, in that order
func negotiate(c *gin.Context) string {
	var lang string

	if s, exist := c.GetQuery("lang"); exist {
		lang = s
	} else if s = c.GetHeader("lang"); len(s) != 0 {
		lang = s
	}

	if lang != "" {
		return code.NormalizeLang(lang)
	}

	if accept := strings.TrimSpace(c.GetHeader("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			matched, _, _ := langMatcher.Match(tags...)
			base, _ := matched.Base()
			return code.NormalizeLang(base.String())
		}
	}
	return code.FALLBACK_LNG
}

// LangWithTranslator 创建带翻译器的语言中间件（支持依赖注入）
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {

	return func(c *gin.Context) {
		lang := negotiate(c)

		trans, found := uni.GetTranslator(lang)
		if !found {
			trans, _ = uni.GetTranslator(code.FALLBACK_LNG)
		}

		c.Set(app.ContextTransKey, trans)
		c.Set(app.ContextLangKey, lang)

		c.Next()
	}
}

// GetLangFromGin 从 gin.Context 获取协商后的语言
func GetLangFromGin(c *gin.Context) string {
	if c == nil {
		return code.FALLBACK_LNG
	}
	if v, ok := c.Get(app.ContextLangKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return code.FALLBACK_LNG
}

// GetTranslatorFromGin 从 gin.Context 获取翻译器
func GetTranslatorFromGin(c *gin.Context) ut.Translator {
	if c == nil {
		return nil
	}
	if v, ok := c.Get(app.ContextTransKey); ok {
		if trans, ok := v.(ut.Translator); ok {
			return trans
		}
	}
	return nil
}

// TranslateFromGin returns the message resolver of the request language
// TranslateFromGin 返回请求语言的消息解析函数
func TranslateFromGin(c *gin.Context) i18n.Func {
	if trans := GetTranslatorFromGin(c); trans != nil {
		return i18n.For(trans)
	}
	return i18n.Identity
}
